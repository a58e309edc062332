// Package presence provides a fixed-capacity packed bit-vector used to mark
// which slots of a sparse frame carry a value.
//
// Storage is byte-aligned and least-significant-bit first: logical bit i lives
// in byte i/8 at bit position i%8. Padding bits past the capacity in the final
// byte are never set.
package presence

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrInvalidArgument is returned when a bitmap is constructed with a
	// negative capacity.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexOutOfRange is returned by Set and Get for an index outside
	// [0, capacity).
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Bitmap tracks presence for a fixed number of logical slots.
// It is not safe for concurrent use.
type Bitmap struct {
	capacity int
	storage  []byte
}

// New allocates a zeroed bitmap able to hold capacity bits.
func New(capacity int) (*Bitmap, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: bitmap capacity %d is negative", ErrInvalidArgument, capacity)
	}
	return &Bitmap{
		capacity: capacity,
		storage:  make([]byte, ByteLen(capacity)),
	}, nil
}

// ByteLen returns the number of storage bytes needed for capacity bits.
func ByteLen(capacity int) int {
	return (capacity + 7) / 8
}

// Len returns the capacity in bits.
func (b *Bitmap) Len() int {
	return b.capacity
}

func (b *Bitmap) check(index int) error {
	if index < 0 || index >= b.capacity {
		return fmt.Errorf("%w: bit %d not in [0, %d)", ErrIndexOutOfRange, index, b.capacity)
	}
	return nil
}

// Set marks slot index as present. Setting an already-set bit is a no-op.
func (b *Bitmap) Set(index int) error {
	if err := b.check(index); err != nil {
		return err
	}
	b.storage[index>>3] |= 1 << uint(index&7)
	return nil
}

// Get reports whether slot index is present.
func (b *Bitmap) Get(index int) (bool, error) {
	if err := b.check(index); err != nil {
		return false, err
	}
	return b.storage[index>>3]&(1<<uint(index&7)) != 0, nil
}

// Bytes returns the backing storage without copying. Callers that retain the
// slice past further Set calls will observe those writes.
func (b *Bitmap) Bytes() []byte {
	return b.storage
}

// Count returns the number of set bits.
func (b *Bitmap) Count() int {
	n := 0
	for _, v := range b.storage {
		n += bits.OnesCount8(v)
	}
	return n
}

// Indices returns the set bit positions in ascending order.
func (b *Bitmap) Indices() []int {
	out := make([]int, 0, b.Count())
	for i, v := range b.storage {
		for v != 0 {
			tz := bits.TrailingZeros8(v)
			out = append(out, i*8+tz)
			v &= v - 1
		}
	}
	return out
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	storage := make([]byte, len(b.storage))
	copy(storage, b.storage)
	return &Bitmap{capacity: b.capacity, storage: storage}
}
