package frame

import (
	"fmt"

	"github.com/banshee-data/sensorframe/internal/presence"
)

// Frame is a finalized sparse frame. All accessors return copies so a Frame
// cannot be mutated after Finalize.
type Frame struct {
	schema   Schema
	ints     []int64
	floats   []float64
	presence *presence.Bitmap
	payload  string
}

// Schema returns the frame's shape.
func (f *Frame) Schema() Schema {
	return f.schema
}

// IntValues returns the integer slot values; absent slots read 0.
func (f *Frame) IntValues() []int64 {
	out := make([]int64, len(f.ints))
	copy(out, f.ints)
	return out
}

// FloatValues returns the float slot values; absent slots read 0.0.
func (f *Frame) FloatValues() []float64 {
	out := make([]float64, len(f.floats))
	copy(out, f.floats)
	return out
}

// PresenceBytes returns the serialized presence bitmap,
// ceil((IntSlots+FloatSlots)/8) bytes long.
func (f *Frame) PresenceBytes() []byte {
	src := f.presence.Bytes()
	out := make([]byte, len(src))
	copy(out, src)
	return out
}

// Payload returns the string payload.
func (f *Frame) Payload() string {
	return f.payload
}

// Present reports whether logical slot (int slots first, then floats) was set.
func (f *Frame) Present(slot int) (bool, error) {
	return f.presence.Get(slot)
}

// PresentCount returns how many slots were set.
func (f *Frame) PresentCount() int {
	return f.presence.Count()
}

// PresentSlots returns the logical indices of set slots in ascending order.
func (f *Frame) PresentSlots() []int {
	return f.presence.Indices()
}

// Int returns integer slot index and whether it was set.
func (f *Frame) Int(index int) (int64, bool, error) {
	if index < 0 || index >= f.schema.IntSlots {
		return 0, false, fmt.Errorf("%w: int slot %d not in [0, %d)", ErrIndexOutOfRange, index, f.schema.IntSlots)
	}
	ok, err := f.presence.Get(index)
	if err != nil {
		return 0, false, err
	}
	return f.ints[index], ok, nil
}

// Float returns float slot index and whether it was set.
func (f *Frame) Float(index int) (float64, bool, error) {
	if index < 0 || index >= f.schema.FloatSlots {
		return 0, false, fmt.Errorf("%w: float slot %d not in [0, %d)", ErrIndexOutOfRange, index, f.schema.FloatSlots)
	}
	ok, err := f.presence.Get(f.schema.IntSlots + index)
	if err != nil {
		return 0, false, err
	}
	return f.floats[index], ok, nil
}
