// Package frame builds sparse sensor frames: fixed integer and float slot
// arrays plus a presence bitmap recording which slots were written.
//
// Slot indices are schema-relative. Integer slots occupy presence bits
// [0, IntSlots) and float slot j occupies presence bit IntSlots+j.
package frame

import (
	"errors"
	"fmt"

	"github.com/banshee-data/sensorframe/internal/presence"
)

var (
	// ErrInvalidArgument is returned for a schema with a negative slot count.
	ErrInvalidArgument = presence.ErrInvalidArgument
	// ErrIndexOutOfRange is returned when a slot index falls outside the
	// range of its slot type.
	ErrIndexOutOfRange = presence.ErrIndexOutOfRange
	// ErrFinalized is returned by any Builder call made after Finalize.
	ErrFinalized = errors.New("frame builder already finalized")
)

// Schema is the shape of a frame: how many integer and float slots it has.
type Schema struct {
	IntSlots   int `json:"int_slots"`
	FloatSlots int `json:"float_slots"`
}

// Validate checks both slot counts are non-negative.
func (s Schema) Validate() error {
	if s.IntSlots < 0 {
		return fmt.Errorf("%w: int slot count %d is negative", ErrInvalidArgument, s.IntSlots)
	}
	if s.FloatSlots < 0 {
		return fmt.Errorf("%w: float slot count %d is negative", ErrInvalidArgument, s.FloatSlots)
	}
	return nil
}

// Slots returns the combined slot count.
func (s Schema) Slots() int {
	return s.IntSlots + s.FloatSlots
}

// Builder accumulates slot values for a single frame. A Builder is owned by
// one caller and is not safe for concurrent use. It is one-shot: after
// Finalize every call returns ErrFinalized.
type Builder struct {
	schema    Schema
	ints      []int64
	floats    []float64
	presence  *presence.Bitmap
	payload   string
	finalized bool
}

// NewBuilder returns an empty builder for schema.
func NewBuilder(schema Schema) (*Builder, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	bm, err := presence.New(schema.Slots())
	if err != nil {
		return nil, err
	}
	return &Builder{
		schema:   schema,
		ints:     make([]int64, schema.IntSlots),
		floats:   make([]float64, schema.FloatSlots),
		presence: bm,
	}, nil
}

// Schema returns the schema the builder was created with.
func (b *Builder) Schema() Schema {
	return b.schema
}

// SetInt writes value into integer slot index and marks it present.
// Overwriting a slot keeps it present.
func (b *Builder) SetInt(index int, value int64) error {
	if b.finalized {
		return ErrFinalized
	}
	if index < 0 || index >= b.schema.IntSlots {
		return fmt.Errorf("%w: int slot %d not in [0, %d)", ErrIndexOutOfRange, index, b.schema.IntSlots)
	}
	b.ints[index] = value
	return b.presence.Set(index)
}

// SetFloat writes value into float slot index and marks presence bit
// IntSlots+index.
func (b *Builder) SetFloat(index int, value float64) error {
	if b.finalized {
		return ErrFinalized
	}
	if index < 0 || index >= b.schema.FloatSlots {
		return fmt.Errorf("%w: float slot %d not in [0, %d)", ErrIndexOutOfRange, index, b.schema.FloatSlots)
	}
	b.floats[index] = value
	return b.presence.Set(b.schema.IntSlots + index)
}

// SetPayload replaces the opaque string payload.
func (b *Builder) SetPayload(text string) error {
	if b.finalized {
		return ErrFinalized
	}
	b.payload = text
	return nil
}

// Finalize snapshots the builder into an immutable Frame and retires the
// builder.
func (b *Builder) Finalize() (*Frame, error) {
	if b.finalized {
		return nil, ErrFinalized
	}
	b.finalized = true

	f := &Frame{
		schema:   b.schema,
		ints:     make([]int64, len(b.ints)),
		floats:   make([]float64, len(b.floats)),
		presence: b.presence.Clone(),
		payload:  b.payload,
	}
	copy(f.ints, b.ints)
	copy(f.floats, b.floats)
	return f, nil
}
