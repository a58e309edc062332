// Package testutil provides shared test utilities and fixtures.
//
// Frame fixtures live here so the wire, store, sink and report tests all
// exercise the same sparse frames.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/sensorframe/internal/frame"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TempDBPath returns a database path inside a per-test temporary directory.
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "frames_test.db")
}

// Slot is one value assignment used by BuildFrame.
type Slot[T int64 | float64] struct {
	Index int
	Value T
}

// BuildFrame builds and finalizes a frame, failing the test on any error.
func BuildFrame(t *testing.T, schema frame.Schema, ints []Slot[int64], floats []Slot[float64], payload string) *frame.Frame {
	t.Helper()

	b, err := frame.NewBuilder(schema)
	AssertNoError(t, err)
	for _, s := range ints {
		AssertNoError(t, b.SetInt(s.Index, s.Value))
	}
	for _, s := range floats {
		AssertNoError(t, b.SetFloat(s.Index, s.Value))
	}
	if payload != "" {
		AssertNoError(t, b.SetPayload(payload))
	}
	f, err := b.Finalize()
	AssertNoError(t, err)
	return f
}

// ExampleFrame returns the 4-int/2-float frame with ints[0]=17, ints[2]=-5,
// floats[1]=3.5 and the given payload. Presence bits {0, 2, 5} are set.
func ExampleFrame(t *testing.T, payload string) *frame.Frame {
	t.Helper()
	return BuildFrame(t,
		frame.Schema{IntSlots: 4, FloatSlots: 2},
		[]Slot[int64]{{0, 17}, {2, -5}},
		[]Slot[float64]{{1, 3.5}},
		payload,
	)
}
