package frame

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SparseExample(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(Schema{IntSlots: 4, FloatSlots: 2})
	require.NoError(t, err)

	require.NoError(t, b.SetInt(0, 17))
	require.NoError(t, b.SetInt(2, -5))
	require.NoError(t, b.SetFloat(1, 3.5))

	f, err := b.Finalize()
	require.NoError(t, err)

	if diff := cmp.Diff([]int64{17, 0, -5, 0}, f.IntValues()); diff != "" {
		t.Errorf("IntValues mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 3.5}, f.FloatValues()); diff != "" {
		t.Errorf("FloatValues mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 2, 5}, f.PresentSlots()); diff != "" {
		t.Errorf("PresentSlots mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []byte{0x25}, f.PresenceBytes())
	assert.Equal(t, 3, f.PresentCount())
	assert.Equal(t, "", f.Payload())

	for slot := 0; slot < 6; slot++ {
		got, err := f.Present(slot)
		require.NoError(t, err)
		want := slot == 0 || slot == 2 || slot == 5
		assert.Equal(t, want, got, "slot %d", slot)
	}
}

func TestNewBuilder_NegativeCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		schema Schema
	}{
		{"negative ints", Schema{IntSlots: -1, FloatSlots: 2}},
		{"negative floats", Schema{IntSlots: 2, FloatSlots: -3}},
		{"both negative", Schema{IntSlots: -1, FloatSlots: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(tt.schema)
			assert.Nil(t, b)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestNewBuilder_EmptySchema(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(Schema{})
	require.NoError(t, err)
	assert.ErrorIs(t, b.SetInt(0, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, b.SetFloat(0, 1), ErrIndexOutOfRange)

	f, err := b.Finalize()
	require.NoError(t, err)
	assert.Empty(t, f.IntValues())
	assert.Empty(t, f.FloatValues())
	assert.Empty(t, f.PresenceBytes())
}

func TestSetInt_OutOfRange(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(Schema{IntSlots: 4, FloatSlots: 2})
	require.NoError(t, err)

	for _, idx := range []int{-1, 4, 5} {
		assert.ErrorIs(t, b.SetInt(idx, 9), ErrIndexOutOfRange, "SetInt(%d)", idx)
	}
	for _, idx := range []int{-1, 2} {
		assert.ErrorIs(t, b.SetFloat(idx, 9), ErrIndexOutOfRange, "SetFloat(%d)", idx)
	}

	// Failed calls leave no trace.
	f, err := b.Finalize()
	require.NoError(t, err)
	assert.Zero(t, f.PresentCount())
	assert.Equal(t, []int64{0, 0, 0, 0}, f.IntValues())
}

func TestSetInt_OverwriteKeepsPresence(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(Schema{IntSlots: 3, FloatSlots: 1})
	require.NoError(t, err)

	require.NoError(t, b.SetInt(1, 10))
	require.NoError(t, b.SetInt(1, 20))
	require.NoError(t, b.SetFloat(0, 1.25))
	require.NoError(t, b.SetFloat(0, -2.5))

	f, err := b.Finalize()
	require.NoError(t, err)

	v, ok, err := f.Int(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(20), v)

	fv, ok, err := f.Float(0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -2.5, fv)

	assert.Equal(t, 2, f.PresentCount())
	assert.Equal(t, []int{1, 3}, f.PresentSlots())
}

func TestSetPayload_Replaces(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(Schema{IntSlots: 1})
	require.NoError(t, err)
	require.NoError(t, b.SetPayload("first"))
	require.NoError(t, b.SetPayload(""))
	require.NoError(t, b.SetPayload("wake=0 reason=thermal"))

	f, err := b.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "wake=0 reason=thermal", f.Payload())
	assert.Zero(t, f.PresentCount())
}

func TestFinalize_OneShot(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(Schema{IntSlots: 2, FloatSlots: 2})
	require.NoError(t, err)
	require.NoError(t, b.SetInt(0, 1))

	f, err := b.Finalize()
	require.NoError(t, err)

	assert.ErrorIs(t, b.SetInt(1, 2), ErrFinalized)
	assert.ErrorIs(t, b.SetFloat(0, 2), ErrFinalized)
	assert.ErrorIs(t, b.SetPayload("x"), ErrFinalized)
	_, err = b.Finalize()
	assert.ErrorIs(t, err, ErrFinalized)

	assert.Equal(t, []int{0}, f.PresentSlots())
}

func TestFrame_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(Schema{IntSlots: 2, FloatSlots: 1})
	require.NoError(t, err)
	require.NoError(t, b.SetInt(0, 7))
	require.NoError(t, b.SetFloat(0, 0.5))
	f, err := b.Finalize()
	require.NoError(t, err)

	ints := f.IntValues()
	ints[0] = 99
	floats := f.FloatValues()
	floats[0] = 99
	pb := f.PresenceBytes()
	pb[0] = 0xff

	assert.Equal(t, []int64{7, 0}, f.IntValues())
	assert.Equal(t, []float64{0.5}, f.FloatValues())
	assert.Equal(t, []byte{0x05}, f.PresenceBytes())
}

func TestFrame_IntFloatRange(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(Schema{IntSlots: 1, FloatSlots: 1})
	require.NoError(t, err)
	f, err := b.Finalize()
	require.NoError(t, err)

	_, ok, err := f.Int(0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = f.Int(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = f.Float(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = f.Present(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSchema_Slots(t *testing.T) {
	t.Parallel()

	s := Schema{IntSlots: 4, FloatSlots: 2}
	assert.Equal(t, 6, s.Slots())
	assert.NoError(t, s.Validate())
}
