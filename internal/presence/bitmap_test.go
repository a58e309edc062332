package presence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FreshBitmapIsEmpty(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, 1, 7, 8, 9, 16, 17, 100} {
		b, err := New(capacity)
		require.NoError(t, err)
		assert.Equal(t, capacity, b.Len())
		assert.Len(t, b.Bytes(), (capacity+7)/8)
		for i := 0; i < capacity; i++ {
			got, err := b.Get(i)
			require.NoError(t, err)
			assert.False(t, got, "capacity=%d bit=%d", capacity, i)
		}
		assert.Zero(t, b.Count())
	}
}

func TestNew_NegativeCapacity(t *testing.T) {
	t.Parallel()

	b, err := New(-1)
	assert.Nil(t, b)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	b, err := New(20)
	require.NoError(t, err)

	for _, i := range []int{0, 3, 8, 19} {
		require.NoError(t, b.Set(i))
		got, err := b.Get(i)
		require.NoError(t, err)
		assert.True(t, got, "bit %d", i)
	}

	// Neighbours stay clear.
	for _, i := range []int{1, 2, 4, 7, 9, 18} {
		got, err := b.Get(i)
		require.NoError(t, err)
		assert.False(t, got, "bit %d", i)
	}
	assert.Equal(t, 4, b.Count())
	assert.Equal(t, []int{0, 3, 8, 19}, b.Indices())
}

func TestSet_Idempotent(t *testing.T) {
	t.Parallel()

	b, err := New(10)
	require.NoError(t, err)
	require.NoError(t, b.Set(5))
	before := append([]byte(nil), b.Bytes()...)
	require.NoError(t, b.Set(5))
	assert.Equal(t, before, b.Bytes())
	assert.Equal(t, 1, b.Count())
}

func TestOutOfRange(t *testing.T) {
	t.Parallel()

	b, err := New(9)
	require.NoError(t, err)

	for _, i := range []int{-1, 9, 10, 64} {
		err := b.Set(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "Set(%d)", i)
		_, err = b.Get(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "Get(%d)", i)
	}
	assert.Zero(t, b.Count())

	empty, err := New(0)
	require.NoError(t, err)
	assert.ErrorIs(t, empty.Set(0), ErrIndexOutOfRange)
	assert.Empty(t, empty.Bytes())
}

func TestBytes_LSBFirstLayout(t *testing.T) {
	t.Parallel()

	b, err := New(12)
	require.NoError(t, err)
	for _, i := range []int{0, 2, 5, 9, 11} {
		require.NoError(t, b.Set(i))
	}
	// byte 0: bits 0,2,5 -> 0b00100101; byte 1: bits 1,3 -> 0b00001010
	assert.Equal(t, []byte{0x25, 0x0a}, b.Bytes())
}

func TestBytes_PaddingStaysZero(t *testing.T) {
	t.Parallel()

	b, err := New(11)
	require.NoError(t, err)
	for i := 0; i < 11; i++ {
		require.NoError(t, b.Set(i))
	}
	out := b.Bytes()
	require.Len(t, out, 2)
	assert.Equal(t, byte(0xff), out[0])
	// Only the low three bits of the last byte belong to the bitmap.
	assert.Equal(t, byte(0x07), out[1])
}

func TestClone_IsIndependent(t *testing.T) {
	t.Parallel()

	b, err := New(8)
	require.NoError(t, err)
	require.NoError(t, b.Set(1))

	c := b.Clone()
	require.NoError(t, b.Set(6))

	got, err := c.Get(6)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, []int{1}, c.Indices())
	assert.Equal(t, 8, c.Len())
}
