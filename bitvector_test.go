package probfilter

import (
	"testing"

	requireLib "github.com/stretchr/testify/require"
)

func TestBitVectorSetGetClear(t *testing.T) {
	require := requireLib.New(t)
	v := NewBitVector(64)

	require.False(v.Get(10))
	v.Set(10)
	require.True(v.Get(10))
	require.EqualValues(1, v.Popcount())

	v.Clear(10)
	require.False(v.Get(10))
	require.EqualValues(0, v.Popcount())
}

func TestBitVectorEqualsAndClone(t *testing.T) {
	require := requireLib.New(t)
	v := NewBitVector(32)
	v.Set(3)
	v.Set(17)

	cloned := v.Clone()
	require.True(v.Equals(cloned))

	cloned.Set(5)
	require.False(v.Equals(cloned))
	require.False(v.Get(5))
}

func TestBitVectorBytesRoundTrip(t *testing.T) {
	require := requireLib.New(t)
	v := NewBitVector(40)
	v.Set(0)
	v.Set(39)
	v.Set(21)

	data := v.Bytes()
	rebuilt := BitVectorFromBytes(v.Size(), data)
	require.True(v.Equals(rebuilt))
}

func TestBitVectorEqualsDiffersOnSize(t *testing.T) {
	require := requireLib.New(t)
	a := NewBitVector(10)
	b := NewBitVector(20)
	require.False(a.Equals(b))
	require.False(a.Equals(nil))
}
