package probfilter

import (
	"testing"

	requireLib "github.com/stretchr/testify/require"
)

func TestSeededRandDeterministicForSameSeed(t *testing.T) {
	require := requireLib.New(t)

	a := newSeededRand(7)
	b := newSeededRand(7)
	for i := 0; i < 20; i++ {
		require.Equal(a.intRange(0, 1000), b.intRange(0, 1000))
	}
}

func TestSeededRandReseedMatchesFreshGenerator(t *testing.T) {
	require := requireLib.New(t)

	a := newSeededRand(1)
	a.reseed(99)
	b := newSeededRand(99)
	require.Equal(a.intRange(0, 1000), b.intRange(0, 1000))
}

func TestSeededRandIntRangeStaysInBounds(t *testing.T) {
	require := requireLib.New(t)

	r := newSeededRand(5)
	for i := 0; i < 100; i++ {
		v := r.intRange(3, 3)
		require.Equal(3, v)
	}

	v := r.intRange(10, 5)
	require.Equal(10, v)
}
