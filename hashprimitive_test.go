package probfilter

import (
	"testing"

	requireLib "github.com/stretchr/testify/require"
)

func TestHash64DeterministicPerSeed(t *testing.T) {
	require := requireLib.New(t)

	data := []byte("the quick brown fox")
	require.Equal(hash64(data, 1), hash64(data, 1))
	require.NotEqual(hash64(data, 1), hash64(data, 2))
}

func TestHash32DeterministicPerSeed(t *testing.T) {
	require := requireLib.New(t)

	data := []byte("jumps over the lazy dog")
	require.Equal(hash32(data, 1), hash32(data, 1))
	require.NotEqual(hash32(data, 1), hash32(data, 2))
}
