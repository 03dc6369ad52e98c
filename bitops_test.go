package probfilter

import (
	"testing"

	requireLib "github.com/stretchr/testify/require"
)

func TestXorBytesRightAlignsShorterOperand(t *testing.T) {
	// S4: xorBytes([0;10], [1]) == [0,0,0,0,0,0,0,0,0,1].
	require := requireLib.New(t)

	a := make([]byte, 10)
	b := []byte{1}
	got := xorBytes(a, b)
	require.Equal([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, got)
}

func TestXorBytesIsSelfInverse(t *testing.T) {
	require := requireLib.New(t)

	a := []byte{0x12, 0x34, 0x56, 0x78}
	b := []byte{0xAB, 0xCD}

	once := xorBytes(a, b)
	twice := xorBytes(once, b)
	require.Equal(a, twice)
}

func TestXorBytesWithItselfIsZero(t *testing.T) {
	require := requireLib.New(t)

	a := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	got := xorBytes(a, a)
	require.Equal(make([]byte, len(a)), got)
}
