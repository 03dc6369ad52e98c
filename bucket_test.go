package probfilter

import (
	"testing"

	requireLib "github.com/stretchr/testify/require"
)

func TestBucketAddRemoveHas(t *testing.T) {
	require := requireLib.New(t)
	b := newBucket(2)

	require.True(b.isFree())
	require.True(b.add("a"))
	require.True(b.add("b"))
	require.False(b.isFree())
	require.False(b.add("c"))

	require.True(b.has("a"))
	require.True(b.remove("a"))
	require.False(b.has("a"))
	require.True(b.isFree())
}

func TestBucketSwapAtAndRestoreAt(t *testing.T) {
	require := requireLib.New(t)
	b := newBucket(2)
	b.add("a")
	b.add("b")

	previous := b.swapAt(0, "z")
	require.Equal("a", previous)
	require.Equal("z", b.at(0))

	b.restoreAt(0, previous)
	require.Equal("a", b.at(0))
}

func TestBucketEqualsContentIsOrderInsensitive(t *testing.T) {
	require := requireLib.New(t)
	a := newBucket(3)
	a.add("x")
	a.add("y")

	b := newBucket(3)
	b.add("y")
	b.add("x")

	require.True(a.equalsContent(b))

	b.add("z")
	require.False(a.equalsContent(b))
}

func TestBucketClone(t *testing.T) {
	require := requireLib.New(t)
	a := newBucket(2)
	a.add("a")

	cloned := a.clone()
	cloned.add("b")
	require.Equal(1, a.length())
	require.Equal(2, cloned.length())
}
