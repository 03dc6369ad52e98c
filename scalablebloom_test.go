package probfilter

import (
	"testing"

	requireLib "github.com/stretchr/testify/require"
)

func TestScalableBloomGrowsOnLoad(t *testing.T) {
	require := requireLib.New(t)

	f, err := NewScalableBloom(8, 0.1, 0.9, DefaultSeed)
	require.NoError(err)
	require.Equal(1, f.FilterCount())

	for i := 0; i < 500; i++ {
		require.NoError(f.Add(i))
	}
	require.Greater(f.FilterCount(), 1)
}

func TestScalableBloomNoFalseNegatives(t *testing.T) {
	require := requireLib.New(t)

	f, err := NewScalableBloom(16, 0.05, 0.9, DefaultSeed)
	require.NoError(err)

	for i := 0; i < 300; i++ {
		require.NoError(f.Add(i))
	}
	for i := 0; i < 300; i++ {
		has, hasErr := f.Has(i)
		require.NoError(hasErr)
		require.True(has, "expected %d to be present", i)
	}
}

func TestScalableBloomRejectsInvalidSizing(t *testing.T) {
	require := requireLib.New(t)

	_, err := NewScalableBloom(0, 0.1, 0.9, DefaultSeed)
	require.Error(err)
	require.True(IsKind(err, KindInvalidArgument))

	_, err = NewScalableBloom(10, 0, 0.9, DefaultSeed)
	require.Error(err)
	require.True(IsKind(err, KindInvalidArgument))

	_, err = NewScalableBloom(10, 0.1, 1, DefaultSeed)
	require.Error(err)
	require.True(IsKind(err, KindInvalidArgument))
}

func TestScalableBloomHasherOverridePropagatesThroughGrowth(t *testing.T) {
	// S6: forcing a hash collision via an overridden serializer must
	// survive growth — a newly grown inner filter is built with
	// newPartitionedBloomWithHasher(..., f.hasher), not a fresh default.
	require := requireLib.New(t)

	f, err := NewScalableBloom(4, 0.1, 0.5, DefaultSeed)
	require.NoError(err)
	f.SetHasher(NewHasherWithSerializer(func(value interface{}) ([]byte, error) {
		return []byte("constant"), nil
	}))

	for i := 0; i < 200; i++ {
		require.NoError(f.Add(i))
	}
	require.Greater(f.FilterCount(), 1, "expected growth to have occurred")

	has, err := f.Has("anything-at-all")
	require.NoError(err)
	require.True(has, "collision-forcing hasher must still collide after growth")
}

func TestScalableBloomEquals(t *testing.T) {
	require := requireLib.New(t)

	a, err := NewScalableBloom(8, 0.1, 0.9, 99)
	require.NoError(err)
	b, err := NewScalableBloom(8, 0.1, 0.9, 99)
	require.NoError(err)
	require.True(a.Equals(b))

	require.NoError(a.Add("only-on-a"))
	require.False(a.Equals(b))
	require.False(a.Equals(nil))
}

func TestScalableBloomErrorBudgetAndValidate(t *testing.T) {
	require := requireLib.New(t)

	f, err := NewScalableBloom(8, 0.1, 0.9, DefaultSeed)
	require.NoError(err)
	require.InDelta(1.0, f.ErrorBudget(), 0.0001)
	require.NoError(f.Validate())
}

func TestScalableBloomSetSeedPropagates(t *testing.T) {
	require := requireLib.New(t)

	f, err := NewScalableBloom(8, 0.1, 0.9, 1)
	require.NoError(err)
	for i := 0; i < 100; i++ {
		require.NoError(f.Add(i))
	}
	require.Greater(f.FilterCount(), 1)

	f.SetSeed(2)
	require.Equal(uint64(2), f.Seed())
	for _, inner := range f.filters {
		require.Equal(uint64(2), inner.Seed())
	}
}
