package probfilter

import (
	"sort"
	"testing"

	requireLib "github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"
)

func TestDoubleHashingFormula(t *testing.T) {
	require := requireLib.New(t)
	h := NewHasher().(*defaultHasher)

	// S1: a=123456, b=987654, size=1000, i=7 -> 90.
	got := h.DoubleHashing(7, 123456, 987654, 1000)
	require.EqualValues(90, got)
}

func TestDoubleHashingMatchesFormula(t *testing.T) {
	require := requireLib.New(t)
	h := NewHasher().(*defaultHasher)

	for _, tc := range []struct {
		i    uint64
		a, b uint32
		size uint32
	}{
		{0, 1, 1, 97},
		{5, 42, 17, 251},
		{100, 7, 13, 1009},
	} {
		ii := tc.i * tc.i * tc.i
		term := (ii - tc.i) / 6
		expected := uint32((uint64(tc.a) + tc.i*uint64(tc.b) + term) % uint64(tc.size))
		require.Equal(expected, h.DoubleHashing(tc.i, tc.a, tc.b, tc.size))
	}
}

func TestGetDistinctIndexesAreDistinctAndInRange(t *testing.T) {
	require := requireLib.New(t)
	h := NewHasher()

	for i := 0; i < 20; i++ {
		value := faker.RandomString(10)
		const size = 997
		const count = 50
		indexes, err := h.GetDistinctIndexes(value, size, count, DefaultSeed)
		require.NoError(err)
		require.Len(indexes, count)

		seen := make(map[uint32]struct{}, count)
		for _, idx := range indexes {
			require.Less(idx, uint32(size))
			_, exists := seen[idx]
			require.False(exists, "index %d repeated", idx)
			seen[idx] = struct{}{}
		}
	}
}

func TestGetDistinctIndexesCountEqualsSizeCoversEverything(t *testing.T) {
	// S2: with count == size, the only possible set of `count` pairwise
	// distinct values in [0,size) is the whole domain, regardless of the
	// hash function in use.
	require := requireLib.New(t)
	h := NewHasher()

	const key = "da5e21f8a67c4163f1a53ef43515bd027967da305ecfc741b2c3f40f832b7f82"
	const size = 10000

	indexes, err := h.GetDistinctIndexes(key, size, size, DefaultSeed)
	require.NoError(err)
	require.Len(indexes, size)

	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })
	for i, idx := range indexes {
		require.EqualValues(i, idx)
	}
}

func TestGetDistinctIndexesFailsWhenCountExceedsSize(t *testing.T) {
	require := requireLib.New(t)
	h := NewHasher()

	_, err := h.GetDistinctIndexes("anything", 10, 11, DefaultSeed)
	require.Error(err)
	require.True(IsKind(err, KindInvalidArgument))
}

func TestHasherOverrideForcesCollisions(t *testing.T) {
	// S8: a hasher whose serialize returns a constant produces identical
	// index sequences for any two values.
	require := requireLib.New(t)
	constantHasher := NewHasherWithSerializer(func(value interface{}) ([]byte, error) {
		return []byte{1}, nil
	})

	first, err := constantHasher.GetDistinctIndexes("alpha", 100, 5, DefaultSeed)
	require.NoError(err)
	second, err := constantHasher.GetDistinctIndexes("omega-and-then-some", 100, 5, DefaultSeed)
	require.NoError(err)
	require.Equal(first, second)
}
