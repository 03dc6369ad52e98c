package probfilter

import (
	"testing"

	requireLib "github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"
)

func TestPartitionedBloomAddHas(t *testing.T) {
	require := requireLib.New(t)

	f, err := NewPartitionedBloom(1000, 0.01, 0.9, DefaultSeed)
	require.NoError(err)

	has, err := f.Has("absent")
	require.NoError(err)
	require.False(has)

	require.NoError(f.Add("present"))
	has, err = f.Has("present")
	require.NoError(err)
	require.True(has)
}

func TestPartitionedBloomRejectsInvalidSizing(t *testing.T) {
	require := requireLib.New(t)

	_, err := NewPartitionedBloom(0, 0.01, 0.9, DefaultSeed)
	require.Error(err)
	require.True(IsKind(err, KindInvalidArgument))

	_, err = NewPartitionedBloom(10, 1.5, 0.9, DefaultSeed)
	require.Error(err)
	require.True(IsKind(err, KindInvalidArgument))

	_, err = NewPartitionedBloom(10, 0.01, 1, DefaultSeed)
	require.Error(err)
	require.True(IsKind(err, KindInvalidArgument))
}

func TestPartitionedBloomNoFalseNegatives(t *testing.T) {
	require := requireLib.New(t)

	f, err := NewPartitionedBloom(500, 0.01, 0.9, DefaultSeed)
	require.NoError(err)

	values := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		v := faker.RandomString(14)
		values = append(values, v)
		require.NoError(f.Add(v))
	}
	for _, v := range values {
		has, hasErr := f.Has(v)
		require.NoError(hasErr)
		require.True(has)
	}
}

func TestPartitionedBloomEquals(t *testing.T) {
	require := requireLib.New(t)

	a, err := NewPartitionedBloom(200, 0.02, 0.9, 7)
	require.NoError(err)
	b, err := NewPartitionedBloom(200, 0.02, 0.9, 7)
	require.NoError(err)
	require.True(a.Equals(b))

	require.NoError(a.Add("distinct"))
	require.False(a.Equals(b))
}

func TestPartitionedBloomHasherOverrideForcesCollision(t *testing.T) {
	require := requireLib.New(t)

	f, err := NewPartitionedBloom(100, 0.1, 0.9, DefaultSeed)
	require.NoError(err)
	f.SetHasher(NewHasherWithSerializer(func(value interface{}) ([]byte, error) {
		return []byte("constant"), nil
	}))

	require.NoError(f.Add("alpha"))
	has, err := f.Has("omega")
	require.NoError(err)
	require.True(has)
}
