package probfilter

import (
	"strconv"

	"github.com/pkg/errors"
)

// DefaultSeed is the seed filters use when the caller does not supply one.
const DefaultSeed uint64 = 0

// Hasher is the hashing substrate injected into every filter (spec.md
// §9's design note (a)). The default implementation is stateless
// except for Serialize, which tests override to force collisions
// (spec.md §4.2, S6, S8).
type Hasher interface {
	// Serialize turns an arbitrary value into the bytes that get hashed.
	Serialize(value interface{}) ([]byte, error)
	// HashIntAndString returns the low and high 32 bits of hash64 of the
	// serialized value under seed.
	HashIntAndString(value interface{}, seed uint64) (first, second uint32, err error)
	// DoubleHashing computes the i-th index of the double-hashing family.
	DoubleHashing(i uint64, a, b uint32, size uint32) uint32
	// GetDistinctIndexes returns count pairwise-distinct indexes in [0,size)
	// derived from value.
	GetDistinctIndexes(value interface{}, size, count uint32, seed uint64) ([]uint32, error)
}

// defaultHasher is the library's built-in Hasher: strings are encoded as
// UTF-8, []byte is used as is, and the Go integer types (int, int32,
// int64, uint, uint32, uint64) are encoded in decimal ASCII. Any other
// type fails with an InvalidArgument error.
type defaultHasher struct {
	serialize func(value interface{}) ([]byte, error)
}

// NewHasher returns the library's default Hasher.
func NewHasher() Hasher {
	return &defaultHasher{serialize: defaultSerialize}
}

// NewHasherWithSerializer returns a Hasher that uses serialize in place of
// the default encoding. Tests use this to force hash collisions (spec.md
// S6, S8).
func NewHasherWithSerializer(serialize func(value interface{}) ([]byte, error)) Hasher {
	return &defaultHasher{serialize: serialize}
}

func defaultSerialize(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case int:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	case uint:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(v, 10)), nil
	default:
		return nil, invalidArgument("unsupported value type %T for serialization", value)
	}
}

func (h *defaultHasher) Serialize(value interface{}) ([]byte, error) {
	return h.serialize(value)
}

func (h *defaultHasher) HashIntAndString(value interface{}, seed uint64) (uint32, uint32, error) {
	data, serializeErr := h.Serialize(value)
	if serializeErr != nil {
		return 0, 0, errors.Wrap(serializeErr, "serialization failed")
	}
	full := hash64(data, seed)
	first := uint32(full & 0xFFFFFFFF)
	second := uint32(full >> 32)
	return first, second, nil
}

// DoubleHashing implements spec.md §4.2:
//
//	index_i = (a + i*b + (i^3 - i)/6) mod size
//
// Division is integer division; all arithmetic happens in unsigned 64-bit
// before the final reduction mod size, as spec.md §6 requires.
func (h *defaultHasher) DoubleHashing(i uint64, a, b uint32, size uint32) uint32 {
	ii := i * i * i
	term := (ii - i) / 6
	sum := uint64(a) + i*uint64(b) + term
	return uint32(sum % uint64(size))
}

// GetDistinctIndexes implements spec.md §4.2's distinct-index algorithm:
// advance i = 0, 1, 2, ... computing DoubleHashing, skip duplicates, stop
// once count values have been collected. Ties on a duplicate go to the
// smaller i, which falls out of iterating i in increasing order and
// never re-emitting an index already in seen.
func (h *defaultHasher) GetDistinctIndexes(value interface{}, size, count uint32, seed uint64) ([]uint32, error) {
	if count > size {
		return nil, invalidArgument("count %d exceeds size %d", count, size)
	}
	a, b, hashErr := h.HashIntAndString(value, seed)
	if hashErr != nil {
		return nil, errors.Wrap(hashErr, "hashing value failed")
	}

	indexes := make([]uint32, 0, count)
	seen := make(map[uint32]struct{}, count)
	for i := uint64(0); uint32(len(indexes)) < count; i++ {
		idx := h.DoubleHashing(i, a, b, size)
		if _, exists := seen[idx]; exists {
			continue
		}
		seen[idx] = struct{}{}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}
