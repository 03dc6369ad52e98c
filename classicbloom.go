package probfilter

import (
	"math"

	"github.com/pkg/errors"
)

// ClassicBloom is the k-hash bit-array filter of spec.md §4.4. It owns
// one bit vector of length m and a hash count k, and tracks _length as
// the number of Add calls (not distinct items).
type ClassicBloom struct {
	seed   uint64
	size   uint32 // m
	hashes uint32 // k
	filter *BitVector
	length uint64

	hasher Hasher
	rnd    *seededRand
}

// NewClassicBloom builds a filter sized for nItems items at the given
// target false-positive rate p, per spec.md §4.4's sizing formula:
//
//	m = ceil(-n*ln(p) / ln(2)^2)
//	k = ceil((m/n) * ln(2))
func NewClassicBloom(nItems uint64, targetFPRate float64, seed uint64) (*ClassicBloom, error) {
	if nItems == 0 {
		return nil, invalidArgument("nItems must be positive, got %d", nItems)
	}
	if targetFPRate <= 0 || targetFPRate >= 1 {
		return nil, invalidArgument("targetFPRate must be in (0,1), got %f", targetFPRate)
	}

	n := float64(nItems)
	m := math.Ceil(-n * math.Log(targetFPRate) / (math.Ln2 * math.Ln2))
	k := math.Ceil((m / n) * math.Ln2)

	return &ClassicBloom{
		seed:   seed,
		size:   uint32(m),
		hashes: uint32(k),
		filter: NewBitVector(uint32(m)),
		hasher: NewHasher(),
		rnd:    newSeededRand(seed),
	}, nil
}

// SetSeed reseeds the filter's PRNG and hasher seed. Per spec.md §3's
// lifecycle note, this does not rehash already-stored data — calling it
// after inserts is documented misuse.
func (f *ClassicBloom) SetSeed(seed uint64) {
	f.seed = seed
	f.rnd.reseed(seed)
}

// SetHasher overrides the hashing substrate, per spec.md §9's design
// note that the hasher is injected rather than inherited. Tests use this
// to force collisions (spec.md S6, S8).
func (f *ClassicBloom) SetHasher(h Hasher) {
	f.hasher = h
}

func (f *ClassicBloom) Seed() uint64 { return f.seed }
func (f *ClassicBloom) Size() uint32 { return f.size }
func (f *ClassicBloom) K() uint32    { return f.hashes }

// Add sets all k bits derived from value and increments _length.
func (f *ClassicBloom) Add(value interface{}) error {
	indexes, err := f.hasher.GetDistinctIndexes(value, f.size, f.hashes, f.seed)
	if err != nil {
		return errors.Wrap(err, "classic bloom add failed")
	}
	for _, idx := range indexes {
		f.filter.Set(idx)
	}
	f.length++
	return nil
}

// Has reports whether all k bits for value are set. False positives are
// allowed; there are no false negatives on a non-reseeded filter.
func (f *ClassicBloom) Has(value interface{}) (bool, error) {
	indexes, err := f.hasher.GetDistinctIndexes(value, f.size, f.hashes, f.seed)
	if err != nil {
		return false, errors.Wrap(err, "classic bloom has failed")
	}
	for _, idx := range indexes {
		if !f.filter.Get(idx) {
			return false, nil
		}
	}
	return true, nil
}

// Rate returns the current theoretical false-positive rate,
// (1 - e^(-k*length/m))^k.
func (f *ClassicBloom) Rate() float64 {
	exponent := -float64(f.hashes) * float64(f.length) / float64(f.size)
	return math.Pow(1-math.Exp(exponent), float64(f.hashes))
}

// Length returns the number of Add calls made so far.
func (f *ClassicBloom) Length() uint64 { return f.length }

// Equals reports whether two classic filters share size, hash count,
// seed, bit vector content, and _length.
func (f *ClassicBloom) Equals(other *ClassicBloom) bool {
	if other == nil {
		return false
	}
	return f.size == other.size &&
		f.hashes == other.hashes &&
		f.seed == other.seed &&
		f.length == other.length &&
		f.filter.Equals(other.filter)
}
