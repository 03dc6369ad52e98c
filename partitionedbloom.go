package probfilter

import (
	"math"

	"github.com/pkg/errors"
)

// PartitionedBloom owns k disjoint bit vectors, one bit set per hash
// (spec.md §4.5). _loadFactor bounds how full a fully-loaded filter
// gets before its theoretical FP rate departs from p; _capacity is the
// number of items the filter was sized for.
type PartitionedBloom struct {
	seed        uint64
	hashes      uint32 // k
	subvecLen   uint32
	loadFactor  float64
	capacity    uint64
	ratio       float64
	partitions  []*BitVector

	hasher Hasher
}

// NewPartitionedBloom builds a filter sized for n items at target rate p,
// with inter-filter growth ratio (used only by ScalableBloom; a
// standalone partitioned filter still carries it so growth math stays in
// one place). k = ceil(log2(1/p)); subvector length follows spec.md
// §4.5's formula so that a fully-loaded filter's theoretical rate is p.
func NewPartitionedBloom(n uint64, p float64, ratio float64, seed uint64) (*PartitionedBloom, error) {
	return newPartitionedBloomWithHasher(n, p, ratio, seed, NewHasher())
}

func newPartitionedBloomWithHasher(n uint64, p float64, ratio float64, seed uint64, hasher Hasher) (*PartitionedBloom, error) {
	if n == 0 {
		return nil, invalidArgument("n must be positive, got %d", n)
	}
	if p <= 0 || p >= 1 {
		return nil, invalidArgument("p must be in (0,1), got %f", p)
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, invalidArgument("ratio must be in (0,1), got %f", ratio)
	}

	k := math.Ceil(math.Log2(1 / p))
	subLen := math.Ceil(float64(n) * math.Abs(math.Log(p)) / (k * math.Ln2 * math.Ln2) / ratio)

	pf := &PartitionedBloom{
		seed:       seed,
		hashes:     uint32(k),
		subvecLen:  uint32(subLen),
		loadFactor: p,
		capacity:   n,
		ratio:      ratio,
		hasher:     hasher,
	}
	pf.partitions = make([]*BitVector, pf.hashes)
	for i := range pf.partitions {
		pf.partitions[i] = NewBitVector(pf.subvecLen)
	}
	return pf, nil
}

func (f *PartitionedBloom) Seed() uint64      { return f.seed }
func (f *PartitionedBloom) K() uint32         { return f.hashes }
func (f *PartitionedBloom) SubvectorLen() uint32 { return f.subvecLen }
func (f *PartitionedBloom) Capacity() uint64  { return f.capacity }
func (f *PartitionedBloom) LoadFactor() float64 { return f.loadFactor }

func (f *PartitionedBloom) SetSeed(seed uint64) {
	f.seed = seed
}

// SetHasher overrides the hashing substrate, per spec.md §9's design
// note that the hasher is injected rather than inherited. Tests use this
// to force collisions (spec.md S6, S8).
func (f *PartitionedBloom) SetHasher(h Hasher) {
	f.hasher = h
}

// Add computes one index per partition (k indices total, via
// double-hashing with size = subvector length) and sets each bit in its
// own partition.
func (f *PartitionedBloom) Add(value interface{}) error {
	a, b, err := f.hasher.HashIntAndString(value, f.seed)
	if err != nil {
		return errors.Wrap(err, "partitioned bloom add failed")
	}
	for i, partition := range f.partitions {
		idx := f.hasher.DoubleHashing(uint64(i), a, b, f.subvecLen)
		partition.Set(idx)
	}
	return nil
}

// Has reports whether all k partition bits for value are set.
func (f *PartitionedBloom) Has(value interface{}) (bool, error) {
	a, b, err := f.hasher.HashIntAndString(value, f.seed)
	if err != nil {
		return false, errors.Wrap(err, "partitioned bloom has failed")
	}
	for i, partition := range f.partitions {
		idx := f.hasher.DoubleHashing(uint64(i), a, b, f.subvecLen)
		if !partition.Get(idx) {
			return false, nil
		}
	}
	return true, nil
}

// currentLoad returns the mean set-bit ratio across partitions, the
// trigger ScalableBloom checks before growing.
func (f *PartitionedBloom) currentLoad() float64 {
	var sum float64
	for _, partition := range f.partitions {
		sum += float64(partition.Popcount()) / float64(partition.Size())
	}
	return sum / float64(len(f.partitions))
}

// Rate returns the filter's current theoretical false-positive rate,
// estimated as currentLoad^k: a query collides only if every one of
// the k independent partitions happens to have its bit set already.
func (f *PartitionedBloom) Rate() float64 {
	return math.Pow(f.currentLoad(), float64(f.hashes))
}

// Equals compares size, hash count, seed, load factor, capacity, and
// every partition's bit content.
func (f *PartitionedBloom) Equals(other *PartitionedBloom) bool {
	if other == nil ||
		f.hashes != other.hashes ||
		f.subvecLen != other.subvecLen ||
		f.seed != other.seed ||
		f.loadFactor != other.loadFactor ||
		f.capacity != other.capacity ||
		len(f.partitions) != len(other.partitions) {
		return false
	}
	for i, partition := range f.partitions {
		if !partition.Equals(other.partitions[i]) {
			return false
		}
	}
	return true
}
