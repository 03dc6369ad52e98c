package probfilter

import (
	"encoding/binary"
	"math"
	"math/bits"
	"strconv"

	"github.com/pkg/errors"
)

// defaultMaxKicks is the cuckoo filter's eviction-loop bound (spec.md §4.7).
const defaultMaxKicks = 500

// defaultBucketSize is the cuckoo filter's default fingerprints-per-bucket.
const defaultBucketSize = 4

// cuckooLoadFactor is the occupancy level the sizing formula targets
// (spec.md §4.7: capacity = ceil(max(n,32)/bucketSize/0.955)).
const cuckooLoadFactor = 0.955

// CuckooFilter is a bucket array with partial-key cuckoo insertion and
// eviction rollback (spec.md §4.7).
type CuckooFilter struct {
	seed              uint64
	size              uint32 // _size, a power of two
	bucketSize        int
	fingerprintLength uint32 // bits
	maxKicks          int
	length            uint64

	buckets []*bucket
	hasher  Hasher
	rnd     *seededRand
}

// NewCuckooFilter builds a filter sized for n items at target false
// positive rate p, with bucketSize fingerprints per bucket and maxKicks
// eviction attempts, per spec.md §4.7's sizing formulas:
//
//	fingerprintLength = ceil(log2(1/p) + log2(2*bucketSize))
//	capacity = ceil(max(n,32)/bucketSize/0.955), rounded up to a power of two
func NewCuckooFilter(n uint64, p float64, bucketSize, maxKicks int, seed uint64) (*CuckooFilter, error) {
	if p <= 0 || p >= 1 {
		return nil, invalidArgument("p must be in (0,1), got %f", p)
	}
	if bucketSize <= 0 {
		bucketSize = defaultBucketSize
	}
	if maxKicks <= 0 {
		maxKicks = defaultMaxKicks
	}

	fingerprintLength := uint32(math.Ceil(math.Log2(1/p) + math.Log2(2*float64(bucketSize))))
	if fingerprintLength > 64 {
		return nil, invalidArgument("fingerprintLength %d exceeds the 64-bit hash width", fingerprintLength)
	}

	minN := n
	if minN < 32 {
		minN = 32
	}
	capacity := math.Ceil(float64(minN) / float64(bucketSize) / cuckooLoadFactor)
	size := nextPow2(uint64(capacity))

	f := &CuckooFilter{
		seed:              seed,
		size:              uint32(size),
		bucketSize:        bucketSize,
		fingerprintLength: fingerprintLength,
		maxKicks:          maxKicks,
		buckets:           make([]*bucket, size),
		hasher:            NewHasher(),
		rnd:               newSeededRand(seed),
	}
	for i := range f.buckets {
		f.buckets[i] = newBucket(bucketSize)
	}
	return f, nil
}

func nextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

func (f *CuckooFilter) Seed() uint64              { return f.seed }
func (f *CuckooFilter) Size() uint32              { return f.size }
func (f *CuckooFilter) BucketSize() int           { return f.bucketSize }
func (f *CuckooFilter) FingerprintLength() uint32 { return f.fingerprintLength }
func (f *CuckooFilter) MaxKicks() int             { return f.maxKicks }
func (f *CuckooFilter) Length() uint64            { return f.length }

// SetSeed reseeds the filter's PRNG and hash seed. Per spec.md §3, this
// does not rehash stored data and is documented misuse if called after
// inserts.
func (f *CuckooFilter) SetSeed(seed uint64) {
	f.seed = seed
	f.rnd.reseed(seed)
}

// SetHasher overrides the hashing substrate used for serialization
// (spec.md §9's design note). The hash primitive itself (hash64) is not
// pluggable — only value-to-bytes serialization is, matching spec.md
// §4.2's contract that only Serialize is overridable.
func (f *CuckooFilter) SetHasher(h Hasher) {
	f.hasher = h
}

// locations computes an element's fingerprint and its two candidate
// bucket indexes, per spec.md §4.7 and the partial-key symmetry
// invariant in §8 (item 4):
//
//	h            = hash64(serialize(value), seed)
//	fingerprint  = low fingerprintLength bits of h, as a bit string
//	firstIndex   = (h mod 2^32) mod size
//	secondIndex  = (firstIndex xor (hash64(fingerprint, seed) mod size)) mod size
//
// secondIndex is derived purely from firstIndex and fingerprint (not from
// h directly) so that altIndex, which only has those two during
// eviction, reconstructs exactly the same value.
func (f *CuckooFilter) locations(value interface{}) (fingerprint string, firstIndex, secondIndex uint32, err error) {
	data, serializeErr := f.hasher.Serialize(value)
	if serializeErr != nil {
		return "", 0, 0, errors.Wrap(serializeErr, "serialization failed")
	}
	h := hash64(data, f.seed)
	fingerprint = fingerprintBits(h, f.fingerprintLength)
	firstIndex = uint32(uint64(uint32(h)) % uint64(f.size))
	secondIndex = f.altIndex(firstIndex, fingerprint)
	return fingerprint, firstIndex, secondIndex, nil
}

// altIndex recomputes a bucket index from a fingerprint and the index it
// currently sits at, exploiting the partial-key property (spec.md §4.7's
// note): (index xor (hash64(fingerprint, seed) mod size)) mod size. The
// xor itself goes through xorBytes (bitops.go), the same byte-level xor
// helper S4 pins the semantics of, over the two values' 4-byte big-endian
// encodings. Since size is a power of two, this is its own inverse:
// applying it twice with the same fingerprint returns the original index.
func (f *CuckooFilter) altIndex(index uint32, fingerprint string) uint32 {
	fpHash := hash64([]byte(fingerprint), f.seed)
	fpHashMod := uint32(uint64(uint32(fpHash)) % uint64(f.size))

	indexBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(indexBytes, index)
	fpHashBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(fpHashBytes, fpHashMod)

	xored := xorBytes(indexBytes, fpHashBytes)
	return binary.BigEndian.Uint32(xored) % f.size
}

func fingerprintBits(h uint64, length uint32) string {
	masked := h & (uint64(1)<<length - 1)
	return strconv.FormatUint(masked, 2)
}

// undoEntry records one eviction-loop write so a failed Add can restore
// the filter to its pre-call state (spec.md §8 invariant 5, §9's "undo
// log" design note).
type undoEntry struct {
	bucketIndex uint32
	slot        int
	previous    string
}

// Add inserts value. If both candidate buckets are full, it runs the
// eviction loop for up to maxKicks iterations. On exhaustion, a
// non-destructive call rolls back every fingerprint it displaced; a
// destructive call discards the evicted fingerprint and leaves the
// filter kicked. throwOnFull controls whether exhaustion without success
// returns an error.
func (f *CuckooFilter) Add(value interface{}, throwOnFull, destructive bool) (bool, error) {
	fingerprint, firstIndex, secondIndex, err := f.locations(value)
	if err != nil {
		return false, errors.Wrap(err, "cuckoo add failed")
	}

	if f.buckets[firstIndex].add(fingerprint) {
		f.length++
		return true, nil
	}
	if f.buckets[secondIndex].add(fingerprint) {
		f.length++
		return true, nil
	}

	index := firstIndex
	if f.rnd.intRange(0, 1) == 1 {
		index = secondIndex
	}

	cur := fingerprint
	undoLog := make([]undoEntry, 0, f.maxKicks)
	for kick := 0; kick < f.maxKicks; kick++ {
		b := f.buckets[index]
		slot := f.rnd.intRange(0, b.length()-1)
		previous := b.swapAt(slot, cur)
		undoLog = append(undoLog, undoEntry{bucketIndex: index, slot: slot, previous: previous})
		cur = previous
		index = f.altIndex(index, cur)

		if f.buckets[index].add(cur) {
			f.length++
			return true, nil
		}
	}

	if !destructive {
		for i := len(undoLog) - 1; i >= 0; i-- {
			entry := undoLog[i]
			f.buckets[entry.bucketIndex].restoreAt(entry.slot, entry.previous)
		}
	}
	if throwOnFull {
		return false, filterFull("cuckoo filter full after %d kicks", f.maxKicks)
	}
	return false, nil
}

// Remove deletes the first matching fingerprint from value's first or
// second candidate bucket.
func (f *CuckooFilter) Remove(value interface{}) (bool, error) {
	fingerprint, firstIndex, secondIndex, err := f.locations(value)
	if err != nil {
		return false, errors.Wrap(err, "cuckoo remove failed")
	}
	if f.buckets[firstIndex].remove(fingerprint) {
		f.length--
		return true, nil
	}
	if f.buckets[secondIndex].remove(fingerprint) {
		f.length--
		return true, nil
	}
	return false, nil
}

// Has reports whether either candidate bucket holds value's fingerprint.
func (f *CuckooFilter) Has(value interface{}) (bool, error) {
	fingerprint, firstIndex, secondIndex, err := f.locations(value)
	if err != nil {
		return false, errors.Wrap(err, "cuckoo has failed")
	}
	return f.buckets[firstIndex].has(fingerprint) || f.buckets[secondIndex].has(fingerprint), nil
}

// Rate returns 2^(log2(2*bucketSize) - load*c) with c =
// fingerprintLength/load and load = length/(size*bucketSize), per
// spec.md §4.7.
func (f *CuckooFilter) Rate() float64 {
	load := float64(f.length) / (float64(f.size) * float64(f.bucketSize))
	if load == 0 {
		return 0
	}
	c := float64(f.fingerprintLength) / load
	return math.Pow(2, math.Log2(2*float64(f.bucketSize))-load*c)
}

// Equals compares only bucket contents, per spec.md §9's Open Question:
// the source's equals ignores _seed, _length, and sizing, and this is
// preserved here as specified.
func (f *CuckooFilter) Equals(other *CuckooFilter) bool {
	if other == nil || len(f.buckets) != len(other.buckets) {
		return false
	}
	for i, b := range f.buckets {
		if !b.equalsContent(other.buckets[i]) {
			return false
		}
	}
	return true
}

// DeepEquals is the stricter equality spec.md §9 recommends adding: it
// additionally compares seed, sizing, and _length before falling back to
// Equals' bucket-content comparison.
func (f *CuckooFilter) DeepEquals(other *CuckooFilter) bool {
	if other == nil ||
		f.seed != other.seed ||
		f.size != other.size ||
		f.bucketSize != other.bucketSize ||
		f.fingerprintLength != other.fingerprintLength ||
		f.maxKicks != other.maxKicks ||
		f.length != other.length {
		return false
	}
	return f.Equals(other)
}
