package probfilter

import "math/rand"

// seededRand is the deterministic uniform stream spec.md §4.3 calls for:
// a fixed-period PRNG whose output depends only on the seed. The pack
// carries no ecosystem library for this (see DESIGN.md); math/rand's
// classic (non-v2) generator is deterministic for a given seed across
// runs and platforms, which is the property the cuckoo filter's eviction
// loop depends on for reproducible exports.
type seededRand struct {
	r *rand.Rand
}

func newSeededRand(seed uint64) *seededRand {
	return &seededRand{r: rand.New(rand.NewSource(int64(seed)))} //nolint:gosec // reproducibility, not security
}

func (s *seededRand) reseed(seed uint64) {
	s.r.Seed(int64(seed))
}

// float64 returns a uniform value in [0,1).
func (s *seededRand) float64() float64 {
	return s.r.Float64()
}

// intRange returns lo + floor(u*(hi-lo+1)), a uniform integer in [lo,hi].
func (s *seededRand) intRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(s.float64()*float64(hi-lo+1))
}
