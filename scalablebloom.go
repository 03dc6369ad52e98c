package probfilter

import (
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// growthBase is the scalable filter's fixed growth base s=2 (spec.md §3).
const growthBase = 2

// ScalableBloom is a growing list of PartitionedBloom filters with
// geometrically tightening error rates (spec.md §4.6).
type ScalableBloom struct {
	seed        uint64
	initialSize uint64
	errorRate   float64
	ratio       float64
	filters     []*PartitionedBloom
	hasher      Hasher
}

// NewScalableBloom builds the first inner filter from (initialSize,
// errorRate, ratio) per spec.md §4.6.
func NewScalableBloom(initialSize uint64, errorRate float64, ratio float64, seed uint64) (*ScalableBloom, error) {
	if initialSize == 0 {
		return nil, invalidArgument("initialSize must be positive, got %d", initialSize)
	}
	if errorRate <= 0 || errorRate >= 1 {
		return nil, invalidArgument("errorRate must be in (0,1), got %f", errorRate)
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, invalidArgument("ratio must be in (0,1), got %f", ratio)
	}

	hasher := NewHasher()
	first, err := newPartitionedBloomWithHasher(initialSize, errorRate, ratio, seed, hasher)
	if err != nil {
		return nil, errors.Wrap(err, "initial inner filter construction failed")
	}

	return &ScalableBloom{
		seed:        seed,
		initialSize: initialSize,
		errorRate:   errorRate,
		ratio:       ratio,
		filters:     []*PartitionedBloom{first},
		hasher:      hasher,
	}, nil
}

func (f *ScalableBloom) Seed() uint64       { return f.seed }
func (f *ScalableBloom) InitialSize() uint64 { return f.initialSize }
func (f *ScalableBloom) ErrorRate() float64 { return f.errorRate }
func (f *ScalableBloom) Ratio() float64     { return f.ratio }

// FilterCount returns how many inner filters currently exist; it is
// non-decreasing across Add calls (spec.md §8, invariant 6).
func (f *ScalableBloom) FilterCount() int { return len(f.filters) }

// SetSeed propagates the new seed to every inner filter, per spec.md §3's
// lifecycle note ("seed propagates to every inner filter on mutation of
// the scalable seed").
func (f *ScalableBloom) SetSeed(seed uint64) {
	f.seed = seed
	for _, inner := range f.filters {
		inner.SetSeed(seed)
	}
}

// SetHasher overrides the hashing substrate and propagates it to every
// existing inner filter, the same way SetSeed propagates a new seed.
// Future filters created by grow() also use it. Tests use this to force
// collisions across the whole scalable filter (spec.md S6).
func (f *ScalableBloom) SetHasher(h Hasher) {
	f.hasher = h
	for _, inner := range f.filters {
		inner.SetHasher(h)
	}
}

// Add grows the filter if the last inner filter's load exceeds its load
// factor, then inserts into the (possibly new) last filter.
func (f *ScalableBloom) Add(value interface{}) error {
	last := f.filters[len(f.filters)-1]
	if last.currentLoad() > last.loadFactor {
		grown, growErr := f.grow()
		if growErr != nil {
			return errors.Wrap(growErr, "scalable bloom growth failed")
		}
		last = grown
	}
	if err := last.Add(value); err != nil {
		return errors.Wrap(err, "scalable bloom add failed")
	}
	return nil
}

// grow appends a new inner filter at index j = len(filters) with
//
//	size_j  = initialSize * s^(j+1) * ln2   (rounded up)
//	error_j = errorRate * ratio^j
//
// and the scalable filter's current seed and ratio.
func (f *ScalableBloom) grow() (*PartitionedBloom, error) {
	j := len(f.filters)
	sizeJ := uint64(math.Ceil(float64(f.initialSize) * math.Pow(growthBase, float64(j+1)) * math.Ln2))
	errorJ := f.errorRate * math.Pow(f.ratio, float64(j))

	inner, err := newPartitionedBloomWithHasher(sizeJ, errorJ, f.ratio, f.seed, f.hasher)
	if err != nil {
		return nil, err
	}
	f.filters = append(f.filters, inner)
	return inner, nil
}

// Has reports true iff any inner filter reports true.
func (f *ScalableBloom) Has(value interface{}) (bool, error) {
	for _, inner := range f.filters {
		has, err := inner.Has(value)
		if err != nil {
			return false, errors.Wrap(err, "scalable bloom has failed")
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

// Capacity returns the sum of every inner filter's capacity.
func (f *ScalableBloom) Capacity() uint64 {
	var total uint64
	for _, inner := range f.filters {
		total += inner.capacity
	}
	return total
}

// Rate returns the last inner filter's current computed false-positive
// rate (its actual fill state, not its construction-time target), per
// spec.md §4.6.
func (f *ScalableBloom) Rate() float64 {
	return f.filters[len(f.filters)-1].Rate()
}

// ErrorBudget returns the convergent upper bound
// errorRate / (1 - ratio), the ceiling on Σ errorRate*ratio^j that
// spec.md §8's invariant 6 requires the per-filter error budget to stay
// under, regardless of how many inner filters have been grown.
func (f *ScalableBloom) ErrorBudget() float64 {
	return f.errorRate / (1 - f.ratio)
}

// Equals compares seed, ratio, capacity, and pairwise-equal inner
// filters in order (spec.md §4.6).
func (f *ScalableBloom) Equals(other *ScalableBloom) bool {
	if other == nil ||
		f.seed != other.seed ||
		f.ratio != other.ratio ||
		f.Capacity() != other.Capacity() ||
		len(f.filters) != len(other.filters) {
		return false
	}
	for i, inner := range f.filters {
		if !inner.Equals(other.filters[i]) {
			return false
		}
	}
	return true
}

// checkInnerFilters validates every inner filter independently and
// batches failures, mirroring handleDataLoadResults' per-bucket
// error-collection pattern in the teacher.
func checkInnerFilters(filters []*PartitionedBloom, check func(*PartitionedBloom) error) error {
	var batch *multierror.Error
	for i, inner := range filters {
		if err := check(inner); err != nil {
			batch = multierror.Append(batch, errors.Wrapf(err, "inner filter %d failed validation", i))
		}
	}
	return batch.ErrorOrNil()
}

// Validate checks every inner filter's sizing is internally consistent
// (non-zero hash count and subvector length), batching any violations
// instead of stopping at the first one. Malformed inner filters can only
// arise from a hand-built ScalableBloom or a corrupted import, since
// grow() always produces valid sizing.
func (f *ScalableBloom) Validate() error {
	return checkInnerFilters(f.filters, func(inner *PartitionedBloom) error {
		if inner.hashes == 0 {
			return invalidArgument("hash count is zero")
		}
		if inner.subvecLen == 0 {
			return invalidArgument("subvector length is zero")
		}
		return nil
	})
}
