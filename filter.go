package probfilter

// Filter is the common surface every filter in this package satisfies,
// per spec.md §9's design note: a small interface composed into each
// filter rather than inherited from a base class. Add and Has take
// interface{} because spec.md's serialize step accepts any hashable
// input; errors surface serialization and sizing failures (spec.md §7).
// Has never fails on absence (it returns false); both Add and Has fail
// only at the hashing boundary, when a value cannot be serialized.
type Filter interface {
	Add(value interface{}) error
	Has(value interface{}) (bool, error)
}

// ClassicBloom and PartitionedBloom already expose Add/Has with this
// exact signature, so they satisfy Filter directly — no adapter needed.
// CuckooFilter is deliberately excluded: its Add signature carries
// throwOnFull/destructive flags the other filters don't have.
var (
	_ Filter = (*ClassicBloom)(nil)
	_ Filter = (*PartitionedBloom)(nil)
	_ Filter = (*ScalableBloom)(nil)
)
