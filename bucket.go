package probfilter

// bucket is the cuckoo filter's fixed-capacity ordered sequence of
// fingerprints (spec.md §3). A bucket is free iff len(entries) <
// capacity. Equality used by Cuckoo.Equals is length-and-content,
// order-insensitive; swapAt/at are position-preserving, as required for
// the eviction undo log to be able to restore an exact slot.
type bucket struct {
	capacity int
	entries  []string
}

func newBucket(capacity int) *bucket {
	return &bucket{
		capacity: capacity,
		entries:  make([]string, 0, capacity),
	}
}

func (b *bucket) isFree() bool {
	return len(b.entries) < b.capacity
}

func (b *bucket) length() int {
	return len(b.entries)
}

func (b *bucket) has(fingerprint string) bool {
	for _, e := range b.entries {
		if e == fingerprint {
			return true
		}
	}
	return false
}

// add appends fingerprint, returning false if the bucket is full.
func (b *bucket) add(fingerprint string) bool {
	if !b.isFree() {
		return false
	}
	b.entries = append(b.entries, fingerprint)
	return true
}

// remove deletes the first matching fingerprint, returning whether it
// was found.
func (b *bucket) remove(fingerprint string) bool {
	for i, e := range b.entries {
		if e == fingerprint {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// at returns the fingerprint at slot, for the eviction loop's random
// slot pick.
func (b *bucket) at(slot int) string {
	return b.entries[slot]
}

// swapAt replaces the fingerprint at slot with fingerprint and returns
// the previous value, so the undo log can restore it.
func (b *bucket) swapAt(slot int, fingerprint string) string {
	previous := b.entries[slot]
	b.entries[slot] = fingerprint
	return previous
}

// restoreAt is the undo log's rollback primitive: it writes previous
// back into slot without returning anything, since the caller already
// has what it needs.
func (b *bucket) restoreAt(slot int, previous string) {
	b.entries[slot] = previous
}

// equalsContent reports length-and-content equality, order-insensitive.
func (b *bucket) equalsContent(other *bucket) bool {
	if len(b.entries) != len(other.entries) {
		return false
	}
	counts := make(map[string]int, len(b.entries))
	for _, e := range b.entries {
		counts[e]++
	}
	for _, e := range other.entries {
		counts[e]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

func (b *bucket) clone() *bucket {
	cloned := &bucket{
		capacity: b.capacity,
		entries:  make([]string, len(b.entries), b.capacity),
	}
	copy(cloned.entries, b.entries)
	return cloned
}
