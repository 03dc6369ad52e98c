package probfilter

import "github.com/OneOfOne/xxhash"

// hash64 computes a seeded, deterministic 64-bit hash of data from the
// xxHash family (spec.md §4.1). The result is stable across platforms:
// xxhash operates on the byte representation directly, so no host
// endianness leaks into the output.
func hash64(data []byte, seed uint64) uint64 {
	return xxhash.Checksum64S(data, seed)
}

// hash32 computes a seeded, deterministic 32-bit hash of data from the
// same family. The filters do not call it: the cuckoo filter's
// alternate-index derivation reduces the low 32 bits of hash64 instead.
func hash32(data []byte, seed uint32) uint32 {
	return xxhash.Checksum32S(data, seed)
}
