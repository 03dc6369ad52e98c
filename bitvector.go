package probfilter

import (
	"github.com/bits-and-blooms/bitset"
)

// BitVector is a fixed-size packed array of bits, addressed 0..size-1
// (spec.md §3). Length is immutable after construction; Popcount is
// O(size) via bitset's word-parallel count.
type BitVector struct {
	size uint32
	bits *bitset.BitSet
}

// NewBitVector allocates a zeroed vector of the given size.
func NewBitVector(size uint32) *BitVector {
	return &BitVector{
		size: size,
		bits: bitset.New(uint(size)),
	}
}

// Size returns the immutable length of the vector.
func (v *BitVector) Size() uint32 {
	return v.size
}

// Set sets the bit at i.
func (v *BitVector) Set(i uint32) {
	v.bits.Set(uint(i))
}

// Clear clears the bit at i.
func (v *BitVector) Clear(i uint32) {
	v.bits.Clear(uint(i))
}

// Get reports whether the bit at i is set.
func (v *BitVector) Get(i uint32) bool {
	return v.bits.Test(uint(i))
}

// Popcount returns the number of set bits.
func (v *BitVector) Popcount() uint32 {
	return uint32(v.bits.Count())
}

// Equals reports whether two vectors have the same size and content.
func (v *BitVector) Equals(other *BitVector) bool {
	if other == nil || v.size != other.size {
		return false
	}
	return v.bits.Equal(other.bits)
}

// Clone returns an independent copy.
func (v *BitVector) Clone() *BitVector {
	return &BitVector{
		size: v.size,
		bits: v.bits.Clone(),
	}
}

// Bytes returns the vector's packed words as a little-endian byte slice,
// the representation the export format's bit-vector-repr uses.
func (v *BitVector) Bytes() []byte {
	words := v.bits.Bytes()
	out := make([]byte, 0, len(words)*8)
	for _, w := range words {
		for b := 0; b < 8; b++ {
			out = append(out, byte(w>>(8*b)))
		}
	}
	return out
}

// BitVectorFromBytes rebuilds a vector of the given size from the bytes
// Bytes produced.
func BitVectorFromBytes(size uint32, data []byte) *BitVector {
	v := NewBitVector(size)
	for i := uint32(0); i < size; i++ {
		byteIdx := int(i / 8)
		if byteIdx < len(data) && data[byteIdx]&(1<<(i%8)) != 0 {
			v.Set(i)
		}
	}
	return v
}
