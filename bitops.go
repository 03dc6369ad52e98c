package probfilter

// xorBytes XORs a and b byte-by-byte over the length of the longer slice,
// treating missing bytes in the shorter slice as zero. This is the
// "byte-level XOR helper" spec.md §1 says the core exposes to its
// collaborators, and S4 in §8 pins its exact semantics:
//
//	xorBytes([0;10], [1])      == [0,0,0,0,0,0,0,0,0,1]
//	xorBytes(xorBytes(a,b), b) == a
//	xorBytes(a, a)             == all-zero, same length as a
func xorBytes(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	// Right-align both operands, as if they were big-endian byte strings
	// of the same width: a shorter operand is zero-padded on the left.
	for k := 0; k < n; k++ {
		var av, bv byte
		if ai := len(a) - 1 - k; ai >= 0 {
			av = a[ai]
		}
		if bi := len(b) - 1 - k; bi >= 0 {
			bv = b[bi]
		}
		out[n-1-k] = av ^ bv
	}
	return out
}
