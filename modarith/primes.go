package modarith

// Triple is the NTT modulus set (p0 > p1 > p2) used by the three-modulus
// convolver (component H): three primes of the form k*2^m+1 chosen so that
// p0*p1*p2 exceeds base^2*maxLen for the digit bases this module supports,
// and so each prime's 2-adicity (m) bounds the maximum transform length.
type Triple struct {
	P0, P1, P2 uint64 // p0 > p1 > p2, the three moduli
	G0, G1, G2 uint64 // a primitive root of the respective prime
	M0, M1, M2 uint   // 2-adicity: p-1 = k * 2^m
}

// ProductionTriple is the modulus set used by convolve/crt for real
// arbitrary-precision multiplication (T = uint64 digits): three ~30-bit
// primes of the form k*2^m+1 with k additionally divisible by three, so
// every prime supports both a power-of-two NTT up to length 2^m (components
// C/D/E) and a primitive cube root of unity for the factor-3 wrapper
// (component F) — unlike the more commonly cited 998244353/167772161 pair,
// whose odd parts (119 and 5) are not divisible by three.
// 754974721 = 45*2^24+1, 1811939329 = 27*2^26+1, 2013265921 = 15*2^27+1.
// Their product (~2.75e27) exceeds base^2*maxLen for any digit base this
// module selects and any transform length up to 2^24 elements (the
// binding ceiling, from the lowest of the three 2-adicities).
var ProductionTriple = Triple{
	P0: 2013265921, G0: 31, M0: 27,
	P1: 1811939329, G1: 13, M1: 26,
	P2: 754974721, G2: 11, M2: 24,
}

// smallTriple returns a self-consistent modulus triple that fits entirely
// within the given element bit width, used to exercise the generic kernel
// across all four digit element-type variants (8/16/32/64-bit) in tests.
// Only the 64-bit variant needs the full ProductionTriple's dynamic range;
// the narrower variants use correspondingly smaller primes, each still of
// the form k*2^m+1 with k divisible by three so the factor-3 wrapper works
// identically across every element type.
func smallTriple(bits int) Triple {
	switch {
	case bits <= 8:
		// 193 = 3*2^6+1, 97 = 3*2^5+1, 73 = 9*2^3+1 — all < 256, all prime.
		return Triple{P0: 193, G0: 5, M0: 6, P1: 97, G1: 5, M1: 5, P2: 73, G2: 5, M2: 3}
	case bits <= 16:
		// 12289 = 3*2^12+1 (the Kyber/Dilithium-style NTT prime), 7681 =
		// 15*2^9+1, 10753 = 21*2^9+1.
		return Triple{P0: 12289, G0: 11, M0: 12, P1: 10753, G1: 11, M1: 9, P2: 7681, G2: 17, M2: 9}
	case bits <= 32:
		return ProductionTriple
	default:
		return ProductionTriple
	}
}

// TripleFor returns the canonical modulus triple for the given element type,
// sized so every prime fits within T.
func TripleFor[T Element]() Triple {
	var zero T
	return smallTriple(bitWidth(zero))
}

func bitWidth[T Element](zero T) int {
	switch any(zero).(type) {
	case uint8:
		return 8
	case uint16:
		return 16
	case uint32:
		return 32
	default:
		return 64
	}
}
