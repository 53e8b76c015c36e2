// Package modarith is the modular arithmetic kernel (component A): add,
// subtract, multiply, divide, power, negate, and nth-root-of-unity over a
// fixed prime modulus of the form k*2^m+1, generic over the digit element
// type (8/16/32/64-bit unsigned).
//
// Grounded on _examples/luxfi-ringtail/gpu/gpu_ntt.go's mulMod/modPow/
// modInverse/findPrimitiveRoot, generalized with golang.org/x/exp/constraints
// so the four digit element-type variants the spec calls out collapse into
// one generic implementation instead of four hand-duplicated ones.
package modarith

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Element is the set of digit element types the kernel can be instantiated
// over: byte-sized, short-sized, word-sized, and long-sized digits.
type Element interface {
	constraints.Unsigned
}

// Kernel performs modular arithmetic mod a fixed prime, held as state.
// All arithmetic is carried out by widening to uint64 (safe: every Element
// is at most 64 bits wide and the modulus itself is an Element value, so no
// product of two reduced operands can overflow 128 bits).
type Kernel[T Element] struct {
	modulus T
	mod64   uint64
}

// New returns a kernel operating modulo p. p must be a prime of the form
// k*2^m+1 for the NTT machinery built on top of this package to work; New
// itself does not verify primality (that is the caller's responsibility,
// typically a package-level table of precomputed primes).
func New[T Element](p T) *Kernel[T] {
	return &Kernel[T]{modulus: p, mod64: uint64(p)}
}

// Modulus returns the active prime.
func (k *Kernel[T]) Modulus() T { return k.modulus }

// Add returns (a+b) mod p.
func (k *Kernel[T]) Add(a, b T) T {
	sum := uint64(a) + uint64(b)
	if sum >= k.mod64 {
		sum -= k.mod64
	}
	return T(sum)
}

// Subtract returns (a-b) mod p.
func (k *Kernel[T]) Subtract(a, b T) T {
	if uint64(a) >= uint64(b) {
		return T(uint64(a) - uint64(b))
	}
	return T(k.mod64 - uint64(b) + uint64(a))
}

// Negate returns (-a) mod p.
func (k *Kernel[T]) Negate(a T) T {
	if a == 0 {
		return 0
	}
	return T(k.mod64 - uint64(a))
}

// Multiply returns (a*b) mod p using a wide multiply followed by a
// division-based reduction, the same technique as
// _examples/luxfi-ringtail/gpu/gpu_ntt.go's mulMod.
func (k *Kernel[T]) Multiply(a, b T) T {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi == 0 {
		return T(lo % k.mod64)
	}
	_, rem := bits.Div64(hi, lo, k.mod64)
	return T(rem)
}

// Pow returns base^exp mod p via square-and-multiply.
func (k *Kernel[T]) Pow(base T, exp uint64) T {
	result := T(1)
	base = T(uint64(base) % k.mod64)
	for exp > 0 {
		if exp&1 == 1 {
			result = k.Multiply(result, base)
		}
		exp >>= 1
		base = k.Multiply(base, base)
	}
	return result
}

// Inverse returns a^-1 mod p via Fermat's little theorem (p is prime).
// Returns (0, false) if a is zero mod p.
func (k *Kernel[T]) Inverse(a T) (T, bool) {
	if uint64(a)%k.mod64 == 0 {
		return 0, false
	}
	return k.Pow(a, k.mod64-2), true
}

// Divide returns a/b mod p, i.e. a * b^-1 mod p. Returns (0, false) if b is
// zero mod p.
func (k *Kernel[T]) Divide(a, b T) (T, bool) {
	inv, ok := k.Inverse(b)
	if !ok {
		return 0, false
	}
	return k.Multiply(a, inv), true
}

// NthRoot returns a primitive n-th root of unity mod p, derived as
// primitiveRoot^((p-1)/n), or its modular inverse when inverse is true.
// n must divide p-1 exactly; callers are expected to pass n as a power of
// two (or 3*power-of-two) bounded by the modulus's 2-adicity, per the
// NTTBuilder/strategy-selector contract in component G.
func (k *Kernel[T]) NthRoot(primitiveRoot T, n uint64, inverse bool) T {
	exp := (k.mod64 - 1) / n
	root := k.Pow(primitiveRoot, exp)
	if !inverse {
		return root
	}
	inv, _ := k.Inverse(root)
	return inv
}
