// Package crt is the carry-CRT finalizer (component I): it recombines the
// three modular residue streams a convolution (component H) produces into a
// single carry-propagated digit stream in the caller's base.
//
// Grounded on SPEC_FULL.md §4.I's algorithm description; no three-modulus
// CRT/carry-propagation code exists anywhere in the example pack, so the
// reconstruction math is derived directly from the Chinese Remainder
// Theorem rather than adapted from a teacher file. Precomputed-constant and
// big.Int-accumulator shape follows the teacher's general habit
// (_examples/luxfi-ringtail/gpu/gpu_ntt.go's kernel) of precomputing
// modulus-derived constants once at construction time rather than
// recomputing them per call.
package crt

import (
	"math/big"

	"github.com/apfloat-go/apfloat/modarith"
)

// Constants holds the CRT reconstruction constants for a fixed prime triple
// and output base, precomputed once and reused across every CarryCRT call.
type Constants struct {
	p0, p1, p2       uint64
	t0, t1, t2       uint64 // (p_j*p_k)^-1 mod p_i, the "T_i" from spec §4.I
	m01, m02, m12    *big.Int
	m012             *big.Int
	base             uint64
	baseBig          *big.Int
}

// NewConstants precomputes the T/M constants for triple under the given
// output base (the digit radix carry-CRT's result stream is expressed in).
func NewConstants(triple modarith.Triple, base uint64) *Constants {
	p0, p1, p2 := triple.P0, triple.P1, triple.P2
	k0 := modarith.New[uint64](p0)
	k1 := modarith.New[uint64](p1)
	k2 := modarith.New[uint64](p2)

	t0, _ := k0.Inverse(k0.Multiply(p1, p2))
	t1, _ := k1.Inverse(k1.Multiply(p0, p2))
	t2, _ := k2.Inverse(k2.Multiply(p0, p1))

	bigP0 := new(big.Int).SetUint64(p0)
	bigP1 := new(big.Int).SetUint64(p1)
	bigP2 := new(big.Int).SetUint64(p2)

	m01 := new(big.Int).Mul(bigP0, bigP1)
	m02 := new(big.Int).Mul(bigP0, bigP2)
	m12 := new(big.Int).Mul(bigP1, bigP2)
	m012 := new(big.Int).Mul(m01, bigP2)

	return &Constants{
		p0: p0, p1: p1, p2: p2,
		t0: t0, t1: t1, t2: t2,
		m01: m01, m02: m02, m12: m12, m012: m012,
		base:    base,
		baseBig: new(big.Int).SetUint64(base),
	}
}
