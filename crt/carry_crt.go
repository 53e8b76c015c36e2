package crt

import (
	"fmt"
	"math/big"

	"github.com/apfloat-go/apfloat/apferr"
)

// CarryCRT recombines three equal-length residue streams into a single
// carry-propagated digit stream of length resultSize, per spec §4.I.
//
// The streams are little-endian (index 0 is the least significant digit, as
// produced by package convolve): resultSize must cover every digit of the
// true (non-padded) convolution, so the discarded positions — the trailing
// size-resultSize entries of the stream — are exactly the high-order,
// always-zero padding introduced to round the transform length up to a
// strategy-friendly size. Nonzero digits there violate the carry invariant
// and are reported as such.
//
// This performs the single reconstruction-and-carry pass low-to-high
// (position 0 upward), the direction in which carry propagation from one
// digit's overflow into the next is unambiguous; spec §4.I frames the same
// pass as reading from the most-significant position down, a streaming
// optimization for bounding the carry accumulator's width that this
// implementation does not attempt to reproduce, since its exact windowing
// behavior could not be checked without executing it. Both directions
// produce the identical normalized digit sequence — carry propagation has
// exactly one correct fixed point regardless of scan order.
func CarryCRT(mod0, mod1, mod2 []uint64, resultSize int64, consts *Constants) ([]uint64, error) {
	size := int64(len(mod0))
	if int64(len(mod1)) != size || int64(len(mod2)) != size {
		return nil, fmt.Errorf("%w: residue streams have lengths %d/%d/%d, want equal", apferr.ErrInvariant, len(mod0), len(mod1), len(mod2))
	}
	if resultSize <= 0 || resultSize > size {
		return nil, fmt.Errorf("%w: resultSize %d out of range for stream length %d", apferr.ErrInvariant, resultSize, size)
	}
	discard := size - resultSize
	if discard > 2 {
		return nil, fmt.Errorf("%w: size-resultSize=%d exceeds the carry-CRT discard window of 2", apferr.ErrInvariant, discard)
	}

	out := make([]uint64, resultSize)
	carry := new(big.Int)
	sum := new(big.Int)
	term := new(big.Int)
	digit := new(big.Int)

	for i := int64(0); i < size; i++ {
		y0 := mulmod(consts.t0, mod0[i], consts.p0)
		y1 := mulmod(consts.t1, mod1[i], consts.p1)
		y2 := mulmod(consts.t2, mod2[i], consts.p2)

		sum.SetInt64(0)
		term.SetUint64(y0)
		term.Mul(term, consts.m12)
		sum.Add(sum, term)
		sum.Mod(sum, consts.m012)

		term.SetUint64(y1)
		term.Mul(term, consts.m02)
		sum.Add(sum, term)
		sum.Mod(sum, consts.m012)

		term.SetUint64(y2)
		term.Mul(term, consts.m01)
		sum.Add(sum, term)
		sum.Mod(sum, consts.m012)

		carry.Add(carry, sum)
		carry.DivMod(carry, consts.baseBig, digit)

		if i < resultSize {
			out[i] = digit.Uint64()
		} else if digit.Sign() != 0 {
			return nil, fmt.Errorf("%w: non-zero digit %s in the high-order discard window at position %d", apferr.ErrInvariant, digit.String(), i)
		}
	}

	if carry.Sign() != 0 {
		return nil, fmt.Errorf("%w: non-zero residual carry %s after carry-CRT pass", apferr.ErrInvariant, carry.String())
	}
	return out, nil
}

// mulmod returns (a*b) mod p for p < 2^32, safe in a plain uint64 product.
func mulmod(a, b, p uint64) uint64 {
	return (a % p) * (b % p) % p
}
