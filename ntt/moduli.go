// Package ntt implements the power-of-two and factor-three Number-Theoretic
// Transform strategies (components C, D, E, F) and the strategy selector
// (component G) that picks among them.
//
// The butterfly/bit-reversal/twiddle-table technique throughout is adapted
// from _examples/luxfi-ringtail/gpu/gpu_ntt.go's BatchNTT (a verified,
// tested NTT round-trip for ring-LWE polynomials); this package keeps that
// technique and replaces the ring-LWE polynomial semantics with the
// three-modulus big-integer digit convolution semantics SPEC_FULL.md §4
// describes.
package ntt

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/apfloat-go/apfloat/apferr"
	"github.com/apfloat-go/apfloat/modarith"
)

// Moduli bundles the three NTT-friendly primes used by the convolver
// (component H) together with a modular kernel and primitive root per
// prime, so every transform strategy shares one source of truth for "which
// modulus am I running under."
type Moduli struct {
	kernels [3]*modarith.Kernel[uint64]
	roots   [3]uint64
	adicity [3]uint
	primes  [3]uint64
	tables  sync.Map // map[wTableKey]*wTable, see wtable.go
}

// NewModuli builds the kernel set from a modarith.Triple (typically
// modarith.ProductionTriple).
func NewModuli(tri modarith.Triple) *Moduli {
	return &Moduli{
		kernels: [3]*modarith.Kernel[uint64]{
			modarith.New[uint64](tri.P0),
			modarith.New[uint64](tri.P1),
			modarith.New[uint64](tri.P2),
		},
		roots:   [3]uint64{tri.G0, tri.G1, tri.G2},
		adicity: [3]uint{tri.M0, tri.M1, tri.M2},
		primes:  [3]uint64{tri.P0, tri.P1, tri.P2},
	}
}

// Kernel returns the modular arithmetic kernel for modulus index 0/1/2.
func (m *Moduli) Kernel(idx int) *modarith.Kernel[uint64] { return m.kernels[idx] }

// Prime returns the prime at modulus index idx.
func (m *Moduli) Prime(idx int) uint64 { return m.primes[idx] }

// MaxTransformLength returns 2^m, the ceiling on power-of-two transform
// length supported by modulus idx (spec §4.C).
func (m *Moduli) MaxTransformLength(idx int) int64 { return int64(1) << m.adicity[idx] }

// validateLength enforces component C's constraints: n is a power of two,
// n <= MaxTransformLength(idx), and n fits a signed 32-bit index.
func (m *Moduli) validateLength(n int64, idx int) error {
	if n <= 0 || n&(n-1) != 0 {
		return fmt.Errorf("%w: length %d is not a power of two", apferr.ErrInvariant, n)
	}
	if n > m.MaxTransformLength(idx) {
		return fmt.Errorf("%w: length %d exceeds modulus %d's ceiling 2^%d", apferr.ErrTransformLengthExceeded, n, m.primes[idx], m.adicity[idx])
	}
	if n > int64(1)<<31 {
		return fmt.Errorf("%w: length %d does not fit a signed 32-bit index", apferr.ErrTransformLengthExceeded, n)
	}
	return nil
}

func log2(n int64) int { return bits.TrailingZeros64(uint64(n)) }
