package ntt

import (
	"fmt"

	"github.com/apfloat-go/apfloat/apferr"
	"github.com/apfloat-go/apfloat/config"
)

// Kind names the concrete strategy an Instance wraps, for logging and
// tests (component G, spec §4.G).
type Kind int

const (
	KindTable Kind = iota
	KindSixStep
	KindTwoPass
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindSixStep:
		return "six-step"
	case KindTwoPass:
		return "two-pass"
	default:
		return "unknown"
	}
}

// Instance is the result of Select: a concrete strategy plus bookkeeping
// about whether it was wrapped with Factor3 and what the rounded transform
// length ended up being.
type Instance struct {
	Kind     Kind
	Factor3  bool
	Length   int64
	Strategy Strategy

	// TwoPassOnly is non-nil when Kind is KindTwoPass: it exposes the
	// storage-level TransformStorage/InverseTransformStorage entry points
	// for callers whose working set lives in a storage.Storage rather than
	// a slice. Instance.Strategy remains valid either way (TwoPass also
	// implements Strategy through an in-memory storage view).
	TwoPassOnly *TwoPass
}

// Selector picks among Table/SixStep/TwoPass (and wraps with Factor3 when
// the rounded length has a factor of three), per spec §4.G's three-step
// procedure: round the length up to 2^a or 3*2^a, choose a power-of-two
// kernel by comparing the power-of-two factor against cacheL1/2 and
// maxMemoryBlock, then wrap with Factor3 if a factor of three survived
// rounding.
type Selector struct {
	moduli *Moduli
	ctx    *config.Context
}

// NewSelector builds a Selector over moduli, resolving ctx's zero fields
// to defaults first.
func NewSelector(moduli *Moduli, ctx *config.Context) *Selector {
	resolved := ctx.Resolve()
	return &Selector{moduli: moduli, ctx: resolved}
}

// Select returns the strategy instance for a requested transform length,
// for the given modulus index.
func (s *Selector) Select(requestedLength int64, modulusIndex int) (*Instance, error) {
	if requestedLength <= 0 {
		return nil, fmt.Errorf("%w: requested length %d must be positive", apferr.ErrInvariant, requestedLength)
	}

	length, hasFactor3 := roundTransformLength(requestedLength)
	powerOfTwoFactor := length
	if hasFactor3 {
		powerOfTwoFactor = length / 3
	}

	if err := s.moduli.validateLength(powerOfTwoFactor, modulusIndex); err != nil {
		return nil, err
	}

	kind := s.chooseKernel(powerOfTwoFactor)

	inst := &Instance{Kind: kind, Factor3: hasFactor3, Length: length}

	switch kind {
	case KindTable:
		inner := NewTable(s.moduli)
		if hasFactor3 {
			inst.Strategy = NewFactor3(s.moduli, inner)
		} else {
			inst.Strategy = inner
		}
	case KindSixStep:
		inner := NewSixStep(s.moduli)
		if hasFactor3 {
			inst.Strategy = NewFactor3(s.moduli, inner)
		} else {
			inst.Strategy = inner
		}
	case KindTwoPass:
		tp := NewTwoPass(s.moduli)
		inst.TwoPassOnly = tp
		if hasFactor3 {
			inst.Strategy = NewFactor3(s.moduli, tp)
		} else {
			inst.Strategy = tp
		}
	}

	return inst, nil
}

// chooseKernel implements step 2 of spec §4.G: Table if the power-of-two
// factor (counting its wTable) fits half the L1 cache, Six-step if it and
// its wTable fit the max-memory-block budget and a signed 32-bit index,
// else Two-pass.
func (s *Selector) chooseKernel(powerOfTwoFactor int64) Kind {
	const elemBytes = 8
	// A Table transform of length n needs its n-element array plus an
	// n-element wTable resident at once.
	footprint := powerOfTwoFactor * elemBytes * 2
	switch {
	case footprint <= s.ctx.CacheL1Size/2:
		return KindTable
	case footprint <= s.ctx.MaxMemoryBlock && powerOfTwoFactor <= int64(1)<<31:
		return KindSixStep
	default:
		return KindTwoPass
	}
}

// roundTransformLength rounds n up to the smallest 2^a or 3*2^a that
// accommodates it, per spec §4.G step 1, returning whether the chosen
// length carries the factor of three.
func roundTransformLength(n int64) (length int64, hasFactor3 bool) {
	pow2 := nextPowerOfTwo(n)

	// The smallest 3*2^a >= n: divide n by 3 (rounding up), then round that
	// up to a power of two, then multiply back by 3. When n itself needs no
	// factor of three to be reached this is never smaller than pow2, so the
	// comparison below always picks the true minimum.
	ceilDiv3 := (n + 2) / 3
	factor3 := 3 * nextPowerOfTwo(ceilDiv3)

	if factor3 < pow2 {
		return factor3, true
	}
	return pow2, false
}

func nextPowerOfTwo(n int64) int64 {
	if n <= 1 {
		return 1
	}
	p := int64(1)
	for p < n {
		p <<= 1
	}
	return p
}
