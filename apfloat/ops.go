package apfloat

import (
	"fmt"
	"math/big"

	"github.com/apfloat-go/apfloat/apferr"
	"github.com/apfloat-go/apfloat/config"
	"github.com/apfloat-go/apfloat/convolve"
	"github.com/apfloat-go/apfloat/crt"
	"github.com/apfloat-go/apfloat/modarith"
	"github.com/apfloat-go/apfloat/newton"
)

// transcendentalCache is the process-wide pi/log(radix) registry SPEC_FULL.md
// §9 describes: one per-radix mutex-guarded entry, shared by every Pi and
// Log call in the process for the lifetime of the program (no persistence,
// matching §6's "in-memory only").
var transcendentalCache = newton.NewCache()

// Multiply computes a*b exactly, via the three-modulus NTT convolver
// (component H) and carry-CRT finalizer (component I) — the main entry
// point into the core engine, per SPEC_FULL.md §6's multiply(...) contract.
func Multiply(a, b Number) (Number, error) {
	if a.Radix != b.Radix {
		return Number{}, fmt.Errorf("apfloat: mismatched radixes %d/%d", a.Radix, b.Radix)
	}
	if a.Sign == 0 || b.Sign == 0 {
		return Zero(a.Radix), nil
	}

	la := toLittleEndian(a.Mantissa)
	lb := toLittleEndian(b.Mantissa)
	streamLength := int64(len(la) + len(lb))

	triple := modarith.TripleFor[uint64]()
	ctx := config.Default()
	conv := convolve.New(triple, ctx)
	residues, err := conv.Multiply(la, lb, streamLength)
	if err != nil {
		return Number{}, err
	}

	consts := crt.NewConstants(triple, uint64(a.Radix))
	digitsLE, err := crt.CarryCRT(residues.Mod0, residues.Mod1, residues.Mod2, streamLength, consts)
	if err != nil {
		return Number{}, err
	}

	mantissa := fromLittleEndian(digitsLE)
	scale := a.Scale + b.Scale
	result := normalize(Number{
		Sign:      a.Sign * b.Sign,
		Mantissa:  mantissa,
		Radix:     a.Radix,
		Precision: int64(len(mantissa)),
		Scale:     scale,
	})
	return result, nil
}

// Sqrt computes the square root of x to x.Precision digits, as
// x * InverseRoot(x, 2, ...) (component J, SPEC_FULL.md §4.J) — one Newton
// loop plus one multiply, matching §8 scenario 4.
func Sqrt(x Number) (Number, error) {
	if x.Sign < 0 {
		return Number{}, apferr.ErrNegativeEvenRoot
	}
	if x.Precision <= 0 {
		return Number{}, apferr.ErrNonPositivePrecision
	}
	if x.Sign == 0 {
		return Zero(x.Radix), nil
	}
	prec := precisionBits(x.Precision, x.Radix)
	f := numberToFloat(x, prec)
	result := newton.Sqrt(f, prec)
	return floatToNumber(result, x.Radix, x.Precision), nil
}

// Log computes the natural logarithm of x to x.Precision digits
// (component J's log skeleton), per §8 scenario 3. x must be positive —
// per SPEC_FULL.md §1's Non-goals ("no NaN/Inf"), the logarithm of a
// non-positive value is undefined behavior here, not a reported error.
func Log(x Number) (Number, error) {
	if x.Precision <= 0 {
		return Number{}, apferr.ErrNonPositivePrecision
	}
	prec := precisionBits(x.Precision, x.Radix)
	f := numberToFloat(x, prec)
	result := newton.Log(f, prec)
	return floatToNumber(result, x.Radix, x.Precision), nil
}

// Exp computes e^x to x.Precision digits (component J's log-based exp
// skeleton).
func Exp(x Number) (Number, error) {
	if x.Precision <= 0 {
		return Number{}, apferr.ErrNonPositivePrecision
	}
	prec := precisionBits(x.Precision, x.Radix)
	f := numberToFloat(x, prec)
	result := newton.Exp(f, prec)
	return floatToNumber(result, x.Radix, x.Precision), nil
}

// Pi computes pi to precision digits in radix, cached per radix via the
// shared transcendentalCache (§8 scenario 2; §9's "pi()... synchronizes on
// a per-radix key... other radixes proceed unblocked").
func Pi(precision int64, radix uint32) (Number, error) {
	if precision <= 0 {
		return Number{}, apferr.ErrNonPositivePrecision
	}
	prec := precisionBits(precision, radix)
	f := transcendentalCache.Pi(int(radix), prec, newton.Pi)
	return floatToNumber(f, radix, precision), nil
}

// logRadix returns log(radix) to at least prec bits, cached per radix via
// transcendentalCache — the conversion factor precisionBits needs on every
// digit-count-to-bit-count translation.
func logRadix(radix uint32, prec uint) *big.Float {
	return transcendentalCache.LogRadix(int(radix), prec, func(p uint) *big.Float {
		return newton.Log(new(big.Float).SetPrec(p).SetUint64(uint64(radix)), p)
	})
}

// toLittleEndian reverses a most-significant-first mantissa into the
// least-significant-first digit order package convolve and package crt
// operate on.
func toLittleEndian(mantissa []uint64) []uint64 {
	out := make([]uint64, len(mantissa))
	n := len(mantissa)
	for i, d := range mantissa {
		out[n-1-i] = d
	}
	return out
}

// fromLittleEndian is toLittleEndian's inverse.
func fromLittleEndian(digits []uint64) []uint64 {
	return toLittleEndian(digits)
}
