// Package apfloat is the thin consumer-facing façade SPEC_FULL.md §6 calls
// for: an arbitrary-precision Number (radix, precision, scale, sign, digit
// stream) plus the Multiply/Sqrt/Log/Exp/Pi entry points named directly in
// §8's scenario table. It carries no independent arithmetic of its own —
// Multiply is built entirely from package convolve (component H) and
// package crt (component I); Sqrt/Log/Exp/Pi are built entirely from
// package newton (component J). This mirrors the distilled spec's framing
// of the façade as an "external collaborator" that only consumes the core
// engine's contracts.
package apfloat

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/apfloat-go/apfloat/apferr"
)

// Number is an arbitrary-precision floating-point value: sign, a
// most-significant-digit-first mantissa in the given radix, and a scale
// such that value = sign * 0.d1d2...dn * radix^scale (Apfloat's own
// "0.digits times radix to the scale" convention, per SPEC_FULL.md §2.3).
// Precision is the number of digits the value is significant to (and, for
// Sqrt/Log/Exp/Pi, the number of digits the result is computed to); it may
// exceed len(Mantissa) for an exact integer value with trailing structural
// zeros omitted.
type Number struct {
	Sign      int8
	Mantissa  []uint64
	Radix     uint32
	Precision int64
	Scale     int64
}

const digitAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Zero returns the additive identity at the given radix.
func Zero(radix uint32) Number {
	return Number{Radix: radix}
}

// New builds a Number from a machine integer at the given working
// precision (digit count) and radix; the typical seed for a transcendental
// scenario such as apfloat(2, 40, 10).
func New(value int64, precision int64, radix uint32) (Number, error) {
	if precision <= 0 {
		return Number{}, apferr.ErrNonPositivePrecision
	}
	if radix < 2 || radix > 36 {
		return Number{}, fmt.Errorf("apfloat: radix %d out of supported range [2,36]", radix)
	}
	if value == 0 {
		return Number{Radix: radix, Precision: precision}, nil
	}
	sign := int8(1)
	if value < 0 {
		sign = -1
		value = -value
	}
	n, err := ParseString(strconv.FormatUint(uint64(value), int(radix)), radix)
	if err != nil {
		return Number{}, err
	}
	n.Sign *= sign
	n.Precision = precision
	return n, nil
}

// ParseString parses a (possibly signed, possibly fractional) digit string
// in the given radix into a normalized Number: leading zero digits are
// stripped (adjusting Scale), trailing zero digits are stripped (Precision
// keeps the full digit count so an exact integer's trailing zeros are not
// lost), and a value of zero collapses to Zero(radix).
func ParseString(s string, radix uint32) (Number, error) {
	if radix < 2 || radix > 36 {
		return Number{}, fmt.Errorf("apfloat: radix %d out of supported range [2,36]", radix)
	}
	sign := int8(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intPart, fracPart := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, fracPart = s[:idx], s[idx+1:]
	}
	digitsStr := intPart + fracPart
	if digitsStr == "" {
		return Number{}, fmt.Errorf("apfloat: %q has no digits", s)
	}

	mantissa := make([]uint64, len(digitsStr))
	for i := 0; i < len(digitsStr); i++ {
		d, err := digitValue(digitsStr[i], radix)
		if err != nil {
			return Number{}, err
		}
		mantissa[i] = d
	}
	scale := int64(len(intPart))

	lead := 0
	for lead < len(mantissa)-1 && mantissa[lead] == 0 {
		lead++
		scale--
	}
	mantissa = mantissa[lead:]
	precision := int64(len(mantissa))

	end := len(mantissa)
	for end > 1 && mantissa[end-1] == 0 {
		end--
	}
	mantissa = mantissa[:end]

	if len(mantissa) == 1 && mantissa[0] == 0 {
		return Zero(radix), nil
	}
	return Number{
		Sign:      sign,
		Mantissa:  mantissa,
		Radix:     radix,
		Precision: precision,
		Scale:     scale,
	}, nil
}

// String renders n in positional notation, placing the decimal point at
// Scale digits from the start of the mantissa (padding with zeros on
// either side as needed), per the scale convention documented on Number.
func (n Number) String() string {
	if n.Sign == 0 {
		return "0"
	}
	var b strings.Builder
	if n.Sign < 0 {
		b.WriteByte('-')
	}
	switch {
	case n.Scale <= 0:
		b.WriteString("0.")
		for i := int64(0); i < -n.Scale; i++ {
			b.WriteByte('0')
		}
		writeDigits(&b, n.Mantissa)
	case n.Scale >= int64(len(n.Mantissa)):
		writeDigits(&b, n.Mantissa)
		for i := int64(len(n.Mantissa)); i < n.Scale; i++ {
			b.WriteByte('0')
		}
	default:
		writeDigits(&b, n.Mantissa[:n.Scale])
		b.WriteByte('.')
		writeDigits(&b, n.Mantissa[n.Scale:])
	}
	return b.String()
}

func writeDigits(b *strings.Builder, digits []uint64) {
	for _, d := range digits {
		b.WriteByte(digitAlphabet[d])
	}
}

func digitValue(c byte, radix uint32) (uint64, error) {
	var v uint64
	switch {
	case c >= '0' && c <= '9':
		v = uint64(c - '0')
	case c >= 'a' && c <= 'z':
		v = uint64(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = uint64(c-'A') + 10
	default:
		return 0, fmt.Errorf("apfloat: invalid digit %q", c)
	}
	if v >= uint64(radix) {
		return 0, fmt.Errorf("apfloat: digit %q out of range for radix %d", c, radix)
	}
	return v, nil
}

// numberToFloat converts n to a big.Float at the given working precision
// (in bits), via Horner evaluation of the mantissa followed by scaling by
// radix^(Scale-len(Mantissa)).
func numberToFloat(n Number, prec uint) *big.Float {
	if n.Sign == 0 {
		return new(big.Float).SetPrec(prec)
	}
	rad := new(big.Float).SetPrec(prec).SetUint64(uint64(n.Radix))
	m := new(big.Float).SetPrec(prec)
	for _, d := range n.Mantissa {
		m.Mul(m, rad)
		m.Add(m, new(big.Float).SetPrec(prec).SetUint64(d))
	}

	k := n.Scale - int64(len(n.Mantissa))
	switch {
	case k > 0:
		for i := int64(0); i < k; i++ {
			m.Mul(m, rad)
		}
	case k < 0:
		for i := int64(0); i < -k; i++ {
			m.Quo(m, rad)
		}
	}
	if n.Sign < 0 {
		m.Neg(m)
	}
	return m
}

// floatToNumber converts f to a Number with precision significant digits
// in the given radix, via the standard repeated-multiply digit-extraction
// algorithm: normalize |f| into [1/radix, 1) tracking the scale, then pull
// off one digit per iteration by multiplying by radix and taking the
// integer part. The last retained digit is rounded to nearest against the
// first dropped one — the only rounding mode this library supports.
func floatToNumber(f *big.Float, radix uint32, precision int64) Number {
	if f.Sign() == 0 {
		return Zero(radix)
	}
	sign := int8(1)
	if f.Sign() < 0 {
		sign = -1
	}
	prec := f.Prec()
	if prec < 64 {
		prec = 64
	}
	work := new(big.Float).SetPrec(prec).Abs(f)
	rad := new(big.Float).SetPrec(prec).SetUint64(uint64(radix))
	one := new(big.Float).SetPrec(prec).SetInt64(1)
	invRad := new(big.Float).SetPrec(prec).Quo(one, rad)

	var scale int64
	for work.Cmp(one) >= 0 {
		work.Quo(work, rad)
		scale++
	}
	for work.Sign() != 0 && work.Cmp(invRad) < 0 {
		work.Mul(work, rad)
		scale--
	}

	mantissa := make([]uint64, precision)
	for i := int64(0); i < precision; i++ {
		work.Mul(work, rad)
		digitInt, _ := work.Int(nil)
		d := digitInt.Uint64()
		if d >= uint64(radix) {
			d = uint64(radix) - 1
		}
		mantissa[i] = d
		work.Sub(work, new(big.Float).SetPrec(prec).SetUint64(d))
	}

	// Round to nearest on the first dropped digit, rippling any carry back
	// up the mantissa; a full ripple (all digits at radix-1) rolls the value
	// over to a leading 1 and bumps the scale.
	work.Mul(work, rad)
	nextInt, _ := work.Int(nil)
	next := nextInt.Uint64()
	if 2*next >= uint64(radix) {
		i := precision - 1
		for ; i >= 0; i-- {
			if mantissa[i]+1 < uint64(radix) {
				mantissa[i]++
				break
			}
			mantissa[i] = 0
		}
		if i < 0 {
			mantissa[0] = 1
			scale++
		}
	}

	n := Number{Sign: sign, Mantissa: mantissa, Radix: radix, Precision: precision, Scale: scale}
	return normalize(n)
}

// normalize strips leading zero digits (adjusting Scale) from a Number
// produced by digit extraction, collapsing to Zero if every digit is zero.
func normalize(n Number) Number {
	lead := 0
	for lead < len(n.Mantissa)-1 && n.Mantissa[lead] == 0 {
		lead++
	}
	if lead == len(n.Mantissa)-1 && n.Mantissa[lead] == 0 {
		return Zero(n.Radix)
	}
	n.Mantissa = n.Mantissa[lead:]
	n.Scale -= int64(lead)
	return n
}

// precisionBits converts a digit-count precision in the given radix to a
// working bit precision for math/big.Float, via log(radix)/log(2). Wired
// through the shared per-radix cache (newton.Cache.LogRadix) rather than
// math.Log2 directly, since SPEC_FULL.md §9's cached-log-of-radix registry
// exists precisely to avoid recomputing this conversion factor on every
// call for a radix the caller keeps reusing.
func precisionBits(precision int64, radix uint32) uint {
	lr := logRadix(radix, 64)
	lr64, _ := lr.Float64()
	if lr64 <= 0 {
		lr64 = math.Ln2
	}
	bits := float64(precision)*(lr64/math.Ln2) + 64
	if bits < 64 {
		bits = 64
	}
	return uint(bits)
}
