package newton

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

const seedPrecision = 64

// InverseRoot computes x^(-1/n) to targetPrec bits via Newton's method on
// f(y) = y^-n - x, whose update rule needs no division: given an estimate
// y, the residual r = 1 - x*y^n and the update y += y*r/n converge
// quadratically. Seeded from bigfloat.Pow at machine precision.
func InverseRoot(x *big.Float, n uint64, targetPrec uint) *big.Float {
	exponent := new(big.Float).Quo(big.NewFloat(-1), new(big.Float).SetUint64(n))
	seed := bigfloat.Pow(new(big.Float).Copy(x).SetPrec(seedPrecision), exponent.SetPrec(seedPrecision))

	divisor := new(big.Float).SetUint64(n)
	d := &Driver{
		Residual: func(estimate *big.Float, prec uint) *big.Float {
			yn := powUint(estimate, n, prec)
			r := new(big.Float).SetPrec(prec).Mul(x, yn)
			return r.Sub(big.NewFloat(1).SetPrec(prec), r)
		},
		Update: func(estimate, residual *big.Float, prec uint) *big.Float {
			step := new(big.Float).SetPrec(prec).Mul(estimate, residual)
			step.Quo(step, new(big.Float).Copy(divisor).SetPrec(prec))
			return new(big.Float).SetPrec(prec).Add(estimate, step)
		},
	}
	return d.Run(seed, seedPrecision, targetPrec)
}

// Sqrt computes the square root of x to targetPrec bits as
// x * InverseRoot(x, 2, targetPrec).
func Sqrt(x *big.Float, targetPrec uint) *big.Float {
	inv := InverseRoot(x, 2, targetPrec)
	return new(big.Float).SetPrec(targetPrec).Mul(x, inv)
}

// Log computes the natural logarithm of x to targetPrec bits via Newton's
// method on f(y) = exp(y) - x: residual r = x*exp(-y) - 1, update y += r
// (divisor 1). exp(-y) at each iteration's working precision is supplied by
// bigfloat.Exp directly — package newton doesn't bootstrap its own
// quadratically-convergent exp for this (see Exp below) since reusing the
// library's exp avoids circular dependence between the two Newton loops at
// every intermediate precision.
func Log(x *big.Float, targetPrec uint) *big.Float {
	seed := bigfloat.Log(new(big.Float).Copy(x).SetPrec(seedPrecision))

	d := &Driver{
		Residual: func(estimate *big.Float, prec uint) *big.Float {
			neg := new(big.Float).SetPrec(prec).Neg(estimate)
			expNeg := bigfloat.Exp(neg)
			r := new(big.Float).SetPrec(prec).Mul(x, expNeg)
			return r.Sub(r, big.NewFloat(1).SetPrec(prec))
		},
		Update: func(estimate, residual *big.Float, prec uint) *big.Float {
			return new(big.Float).SetPrec(prec).Add(estimate, residual)
		},
	}
	return d.Run(seed, seedPrecision, targetPrec)
}

// Exp computes e^x to targetPrec bits via Newton's method on
// f(y) = log(y) - x: residual r = x - log(y), update y += y*r (divisor 1).
func Exp(x *big.Float, targetPrec uint) *big.Float {
	seed := bigfloat.Exp(new(big.Float).Copy(x).SetPrec(seedPrecision))

	d := &Driver{
		Residual: func(estimate *big.Float, prec uint) *big.Float {
			logY := bigfloat.Log(new(big.Float).Copy(estimate).SetPrec(prec))
			r := new(big.Float).SetPrec(prec).Sub(x, logY)
			return r
		},
		Update: func(estimate, residual *big.Float, prec uint) *big.Float {
			step := new(big.Float).SetPrec(prec).Mul(estimate, residual)
			return new(big.Float).SetPrec(prec).Add(estimate, step)
		},
	}
	return d.Run(seed, seedPrecision, targetPrec)
}

// Pi computes pi to targetPrec bits via the Gauss-Legendre AGM iteration,
// the same precision-doubling shape as the Newton driver (each AGM round
// roughly doubles the number of correct digits) but with its own update
// rule rather than going through Driver. It does not call Log: all rounds
// run at the fixed working precision targetPrec + extraPrecision.
func Pi(targetPrec uint) *big.Float {
	prec := targetPrec + extraPrecision
	one := big.NewFloat(1).SetPrec(prec)
	two := big.NewFloat(2).SetPrec(prec)
	four := big.NewFloat(4).SetPrec(prec)

	a := new(big.Float).SetPrec(prec).Copy(one)
	b := InverseRoot(two, 2, prec) // b0 = 1/sqrt(2)
	t := new(big.Float).SetPrec(prec).Quo(one, four)
	p := new(big.Float).SetPrec(prec).Copy(one)

	// Each Gauss-Legendre round roughly doubles the number of correct bits
	// starting from a couple of bits, so ~log2(prec) rounds suffice; the +2
	// covers the slow first rounds.
	rounds := log2Ceil(prec, 1) + 2
	for i := 0; i < rounds; i++ {
		aNext := new(big.Float).SetPrec(prec).Add(a, b)
		aNext.Quo(aNext, two)

		ab := new(big.Float).SetPrec(prec).Mul(a, b)
		bNext := new(big.Float).SetPrec(prec).Sqrt(ab)

		diff := new(big.Float).SetPrec(prec).Sub(a, aNext)
		diff.Mul(diff, diff)
		diff.Mul(diff, p)
		t.Sub(t, diff)

		a, b = aNext, bNext
		p.Mul(p, two)
	}

	sum := new(big.Float).SetPrec(prec).Add(a, b)
	sum.Mul(sum, sum)
	pi := new(big.Float).SetPrec(prec).Quo(sum, new(big.Float).SetPrec(prec).Mul(four, t))
	return pi.SetPrec(targetPrec)
}

// powUint raises base to the exp-th power at the given precision via
// square-and-multiply, the big.Float analogue of modarith.Kernel.Pow.
func powUint(base *big.Float, exp uint64, prec uint) *big.Float {
	result := big.NewFloat(1).SetPrec(prec)
	b := new(big.Float).Copy(base).SetPrec(prec)
	for exp > 0 {
		if exp&1 == 1 {
			result = new(big.Float).SetPrec(prec).Mul(result, b)
		}
		exp >>= 1
		if exp > 0 {
			b = new(big.Float).SetPrec(prec).Mul(b, b)
		}
	}
	return result
}
