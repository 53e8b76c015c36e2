package newton

import (
	"math"
	"math/big"
	"testing"

	"github.com/montanaflynn/stats"
)

// correctBits returns how many bits of estimate agree with truth, measured
// as -log2(relative error). Both operands should already carry at least
// targetPrec bits so the comparison itself isn't the limiting factor.
func correctBits(t *testing.T, estimate, truth *big.Float, targetPrec uint) float64 {
	t.Helper()
	if truth.Sign() == 0 {
		t.Fatal("truth must be nonzero")
	}
	wide := targetPrec + 64
	diff := new(big.Float).SetPrec(wide).Sub(estimate, truth)
	diff.Abs(diff)
	if diff.Sign() == 0 {
		return float64(targetPrec)
	}
	rel := new(big.Float).SetPrec(wide).Quo(diff, new(big.Float).SetPrec(wide).Abs(truth))
	f, _ := rel.Float64()
	if f <= 0 {
		return float64(targetPrec)
	}
	return -math.Log2(f)
}

// TestInverseRootQuadraticConvergence exercises testable property 5: as the
// requested target precision doubles, the number of correct bits in the
// result should grow at least linearly with it (the hallmark of the
// precision-doubling Newton loop never falling behind the growing target).
// The per-target correct-bit counts are aggregated with
// github.com/montanaflynn/stats rather than hand-rolled summation/ratio
// code, matching SPEC_FULL.md §2.2's wiring of that dependency.
func TestInverseRootQuadraticConvergence(t *testing.T) {
	x := big.NewFloat(2)
	targets := []uint{64, 128, 256, 512, 1024}

	ref := new(big.Float).SetPrec(2048).Sqrt(new(big.Float).SetPrec(2048).Copy(x))
	trueInv := new(big.Float).SetPrec(2048).Quo(big.NewFloat(1).SetPrec(2048), ref)

	var ratios []float64
	var prevBits float64
	for i, prec := range targets {
		got := InverseRoot(x, 2, prec)
		bits := correctBits(t, got, trueInv, prec)
		if bits < float64(prec)*0.5 {
			t.Fatalf("target %d bits: only %f correct bits (want at least half the target)", prec, bits)
		}
		if i > 0 {
			ratios = append(ratios, bits/prevBits)
		}
		prevBits = bits
	}

	mean, err := stats.Mean(stats.Float64Data(ratios))
	if err != nil {
		t.Fatalf("stats.Mean: %v", err)
	}
	// Each target precision in targets doubles the previous one, and the
	// driver is expected to keep pace, so the correct-bit count should grow
	// by roughly the same factor on average.
	if mean < 1.5 {
		t.Fatalf("mean correct-bit growth ratio %f too low for quadratic convergence", mean)
	}
}

// TestSqrtIdempotence exercises testable property 6: sqrt(2)^2 == 2 to
// within 2^16 ulps at the requested precision.
func TestSqrtIdempotence(t *testing.T) {
	x := big.NewFloat(2)
	const prec = 256
	root := Sqrt(x, prec)
	squared := new(big.Float).SetPrec(prec).Mul(root, root)

	diff := new(big.Float).SetPrec(prec).Sub(squared, new(big.Float).SetPrec(prec).Copy(x))
	diff.Abs(diff)
	tolerance := new(big.Float).SetMantExp(big.NewFloat(1), squared.MantExp(nil)-int(prec)+16)
	if diff.Cmp(tolerance) > 0 {
		gotF, _ := squared.Float64()
		t.Fatalf("sqrt(2)^2 = %v, want ~2 within a small multiple of one ulp", gotF)
	}
}

// TestLogExpIdempotence exercises testable property 6 in one direction:
// exp(log(3)) == 3 to within 2^20 ulps. log(exp(x)) is not checked here.
func TestLogExpIdempotence(t *testing.T) {
	const prec = 256
	x := big.NewFloat(3)

	logX := Log(x, prec)
	roundTrip := Exp(logX, prec)
	diff := new(big.Float).SetPrec(prec).Sub(roundTrip, new(big.Float).SetPrec(prec).Copy(x))
	diff.Abs(diff)
	tolerance := new(big.Float).SetMantExp(big.NewFloat(1), roundTrip.MantExp(nil)-int(prec)+20)
	if diff.Cmp(tolerance) > 0 {
		gotF, _ := roundTrip.Float64()
		t.Fatalf("exp(log(3)) = %v, want ~3", gotF)
	}
}

// TestPiMatchesReference checks the Gauss-Legendre AGM iteration against
// math.Pi as the reference value.
func TestPiMatchesReference(t *testing.T) {
	const prec = 200
	got := Pi(prec)

	// Only the leading digits are checked: got is rounded to float64 and
	// compared with math.Pi to within 1e-9.
	gotF, _ := got.Float64()
	if math.Abs(gotF-math.Pi) > 1e-9 {
		t.Fatalf("Pi() = %v, want approximately %v", gotF, math.Pi)
	}
}
