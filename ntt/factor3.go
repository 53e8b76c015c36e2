package ntt

import (
	"fmt"

	"github.com/apfloat-go/apfloat/apferr"
	"github.com/apfloat-go/apfloat/modarith"
)

// Factor3 extends a power-of-two NTT strategy (Table, SixStep, or
// TwoPass-via-an-in-memory-adapter) to lengths L = 3*2^k (component F).
// It treats the length-L array as a 3 x M matrix (M = 2^k, the spec's
// "three contiguous sub-storages of length 2^k" read as three matrix rows),
// reusing the same transpose/twiddle/sub-transform scaffolding SixStep
// verifies works for any two-factor Cooley-Tukey decomposition: a 3-point
// DFT stands in for Table at the length-3 dimension, and the inner
// strategy supplies the length-M dimension.
type Factor3 struct {
	moduli *Moduli
	inner  Strategy
}

// NewFactor3 wraps inner (a power-of-two strategy over the same moduli) to
// handle 3*2^k lengths.
func NewFactor3(moduli *Moduli, inner Strategy) *Factor3 {
	return &Factor3{moduli: moduli, inner: inner}
}

func (f *Factor3) validate(n int64) (m int64, err error) {
	if n%3 != 0 {
		return 0, fmt.Errorf("%w: length %d has no factor of three", apferr.ErrInvariant, n)
	}
	m = n / 3
	if m <= 0 || m&(m-1) != 0 {
		return 0, fmt.Errorf("%w: length %d is not 3*2^k", apferr.ErrInvariant, n)
	}
	return m, nil
}

func (f *Factor3) Transform(data []uint64, modulusIndex int) error {
	n := int64(len(data))
	m, err := f.validate(n)
	if err != nil {
		return err
	}
	kernel := f.moduli.Kernel(modulusIndex)
	w3, err := f.cubeRoot(modulusIndex, false)
	if err != nil {
		return err
	}

	// (1) transpose 3 x M -> M x 3
	mat := transpose(data, 3, m)

	// (2) 3-point DFT across each of the M rows (length 3).
	for i := int64(0); i < m; i++ {
		row := mat[i*3 : i*3+3]
		dft3(kernel, w3, row)
	}

	// (3) twiddle multiply by w^(ij), w a primitive n-th root, i in [0,m)
	// rows, j in [0,3) columns.
	omega := kernel.NthRoot(f.moduli.roots[modulusIndex], uint64(n), false)
	for i := int64(0); i < m; i++ {
		rowBase := kernel.Pow(omega, uint64(i))
		acc := uint64(1)
		for j := int64(0); j < 3; j++ {
			mat[i*3+j] = kernel.Multiply(mat[i*3+j], acc)
			acc = kernel.Multiply(acc, rowBase)
		}
	}

	// (4) transpose back to 3 x M
	mat = transpose(mat, m, 3)

	// (5) transform each of the 3 rows (length M) with the inner strategy.
	for r := int64(0); r < 3; r++ {
		row := mat[r*m : r*m+m]
		if err := f.inner.Transform(row, modulusIndex); err != nil {
			return err
		}
	}

	copy(data, mat)
	return nil
}

func (f *Factor3) InverseTransform(data []uint64, modulusIndex int, totalTransformLength int64) error {
	n := int64(len(data))
	m, err := f.validate(n)
	if err != nil {
		return err
	}
	kernel := f.moduli.Kernel(modulusIndex)
	w3Inv, err := f.cubeRoot(modulusIndex, true)
	if err != nil {
		return err
	}

	// undo (5): inverse-transform each of the 3 rows (length M) in place.
	mat := append([]uint64(nil), data...)
	for r := int64(0); r < 3; r++ {
		row := mat[r*m : r*m+m]
		if err := f.inner.InverseTransform(row, modulusIndex, m); err != nil {
			return err
		}
	}

	// undo (4): 3 x M -> M x 3
	mat = transpose(mat, 3, m)

	// undo (3): multiply by w^-(ij).
	omegaInv := kernel.NthRoot(f.moduli.roots[modulusIndex], uint64(n), true)
	for i := int64(0); i < m; i++ {
		rowBase := kernel.Pow(omegaInv, uint64(i))
		acc := uint64(1)
		for j := int64(0); j < 3; j++ {
			mat[i*3+j] = kernel.Multiply(mat[i*3+j], acc)
			acc = kernel.Multiply(acc, rowBase)
		}
	}

	// undo (2): inverse 3-point DFT across each of the M rows.
	for i := int64(0); i < m; i++ {
		row := mat[i*3 : i*3+3]
		idft3(kernel, w3Inv, row)
	}

	// undo (1): M x 3 -> 3 x M
	mat = transpose(mat, m, 3)
	copy(data, mat)

	if totalTransformLength != n {
		totalInv, _ := kernel.Inverse(uint64(totalTransformLength))
		correction := kernel.Multiply(uint64(n)%kernel.Modulus(), totalInv)
		for i := range data {
			data[i] = kernel.Multiply(data[i], correction)
		}
	}
	return nil
}

// cubeRoot returns a primitive cube root of unity mod the active prime, or
// its inverse. Requires 3 | (p-1); NewModuli's caller is responsible for
// picking a modulus triple that satisfies this when factor-3 lengths are in
// use (modarith.ProductionTriple and smallTriple do).
func (f *Factor3) cubeRoot(modulusIndex int, inverse bool) (uint64, error) {
	p := f.moduli.primes[modulusIndex]
	if (p-1)%3 != 0 {
		return 0, fmt.Errorf("%w: modulus %d has no primitive cube root of unity", apferr.ErrInvariant, p)
	}
	kernel := f.moduli.Kernel(modulusIndex)
	return kernel.NthRoot(f.moduli.roots[modulusIndex], 3, inverse), nil
}

// dft3 computes the in-place 3-point NTT y_k = sum_j x_j * w3^(jk), using
// w3^2+w3+1=0 to fold the three naive multiplications by w3^0, w3^1, w3^2
// down to one modular multiply by w3 itself:
//
//	y0 = x0 + x1 + x2
//	y1 = (x0 - x2) + w3*(x1 - x2)
//	y2 = (x0 - x1) - w3*(x1 - x2)
func dft3(kernel *modarith.Kernel[uint64], w3 uint64, x []uint64) {
	x0, x1, x2 := x[0], x[1], x[2]
	d1 := kernel.Subtract(x1, x2)
	wd1 := kernel.Multiply(w3, d1)
	x[0] = kernel.Add(kernel.Add(x0, x1), x2)
	x[1] = kernel.Add(kernel.Subtract(x0, x2), wd1)
	x[2] = kernel.Subtract(kernel.Subtract(x0, x1), wd1)
}

// idft3 is dft3's exact inverse: run with w3^-1 in place of w3, then apply
// the same three-point structure in reverse, scaled by 3^-1. Since the
// forward dft3 is already its own structural inverse up to the constant
// factor 3 (a DFT matrix satisfies DFT^-1 = (1/n) * conjugate(DFT), and over
// this field "conjugate" is exactly substituting w3 -> w3^-1), idft3 reuses
// dft3 with the inverse root and divides by 3.
func idft3(kernel *modarith.Kernel[uint64], w3Inv uint64, x []uint64) {
	dft3(kernel, w3Inv, x)
	inv3, _ := kernel.Inverse(3)
	for i := range x {
		x[i] = kernel.Multiply(x[i], inv3)
	}
}
