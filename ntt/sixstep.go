package ntt

import (
	"math"
	"sync"
)

// SixStep is the out-of-cache, in-RAM NTT strategy (component D): reshape
// the length-n array into an n1 x n2 matrix (both factors near sqrt(n)),
// transform columns then rows with a Table sub-strategy, with a twiddle
// multiply and two transposes folded in between.
//
// The row-transform and element-wise-multiply loops run one goroutine per
// row/column and join on a sync.WaitGroup, the same parallel-fan-out shape
// _examples/luxfi-ringtail/gpu/gpu_matrix.go's GPUMatrix.ToNTT/FromNTT use
// for their per-polynomial Forward/Inverse calls.
type SixStep struct {
	moduli *Moduli
	table  *Table
	runner func(n int, work func(i int))
}

// NewSixStep builds a SixStep strategy over the given moduli.
func NewSixStep(moduli *Moduli) *SixStep {
	return &SixStep{
		moduli: moduli,
		table:  NewTable(moduli),
		runner: parallelFor,
	}
}

func parallelFor(n int, work func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			work(idx)
		}(i)
	}
	wg.Wait()
}

// factorNearSqrt splits n = n1*n2 with both factors as close to sqrt(n) as
// possible, scanning down from the integer square root for the largest
// divisor (n is always a power of two here, so n1 is itself a power of two).
func factorNearSqrt(n int64) (n1, n2 int64) {
	root := int64(math.Sqrt(float64(n)))
	for n1 = root; n1 >= 1; n1-- {
		if n%n1 == 0 {
			return n1, n / n1
		}
	}
	return 1, n
}

// transpose reinterprets data as a rows x cols row-major matrix and returns
// its cols x rows transpose, also row-major.
func transpose(data []uint64, rows, cols int64) []uint64 {
	out := make([]uint64, rows*cols)
	for r := int64(0); r < rows; r++ {
		for c := int64(0); c < cols; c++ {
			out[c*rows+r] = data[r*cols+c]
		}
	}
	return out
}

// Transform implements spec §4.D's six steps. data is read as an n1 x n2
// row-major matrix (n1 rows of length n2).
func (s *SixStep) Transform(data []uint64, modulusIndex int) error {
	n := int64(len(data))
	if err := s.moduli.validateLength(n, modulusIndex); err != nil {
		return err
	}
	n1, n2 := factorNearSqrt(n)
	kernel := s.moduli.Kernel(modulusIndex)

	// (1) transpose: n1 x n2 -> n2 x n1
	mat := transpose(data, n1, n2)

	// (2) transform each of the n2 rows (each of length n1) — these are the
	// original matrix's n2 columns, now contiguous after the transpose.
	var errMu sync.Mutex
	var transformErr error
	recordErr := func(err error) {
		errMu.Lock()
		if transformErr == nil {
			transformErr = err
		}
		errMu.Unlock()
	}
	s.runner(int(n2), func(i int) {
		row := mat[int64(i)*n1 : int64(i)*n1+n1]
		if err := s.table.Transform(row, modulusIndex); err != nil {
			recordErr(err)
		}
	})
	if transformErr != nil {
		return transformErr
	}

	// (3) element-wise multiply by w^(ij), w a primitive n-th root of unity;
	// i indexes the n2 rows, j the n1 columns of this matrix.
	omega := kernel.NthRoot(s.moduli.roots[modulusIndex], uint64(n), false)
	s.runner(int(n2), func(i int) {
		rowBase := kernel.Pow(omega, uint64(i))
		acc := uint64(1)
		for j := int64(0); j < n1; j++ {
			mat[int64(i)*n1+j] = kernel.Multiply(mat[int64(i)*n1+j], acc)
			acc = kernel.Multiply(acc, rowBase)
		}
	})

	// (4) transpose back: n2 x n1 -> n1 x n2
	mat = transpose(mat, n2, n1)

	// (5) transform each of the n1 rows (each of length n2).
	s.runner(int(n1), func(i int) {
		row := mat[int64(i)*n2 : int64(i)*n2+n2]
		if err := s.table.Transform(row, modulusIndex); err != nil {
			recordErr(err)
		}
	})
	if transformErr != nil {
		return transformErr
	}

	// (6) transpose once more: n1 x n2 -> n2 x n1.
	mat = transpose(mat, n1, n2)
	copy(data, mat)
	return nil
}

// InverseTransform reverses Transform's six steps in reverse order, each
// with its inverse sub-operation. Each of the two Table sub-passes divides
// through by its own row length (n2 then n1), whose product is exactly n's
// inverse; when totalTransformLength differs from n (this strategy invoked
// on one sub-array of a factor-3-wrapped transform, spec §4.F), a final
// correction pass rescales from n^-1 to totalTransformLength^-1.
func (s *SixStep) InverseTransform(data []uint64, modulusIndex int, totalTransformLength int64) error {
	n := int64(len(data))
	if err := s.moduli.validateLength(n, modulusIndex); err != nil {
		return err
	}
	n1, n2 := factorNearSqrt(n)
	kernel := s.moduli.Kernel(modulusIndex)

	// undo (6): data (n2 x n1 shape) -> n1 x n2
	mat := transpose(data, n2, n1)

	// undo (5): inverse-transform each of the n1 rows (length n2).
	var errMu sync.Mutex
	var transformErr error
	recordErr := func(err error) {
		errMu.Lock()
		if transformErr == nil {
			transformErr = err
		}
		errMu.Unlock()
	}
	s.runner(int(n1), func(i int) {
		row := mat[int64(i)*n2 : int64(i)*n2+n2]
		if err := s.table.InverseTransform(row, modulusIndex, n2); err != nil {
			recordErr(err)
		}
	})
	if transformErr != nil {
		return transformErr
	}

	// undo (4): n1 x n2 -> n2 x n1
	mat = transpose(mat, n1, n2)

	// undo (3): multiply by w^-(ij).
	omegaInv := kernel.NthRoot(s.moduli.roots[modulusIndex], uint64(n), true)
	s.runner(int(n2), func(i int) {
		rowBase := kernel.Pow(omegaInv, uint64(i))
		acc := uint64(1)
		for j := int64(0); j < n1; j++ {
			mat[int64(i)*n1+j] = kernel.Multiply(mat[int64(i)*n1+j], acc)
			acc = kernel.Multiply(acc, rowBase)
		}
	})

	// undo (2): inverse-transform each of the n2 rows (length n1).
	s.runner(int(n2), func(i int) {
		row := mat[int64(i)*n1 : int64(i)*n1+n1]
		if err := s.table.InverseTransform(row, modulusIndex, n1); err != nil {
			recordErr(err)
		}
	})
	if transformErr != nil {
		return transformErr
	}

	// undo (1): n2 x n1 -> n1 x n2
	mat = transpose(mat, n2, n1)
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
