// Package parallelrunner implements the concurrency model of spec §5: a
// parallel runner abstraction that fans a unit of work out across up to
// numberOfProcessors() worker goroutines, and the one-shot rendezvous
// message passer the carry-CRT finalizer's parallel mode uses.
//
// Grounded on _examples/luxfi-ringtail/gpu/gpu_ntt.go's BatchNTT.Forward/
// Inverse and gpu_matrix.go's GPUMatrix.MulVec/MulMat: a goroutine per
// independent slice of work, joined with a sync.WaitGroup. This package
// generalizes that repeated pattern into the single split(N, worker)
// primitive spec §9 calls for.
package parallelrunner

import (
	"runtime"
	"sync"
)

// Worker processes the disjoint slice [offset, offset+length).
type Worker func(offset, length int64)

// Runner fans work out across goroutines. A one-worker Runner (from
// NewSingleThreaded) runs sequentially; a nil *Runner is not supported.
// This matches spec §5's "the runner ... may be
// single-threaded; components that accept a runner must degrade gracefully
// when it is absent."
type Runner struct {
	numWorkers int
}

// New returns a Runner using numWorkers goroutines. numWorkers <= 0 resolves
// to runtime.GOMAXPROCS(0), mirroring the teacher's numberOfProcessors().
func New(numWorkers int) *Runner {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Runner{numWorkers: numWorkers}
}

// NewSingleThreaded returns a Runner that always executes sequentially,
// used to exercise "parallel = serial" (testable property 4).
func NewSingleThreaded() *Runner {
	return &Runner{numWorkers: 1}
}

// Split partitions [0, n) into up to numWorkers contiguous slices and runs
// worker on each slice concurrently, blocking until every slice completes —
// the "split(N, worker)" primitive spec §9 asks for.
func (r *Runner) Split(n int64, worker Worker) {
	if n <= 0 {
		return
	}
	workers := r.numWorkers
	if workers <= 1 || n < int64(workers) {
		worker(0, n)
		return
	}

	chunk := (n + int64(workers) - 1) / int64(workers)
	var wg sync.WaitGroup
	for offset := int64(0); offset < n; offset += chunk {
		length := chunk
		if offset+length > n {
			length = n - offset
		}
		wg.Add(1)
		go func(offset, length int64) {
			defer wg.Done()
			worker(offset, length)
		}(offset, length)
	}
	wg.Wait()
}

// NumWorkers reports the configured goroutine fan-out.
func (r *Runner) NumWorkers() int { return r.numWorkers }
