// Package storage is the data storage abstraction (component B): a uniform
// view over a digit array that may live in RAM or on disk, producing
// read/write iterators and sliceable array views.
//
// No teacher precedent exists for on-disk storage (the teacher is pure
// in-memory ring-LWE arithmetic); this package is built directly from
// SPEC_FULL.md §4.B, but keeps the teacher's general shape of a small,
// mutex-guarded struct with explicit state (gpu.BatchNTT, gpu.GPUMatrix).
package storage

import (
	"fmt"
	"sync"

	"github.com/apfloat-go/apfloat/apferr"
)

// Mode selects how an iterator or array view may be used.
type Mode int

const (
	Read Mode = iota
	Write
	ReadWrite
)

// Iterator is a forward cursor over a digit stream slice.
type Iterator[T any] interface {
	// Get returns the digit at the current position.
	Get() T
	// Set writes the digit at the current position. Only valid for Write/ReadWrite iterators.
	Set(v T)
	// Next advances the cursor; returns false once the iterator has passed its end.
	Next() bool
	// Close releases any range lock the iterator holds.
	Close() error
}

// Storage is the DataStorage contract: size/resize, iterators, contiguous
// array views, and non-owning subsequence views.
type Storage[T any] interface {
	// Size returns the current digit count.
	Size() int64
	// SetSize resizes the storage; new tail bytes are zero, shrinking discards.
	SetSize(n int64) error
	// Iterator produces a forward iterator over [start, end).
	Iterator(mode Mode, start, end int64) (Iterator[T], error)
	// GetArray returns a contiguous view over [start, start+length). For
	// in-memory storage the view shares backing bytes with the parent (writes
	// through it are visible without SetArray); for disk storage it is a
	// detached copy and must be written back explicitly via SetArray.
	GetArray(mode Mode, start, length int64) ([]T, error)
	// SetArray writes values back to [start, start+len(values)). For
	// in-memory storage it copies values in (nothing changes when values is
	// the view GetArray returned); it is required for disk storage, whose
	// GetArray returns a detached copy.
	SetArray(start int64, values []T) error
	// Subsequence returns a non-owning view over [offset, offset+length) that
	// shares the parent's backing bytes; the parent must outlive the view.
	Subsequence(offset, length int64) (Storage[T], error)
	// Close releases the storage's resources (temp file, if any).
	Close() error
}

// rangeLock tracks active write ranges so that "exactly one write iterator
// may be alive over a given range at a time" (spec §3 DataStorage invariant)
// is enforced rather than merely assumed.
type rangeLock struct {
	mu     sync.Mutex
	active []span
}

type span struct{ start, end int64 }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

func (r *rangeLock) acquire(start, end int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := span{start, end}
	for _, a := range r.active {
		if a.overlaps(want) {
			return fmt.Errorf("%w: overlapping write range [%d,%d) vs active [%d,%d)",
				apferr.ErrInvariant, start, end, a.start, a.end)
		}
	}
	r.active = append(r.active, want)
	return nil
}

func (r *rangeLock) release(start, end int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := span{start, end}
	for i, a := range r.active {
		if a == want {
			r.active = append(r.active[:i], r.active[i+1:]...)
			return
		}
	}
}
