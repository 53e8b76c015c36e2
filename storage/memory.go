package storage

import (
	"fmt"

	"github.com/apfloat-go/apfloat/apferr"
)

// Memory is an in-memory DataStorage backed by a contiguous buffer.
// Size()/SetSize() are O(1); GetArray returns true random-access slices.
type Memory[T any] struct {
	buf   []T
	locks rangeLock
}

// NewMemory creates an in-memory storage of the given initial size, zeroed.
func NewMemory[T any](size int64) *Memory[T] {
	return &Memory[T]{buf: make([]T, size)}
}

// NewMemoryFrom wraps an existing slice without copying; the storage takes
// logical ownership (callers should not mutate buf directly afterwards).
func NewMemoryFrom[T any](buf []T) *Memory[T] {
	return &Memory[T]{buf: buf}
}

func (m *Memory[T]) Size() int64 { return int64(len(m.buf)) }

func (m *Memory[T]) SetSize(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative size %d", apferr.ErrInvariant, n)
	}
	switch {
	case n == int64(len(m.buf)):
		return nil
	case n < int64(len(m.buf)):
		m.buf = m.buf[:n]
	default:
		grown := make([]T, n)
		copy(grown, m.buf)
		m.buf = grown
	}
	return nil
}

func (m *Memory[T]) checkRange(start, end int64) error {
	if start < 0 || end < start || end > int64(len(m.buf)) {
		return fmt.Errorf("%w: range [%d,%d) out of bounds for size %d", apferr.ErrInvariant, start, end, len(m.buf))
	}
	return nil
}

func (m *Memory[T]) Iterator(mode Mode, start, end int64) (Iterator[T], error) {
	if err := m.checkRange(start, end); err != nil {
		return nil, err
	}
	if mode != Read {
		if err := m.locks.acquire(start, end); err != nil {
			return nil, err
		}
	}
	return &memIterator[T]{m: m, mode: mode, pos: start - 1, start: start, end: end}, nil
}

func (m *Memory[T]) GetArray(mode Mode, start, length int64) ([]T, error) {
	end := start + length
	if err := m.checkRange(start, end); err != nil {
		return nil, err
	}
	return m.buf[start:end:end], nil
}

func (m *Memory[T]) SetArray(start int64, values []T) error {
	end := start + int64(len(values))
	if err := m.checkRange(start, end); err != nil {
		return err
	}
	copy(m.buf[start:end], values)
	return nil
}

func (m *Memory[T]) Subsequence(offset, length int64) (Storage[T], error) {
	end := offset + length
	if err := m.checkRange(offset, end); err != nil {
		return nil, err
	}
	return &Memory[T]{buf: m.buf[offset:end:end]}, nil
}

func (m *Memory[T]) Close() error { return nil }

type memIterator[T any] struct {
	m          *Memory[T]
	mode       Mode
	pos        int64
	start, end int64
	closed     bool
}

func (it *memIterator[T]) Get() T {
	return it.m.buf[it.pos]
}

func (it *memIterator[T]) Set(v T) {
	it.m.buf[it.pos] = v
}

func (it *memIterator[T]) Next() bool {
	it.pos++
	return it.pos < it.end
}

func (it *memIterator[T]) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.mode != Read {
		it.m.locks.release(it.start, it.end)
	}
	return nil
}
