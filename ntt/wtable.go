package ntt

import (
	"math/bits"
)

// wTable holds n twiddle factors in natural order: values[x] = omega^x for
// x in [0, n). Only the first half of the table is ever read by the
// butterfly loops in table.go (the index j*step never reaches n/2) — natural
// order is what that linear access pattern requires.
type wTable struct {
	values []uint64
}

type wTableKey struct {
	n            int64
	modulusIndex int
	inverse      bool
}

// getWTable returns the cached root table for (n, modulusIndex, direction),
// computing it on first use. Spec §3: "safe to cache externally because
// they depend only on (n, prime_index, direction)" — prime_index within one
// modulus set, which is why the cache lives on the Moduli rather than at
// package level (two Moduli built from different triples must not share
// tables).
func (m *Moduli) getWTable(n int64, modulusIndex int, inverse bool) *wTable {
	key := wTableKey{n: n, modulusIndex: modulusIndex, inverse: inverse}
	if v, ok := m.tables.Load(key); ok {
		return v.(*wTable)
	}
	t := m.buildWTable(n, modulusIndex, inverse)
	actual, _ := m.tables.LoadOrStore(key, t)
	return actual.(*wTable)
}

func (m *Moduli) buildWTable(n int64, modulusIndex int, inverse bool) *wTable {
	kernel := m.kernels[modulusIndex]
	omega := kernel.NthRoot(m.roots[modulusIndex], uint64(n), inverse)

	values := make([]uint64, n)
	values[0] = 1
	for i := int64(1); i < n; i++ {
		values[i] = kernel.Pow(omega, uint64(i))
	}
	return &wTable{values: values}
}

func bitReverse(x int64, bitsWide int) int64 {
	return int64(bits.Reverse64(uint64(x)) >> (64 - bitsWide))
}

func bitReversePermute(data []uint64) {
	n := int64(len(data))
	log2n := log2(n)
	for i := int64(0); i < n; i++ {
		j := bitReverse(i, log2n)
		if i < j {
			data[i], data[j] = data[j], data[i]
		}
	}
}
