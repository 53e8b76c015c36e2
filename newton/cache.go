package newton

import (
	"math/big"
	"sync"
)

// radixEntry holds the cached pi/log(radix) value for one radix, along with
// the precision it was last computed to and a per-entry mutex so
// recomputing one radix's cache never blocks another radix's lookup —
// spec §5's "synchronize on a per-radix key object... other radixes
// proceed unblocked."
type radixEntry struct {
	mu    sync.Mutex
	value *big.Float
	prec  uint
}

// Cache memoizes per-radix pi and log(radix) values computed on demand. The
// teacher has no analogous cache (it has no derived-constant memoization at
// all); the per-key-mutex shape is lifted from the general "small struct
// guarding derived state" pattern in gpu.GPUMatrix, and the map-of-mutexes
// realization of "synchronize on a per-radix key object" is what
// SPEC_FULL.md §9 calls for in place of the teacher's object-identity
// locking (which has no Go equivalent).
type Cache struct {
	pi  sync.Map // map[int]*radixEntry
	log sync.Map // map[int]*radixEntry
}

// NewCache returns an empty per-radix cache.
func NewCache() *Cache { return &Cache{} }

func (c *Cache) entry(m *sync.Map, radix int) *radixEntry {
	if v, ok := m.Load(radix); ok {
		return v.(*radixEntry)
	}
	e := &radixEntry{}
	actual, _ := m.LoadOrStore(radix, e)
	return actual.(*radixEntry)
}

// Pi returns pi to at least targetPrec bits, computing (or extending) the
// cached value for radix if necessary.
func (c *Cache) Pi(radix int, targetPrec uint, compute func(prec uint) *big.Float) *big.Float {
	e := c.entry(&c.pi, radix)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.value == nil || e.prec < targetPrec {
		e.value = compute(targetPrec)
		e.prec = targetPrec
	}
	return new(big.Float).Copy(e.value).SetPrec(targetPrec)
}

// LogRadix returns log(radix) to at least targetPrec bits, computing (or
// extending) the cached value if necessary.
func (c *Cache) LogRadix(radix int, targetPrec uint, compute func(prec uint) *big.Float) *big.Float {
	e := c.entry(&c.log, radix)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.value == nil || e.prec < targetPrec {
		e.value = compute(targetPrec)
		e.prec = targetPrec
	}
	return new(big.Float).Copy(e.value).SetPrec(targetPrec)
}
