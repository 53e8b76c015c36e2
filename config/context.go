// Package config holds the read-once configuration contract (spec §6):
// default radix, cache L1 size, max memory block, block I/O size, number of
// processors, and filename generator (the data-storage builder factory is
// storage.Builder, since config cannot import storage). All
// values are read at strategy-creation time; mutation afterwards is not
// observed by already-created strategies, matching the teacher's plain
// read-once config struct (gpu.Config, threshold.Params) rather than a
// generic options framework.
package config

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Defaults, overridable per Context.
const (
	DefaultRadix          = 10
	DefaultMaxMemoryBlock = 1 << 30 // 1 GiB: byte budget for in-RAM (six-step) transforms
	DefaultBlockIOSize    = 1 << 20 // 1 MiB disk I/O block, far above the naive 8 KiB default
	fallbackCacheL1       = 32 * 1024
)

// Context is the configuration object every component reads from at
// strategy-creation time (spec §6). Zero-value fields are resolved to a
// sensible default by Resolve.
type Context struct {
	Radix              uint32
	CacheL1Size        int64
	MaxMemoryBlock     int64
	BlockIOSize        int64
	NumberOfProcessors int
	FilenameGenerator  FilenameGenerator
}

// FilenameGenerator produces unique temp-file names for disk-backed storage.
type FilenameGenerator interface {
	// Next returns a filesystem path, unique for the lifetime of the process.
	Next() string
}

// Default returns a Context with CacheL1Size, MaxMemoryBlock, BlockIOSize,
// and NumberOfProcessors resolved to their defaults. FilenameGenerator is
// left nil; callers that need disk-backed storage set it explicitly (see
// storage.NewFilenameGenerator), since config cannot import storage without
// a cycle.
func Default() *Context {
	c := &Context{}
	c.resolve()
	return c
}

// Resolve fills in zero-valued fields with defaults, in place. Components
// call this once, at construction, and never observe later mutation — per
// spec §6's "All values are read at strategy-creation time."
func (c *Context) Resolve() *Context {
	c.resolve()
	return c
}

func (c *Context) resolve() {
	if c.Radix == 0 {
		c.Radix = DefaultRadix
	}
	if c.CacheL1Size == 0 {
		c.CacheL1Size = detectCacheL1()
	}
	if c.MaxMemoryBlock == 0 {
		c.MaxMemoryBlock = DefaultMaxMemoryBlock
	}
	if c.BlockIOSize == 0 {
		c.BlockIOSize = DefaultBlockIOSize
	}
	if c.NumberOfProcessors == 0 {
		c.NumberOfProcessors = runtime.GOMAXPROCS(0)
	}
}

// detectCacheL1 reads the L1 data cache size from the CPU via
// klauspost/cpuid/v2, the strategy selector's (component G) input for the
// Table-FNT/Six-step boundary.
func detectCacheL1() int64 {
	if sz := cpuid.CPU.Cache.L1D; sz > 0 {
		return int64(sz)
	}
	return fallbackCacheL1
}
