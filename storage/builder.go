package storage

import "github.com/apfloat-go/apfloat/config"

// Builder creates DataStorages of a requested element count — the "builder
// factory" half of the configuration contract (spec §6). It lives here
// rather than on config.Context because the factory's return type is this
// package's Storage (config cannot import storage without a cycle);
// consumers such as the convolver accept a Builder at construction time,
// which preserves the contract's "read at strategy-creation time" property.
type Builder interface {
	Create(size int64) (Storage[uint64], error)
}

// MemoryBuilder builds in-RAM storages, the default for working sets that
// the strategy selector deemed small enough to transform in memory anyway.
type MemoryBuilder struct{}

func (MemoryBuilder) Create(size int64) (Storage[uint64], error) {
	return NewMemory[uint64](size), nil
}

// DiskBuilder builds temp-file-backed storages using the context's filename
// generator and block I/O size.
type DiskBuilder struct {
	Ctx *config.Context
}

func (b DiskBuilder) Create(size int64) (Storage[uint64], error) {
	return NewDisk(b.Ctx, size)
}
