package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/zeebo/blake3"
)

// blake3FilenameGenerator produces unique temp-file names by hashing a
// monotonic counter together with a caller-supplied salt, the same
// blake3.New()-digest idiom _examples/luxfi-ringtail/primitives/hash.go uses
// to derive PRNG keys and MACs — here repurposed for filename identity
// instead of key material.
type blake3FilenameGenerator struct {
	dir     string
	salt    []byte
	counter atomic.Uint64
}

// NewFilenameGenerator returns a config.FilenameGenerator rooted at dir
// (os.TempDir() if empty), seeded with a copy of the given salt bytes. Names
// are unique within one generator; generators given the same salt produce
// the same sequence of names.
func NewFilenameGenerator(dir string, salt []byte) *blake3FilenameGenerator {
	if dir == "" {
		dir = os.TempDir()
	}
	saltCopy := make([]byte, len(salt))
	copy(saltCopy, salt)
	return &blake3FilenameGenerator{dir: dir, salt: saltCopy}
}

// Next returns a unique path under the generator's directory.
func (g *blake3FilenameGenerator) Next() string {
	n := g.counter.Add(1)

	h := blake3.New()
	h.Write(g.salt)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	h.Write(buf[:])

	digest := h.Sum(nil)
	return filepath.Join(g.dir, fmt.Sprintf("apfloat-%x.tmp", digest[:12]))
}
