//go:build linux

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// openDirect opens path for read/write, attempting O_DIRECT so the
// block-sized transfer buffer (sized from config.Context.BlockIOSize)
// bypasses the page cache per spec §4.B ("never the 8 KB default of a naive
// channel copy"). Falls back to a buffered file descriptor when the
// filesystem rejects O_DIRECT (common on tmpfs and some container
// overlays), since the spec only requires a configurable block size, not
// O_DIRECT specifically.
func openDirect(path string) (*os.File, bool, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_DIRECT, 0600)
	if err == nil {
		return os.NewFile(uintptr(fd), path), true, nil
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	return f, false, err
}
