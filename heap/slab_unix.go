//go:build linux || darwin || freebsd

package heap

import (
	"golang.org/x/sys/unix"

	"github.com/wisplang/wisp/internal/format"
)

// newSlabBytes backs a slab's tail byte region with an anonymous,
// private mmap rather than a plain Go slice, so the OS demand-pages the
// region instead of the runtime committing it (and scanning it for Go
// pointers, which it does not contain) up front. Mirrors this module's
// platform split in hive/dirty/flush_unix.go, which reaches for
// golang.org/x/sys/unix for the OS-level primitive rather than cgo or a
// hand-rolled syscall wrapper.
func newSlabBytes(size int) ([]byte, error) {
	if size <= 0 {
		size = format.CardSize
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// freeSlabBytes releases an mmap-backed slab region.
func freeSlabBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
