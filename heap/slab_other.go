//go:build !linux && !darwin && !freebsd

package heap

import "github.com/wisplang/wisp/internal/format"

// newSlabBytes falls back to a plain Go-heap-backed slice on platforms
// without the unix mmap family (e.g. Windows), mirroring this module's
// hive/dirty/flush_windows.go fallback shape: same contract, OS-specific
// implementation swapped out behind a build tag.
func newSlabBytes(size int) ([]byte, error) {
	if size <= 0 {
		size = format.CardSize
	}
	return make([]byte, size), nil
}

// freeSlabBytes is a no-op on this platform; the backing slice is left to
// the garbage collector.
func freeSlabBytes(b []byte) error {
	return nil
}
