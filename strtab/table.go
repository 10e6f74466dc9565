package strtab

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/sys/unix"

	"github.com/wisplang/wisp/heap"
)

// Table is the interned-string hash table: an open-addressed map from
// string content to the unique heap.Ref holding that content, so equal
// strings reduce to identical Refs and Box equality on two pointer Boxes
// naming interned strings can be implemented as pointer identity.
//
// Grounded on hive/index/string_index.go's "name -> cell offset"
// open-addressed map, generalized here from "lowercased name" keys to
// "exact content" keys and from a native Go map to an explicit
// open-addressed table, to get manual FNV-style hashing and
// caller-controlled resize (a native map exposes neither).
type Table struct {
	heap    *heap.Heap
	spoiler uint64

	slots []slot
	size  int // live entries (excludes tombstones)
}

type slotState uint8

const (
	stateEmpty slotState = iota
	stateFull
	stateTombstone
)

type slot struct {
	state slotState
	hash  uint64
	ref   heap.Ref
}

const defaultTableCap = 16

// maxFillRatioNum/Den is the 0.75 fill-ratio threshold.
const (
	maxFillRatioNum = 3
	maxFillRatioDen = 4
)

// NewTable creates an empty string table bound to h, seeding its FNV
// mixer's per-thread spoiler from the OS random source (x/sys/unix on
// platforms that support getrandom(2)), falling back to crypto/rand.
// The spoiler exists to avoid algorithmic collision attacks, the same
// threat Go's own runtime map addresses with a random seed.
func NewTable(h *heap.Heap) *Table {
	return &Table{
		heap:    h,
		spoiler: randomSpoiler(),
		slots:   make([]slot, defaultTableCap),
	}
}

func randomSpoiler() uint64 {
	var b [8]byte
	if n, err := unix.Getrandom(b[:], 0); err == nil && n == len(b) {
		return binary.LittleEndian.Uint64(b[:])
	}
	if _, err := rand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint64(b[:])
	}
	// Last resort: a fixed, non-zero constant. Collision resistance is
	// degraded but the table remains correct.
	return 0x9e3779b97f4a7c15
}

// fnvOffset/fnvPrime are the standard FNV-1a 64-bit constants.
const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211
)

// hashString implements FNV-1a over s, mixed with the table's spoiler so
// two tables (e.g. two thread-contexts) hash the same content
// differently.
func hashString(spoiler uint64, s string) uint64 {
	h := uint64(fnvOffset) ^ spoiler
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}

// Size reports the number of live (non-tombstoned) entries.
func (t *Table) Size() int { return t.size }

// Intern returns the Ref of the unique interned String holding s,
// allocating and inserting a new one via ctx if s has not been seen
// before. Lookup never allocates; insertion does.
func (t *Table) Intern(ctx heap.AllocContext, s string) (heap.Ref, error) {
	if ref, ok := t.Lookup(s); ok {
		return ref, nil
	}
	ref, err := New(ctx, s)
	if err != nil {
		return heap.NilRef, err
	}
	if err := t.insert(ref, s); err != nil {
		return heap.NilRef, err
	}
	return ref, nil
}

// Lookup finds an already-interned string equal to s without allocating.
// A query matches a string when lengths and code points agree, so this
// reads each candidate's content back and compares.
func (t *Table) Lookup(s string) (heap.Ref, bool) {
	h := hashString(t.spoiler, s)
	mask := uint64(len(t.slots) - 1)
	i := h & mask
	firstTombstone := -1
	for probes := 0; probes < len(t.slots); probes++ {
		sl := &t.slots[i]
		switch sl.state {
		case stateEmpty:
			return heap.NilRef, false
		case stateTombstone:
			if firstTombstone < 0 {
				firstTombstone = int(i)
			}
		case stateFull:
			if sl.hash == h {
				if content, err := Read(t.heap, sl.ref); err == nil && content == s {
					return sl.ref, true
				}
			}
		}
		i = (i + 1) & mask
	}
	return heap.NilRef, false
}

// insert adds ref (whose content is s) into the table, resizing first if
// the fill ratio would exceed 0.75 on this insert.
func (t *Table) insert(ref heap.Ref, s string) error {
	if (t.size+1)*maxFillRatioDen > len(t.slots)*maxFillRatioNum {
		if err := t.grow(); err != nil {
			return err
		}
	}
	h := hashString(t.spoiler, s)
	t.insertHashed(ref, h)
	t.size++
	return nil
}

func (t *Table) insertHashed(ref heap.Ref, h uint64) {
	mask := uint64(len(t.slots) - 1)
	i := h & mask
	for {
		sl := &t.slots[i]
		if sl.state != stateFull {
			sl.state = stateFull
			sl.hash = h
			sl.ref = ref
			return
		}
		i = (i + 1) & mask
	}
}

// grow doubles the table's capacity and rehashes every live entry,
// dropping tombstones.
func (t *Table) grow() error {
	old := t.slots
	t.slots = make([]slot, len(old)*2)
	for _, sl := range old {
		if sl.state == stateFull {
			t.insertHashed(sl.ref, sl.hash)
		}
	}
	return nil
}

// Remove drops s from the table via tombstone, for callers implementing
// weak-reference string tables (used by a collector's string-table
// sweep after a major collection reclaims an otherwise-unreferenced
// interned string).
func (t *Table) Remove(s string) bool {
	h := hashString(t.spoiler, s)
	mask := uint64(len(t.slots) - 1)
	i := h & mask
	for probes := 0; probes < len(t.slots); probes++ {
		sl := &t.slots[i]
		switch sl.state {
		case stateEmpty:
			return false
		case stateFull:
			if sl.hash == h {
				if content, err := Read(t.heap, sl.ref); err == nil && content == s {
					sl.state = stateTombstone
					t.size--
					return true
				}
			}
		}
		i = (i + 1) & mask
	}
	return false
}
