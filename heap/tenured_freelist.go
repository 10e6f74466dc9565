package heap

import "github.com/wisplang/wisp/internal/format"

// tenuredFreeList is a segregated free list for tail (byte-addressed)
// allocations in the tenured generation, the one generation whose objects
// are freed individually rather than reclaimed by discarding a whole
// slab. Grounded on hive/alloc/size_classes.go's linear-then-logarithmic
// size class boundaries, simplified from that file's full min-heap
// (hive/alloc/fastalloc.go) to plain per-class slices: tenured objects
// are function closures, interned strings, and promoted long-lived
// records — orders of magnitude fewer than a hive's cell count, so O(n)
// scans within a size class are not a bottleneck here.
type tenuredFreeList struct {
	boundaries []int // upper byte-size bound (including header) for each class
	classes    [][]Ref
}

// freeListClassBoundaries mirrors alloc.ConfigBalanced: linear small
// classes then a geometric tail.
func freeListClassBoundaries() []int {
	var b []int
	for size := 8; size < 512; size += 16 {
		b = append(b, size+15)
	}
	for size := 512; size < 16384; {
		next := int(float64(size) * 1.5)
		if next <= size {
			next = size + 1
		}
		b = append(b, next-1)
		size = next
	}
	return b
}

func newTenuredFreeList() *tenuredFreeList {
	b := freeListClassBoundaries()
	return &tenuredFreeList{
		boundaries: b,
		classes:    make([][]Ref, len(b)+1), // +1 for "large" catch-all class
	}
}

func (fl *tenuredFreeList) classFor(totalSize int) int {
	for i, b := range fl.boundaries {
		if totalSize <= b {
			return i
		}
	}
	return len(fl.boundaries)
}

// free adds ref's region back to the appropriate size class. The caller
// (AllocContext.Free) is responsible for ensuring ref actually names a
// tenured tail allocation.
func (fl *tenuredFreeList) free(h *Heap, ref Ref) error {
	slab, ok := h.SlabOf(ref)
	if !ok {
		return ErrBadRef
	}
	hdr, err := slab.TailHeader(ref)
	if err != nil {
		return err
	}
	total := format.HeaderSize + int(hdr.PayloadLen)
	cls := fl.classFor(total)
	fl.classes[cls] = append(fl.classes[cls], ref)
	return nil
}

// alloc attempts to satisfy a tail allocation from a free class with
// enough room, reusing the existing header's tag by overwriting it with
// the caller's. Returns ok=false when no free block fits, in which case
// the caller falls back to bump-allocating fresh tail space.
func (fl *tenuredFreeList) alloc(h *Heap, tag format.Tag, payloadLen int) (Ref, []byte, bool) {
	need := format.HeaderSize + format.Align8(payloadLen)
	cls := fl.classFor(need)
	for c := cls; c < len(fl.classes); c++ {
		bucket := fl.classes[c]
		if len(bucket) == 0 {
			continue
		}
		ref := bucket[len(bucket)-1]
		fl.classes[c] = bucket[:len(bucket)-1]

		slab, ok := h.SlabOf(ref)
		if !ok {
			continue
		}
		hdr, err := slab.TailHeader(ref)
		if err != nil {
			continue
		}
		if int(format.HeaderSize+hdr.PayloadLen) < need {
			continue
		}
		hdr.Tag = tag
		hdr.PayloadLen = uint32(format.Align8(payloadLen))
		off := int(ref.Card) * format.CardSize
		if err := format.WriteHeader(slab.bytes[off:], hdr); err != nil {
			continue
		}
		payload := slab.bytes[off+format.HeaderSize : off+format.HeaderSize+payloadLen]
		return ref, payload, true
	}
	return NilRef, nil, false
}
