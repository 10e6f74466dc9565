package value

import "github.com/wisplang/wisp/heap"

// WriteField stores v into a pointer-typed field belonging to owner and
// marks owner's card dirty in h, so a subsequent minor collection knows to
// rescan it for inter-generational references. Grounded on
// hive/dirty/dirty.go's Tracker.Add dirty-range tracker, generalized
// from byte ranges to a card-granularity write barrier. Every mutation
// of a pointer-bearing field goes through this function rather than a
// bare slice assignment, so the barrier can never be forgotten at a
// call site.
//
// field is the destination slot (typically an element of a Go slice backing
// an object's delegate array or property values); WriteField does not
// resolve it itself since the caller already holds the slot by reference.
func WriteField(h *heap.Heap, owner heap.Ref, field *Box, v Box) {
	*field = v
	if slab, ok := h.SlabForRef(owner); ok {
		slab.MarkCard(owner.Card)
	}
}
