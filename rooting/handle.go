package rooting

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/value"
)

// Handle is an immutable read-borrow of a root or heap field.
// It does not itself occupy a chain link: it borrows storage that is
// already rooted elsewhere (a StackRoot's slot, or a field inside a heap
// object reachable from some other root), so the collector finds it via
// that other root, not via the Handle.
type Handle struct {
	slot *value.Box
}

// NewHandle wraps an existing rooted slot for read-only access.
func NewHandle(slot *value.Box) Handle { return Handle{slot: slot} }

// Get reads the borrowed value.
func (h Handle) Get() value.Box { return *h.slot }

// MutableHandle is a write-borrow: writes go through the field-write
// helper (value.WriteField) when the target is a heap field, so the
// generational write barrier is never bypassed by a direct store (this module: "writes go through the field-write helper when the target is a
// heap field").
type MutableHandle struct {
	slot  *value.Box
	h     *heap.Heap
	owner heap.Ref // zero Ref (IsNil) for a non-heap (StackRoot) slot
}

// NewMutableHandle wraps a non-heap-resident slot (a StackRoot's storage)
// for read-write access with no write barrier, since Go's own GC already
// traces anything reachable from the chain's backing slice.
func NewMutableHandle(slot *value.Box) MutableHandle {
	return MutableHandle{slot: slot}
}

// NewHeapFieldHandle wraps a slot that lives inside owner's card, so every
// Set marks that card dirty via value.WriteField.
func NewHeapFieldHandle(h *heap.Heap, owner heap.Ref, slot *value.Box) MutableHandle {
	return MutableHandle{slot: slot, h: h, owner: owner}
}

// Get reads the borrowed value.
func (h MutableHandle) Get() value.Box { return *h.slot }

// Set writes v through the handle, marking the owning card dirty first if
// this handle wraps a heap field.
func (h MutableHandle) Set(v value.Box) {
	if !h.owner.IsNil() {
		value.WriteField(h.h, h.owner, h.slot, v)
		return
	}
	*h.slot = v
}

// ArrayHandle is a (pointer, length) borrow over a contiguous sequence of
// Box, used for variable-length trailers (delegate arrays, operand lists,
// packed-tree scratch buffers) .
type ArrayHandle struct {
	slice []value.Box
	h     *heap.Heap
	owner heap.Ref
}

// NewArrayHandle wraps a non-heap-resident Box slice for plain access.
func NewArrayHandle(s []value.Box) ArrayHandle {
	return ArrayHandle{slice: s}
}

// NewHeapArrayHandle wraps a Box slice that is itself a heap object's
// variable-length trailer, installing owner for write-through marking.
func NewHeapArrayHandle(h *heap.Heap, owner heap.Ref, s []value.Box) ArrayHandle {
	return ArrayHandle{slice: s, h: h, owner: owner}
}

// Len reports the handle's element count.
func (a ArrayHandle) Len() int { return len(a.slice) }

// Get reads element i.
func (a ArrayHandle) Get(i int) value.Box { return a.slice[i] }

// Set writes element i, marking the owning card dirty if heap-resident.
func (a ArrayHandle) Set(i int, v value.Box) {
	if !a.owner.IsNil() {
		value.WriteField(a.h, a.owner, &a.slice[i], v)
		return
	}
	a.slice[i] = v
}

// Root links a onto c as a single logical root spanning all of a's
// elements, returning a release function the caller must invoke (LIFO,
// same discipline as StackRoot.Release) before the handle goes out of
// scope.
func (c *Chain) Root(a ArrayHandle) func() {
	depth := c.pushRange(a.slice)
	return func() { c.unlinkTo(depth) }
}
