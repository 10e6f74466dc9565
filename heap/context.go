package heap

import (
	"fmt"

	"github.com/wisplang/wisp/internal/format"
)

// Heap owns the three nominal generations for one thread-context, each
// a separate slab list; the allocation context records which generation
// an allocation targets. A Heap is never shared across thread-contexts.
type Heap struct {
	hatchery  *SlabList
	localHeap *SlabList
	tenured   *SlabList
	freelist  *tenuredFreeList
}

// NewHeap creates a Heap with empty generation slab lists.
func NewHeap() *Heap {
	return &Heap{
		hatchery:  NewSlabList(GenHatchery, 0),
		localHeap: NewSlabList(GenLocalHeap, 0),
		tenured:   NewSlabList(GenTenured, 0),
		freelist:  newTenuredFreeList(),
	}
}

// ListFor returns the slab list for a generation.
func (h *Heap) ListFor(gen Generation) *SlabList {
	switch gen {
	case GenHatchery:
		return h.hatchery
	case GenLocalHeap:
		return h.localHeap
	case GenTenured:
		return h.tenured
	default:
		return nil
	}
}

// Context returns an AllocContext bound to gen.
func (h *Heap) Context(gen Generation) AllocContext {
	return AllocContext{heap: h, gen: gen}
}

// SlabOf resolves ref's owning slab.
func (h *Heap) SlabOf(ref Ref) (*Slab, bool) {
	list := h.ListFor(ref.Gen)
	if list == nil {
		return nil, false
	}
	return list.BySlabID(ref.Slab)
}

// Resolve returns the HeapObject a Ref names, for head allocations.
func (h *Heap) Resolve(ref Ref) (HeapObject, bool) {
	slab, ok := h.SlabOf(ref)
	if !ok {
		return nil, false
	}
	return slab.Head(ref)
}

// AllocContext names a generation within a Heap; every allocation in the
// system passes through one.
type AllocContext struct {
	heap *Heap
	gen  Generation
}

// Generation reports which generation this context targets.
func (c AllocContext) Generation() Generation { return c.gen }

// Heap returns the Heap this context allocates within, for callers (e.g.
// strtab's width-flag fixup after AllocTail) that need direct Slab access
// beyond the Alloc*/Free surface.
func (c AllocContext) Heap() *Heap { return c.heap }

// AllocHead allocates a traced (pointer-bearing) heap object. install is
// called with the freshly assigned Ref and must return the fully
// constructed HeapObject (typically by building a Base via NewBase and
// embedding it). On ErrNoSpace the slab list is grown once and the
// allocation retried; a second failure is returned to the caller, who may
// translate it into a GC trigger.
func (c AllocContext) AllocHead(tag format.Tag, approxPayloadLen int, install func(ref Ref) HeapObject) (Ref, error) {
	list := c.heap.ListFor(c.gen)
	if list == nil {
		return NilRef, fmt.Errorf("heap: %w: invalid generation", ErrBadRef)
	}
	slab, err := list.Current()
	if err != nil {
		return NilRef, err
	}
	ref, err := slab.AllocHead(tag, install)
	if err == ErrNoSpace {
		slab, err = list.Grow()
		if err != nil {
			return NilRef, err
		}
		ref, err = slab.AllocHead(tag, install)
	}
	if err != nil {
		return NilRef, err
	}
	return ref, nil
}

// AllocTail allocates a byte-addressed leaf payload (string content,
// packed-tree words, source file text). The tenured generation recycles
// freed tail allocations through a segregated free list
// (tenured_freelist.go); hatchery and local-heap are append-only.
func (c AllocContext) AllocTail(tag format.Tag, payloadLen int) (Ref, []byte, error) {
	if c.gen == GenTenured {
		if ref, payload, ok := c.heap.freelist.alloc(c.heap, tag, payloadLen); ok {
			return ref, payload, nil
		}
	}
	list := c.heap.ListFor(c.gen)
	if list == nil {
		return NilRef, nil, fmt.Errorf("heap: %w: invalid generation", ErrBadRef)
	}
	slab, err := list.Current()
	if err != nil {
		return NilRef, nil, err
	}
	ref, payload, err := slab.AllocTail(tag, payloadLen)
	if err == ErrNoSpace {
		slab, err = list.Grow()
		if err != nil {
			return NilRef, nil, err
		}
		ref, payload, err = slab.AllocTail(tag, payloadLen)
	}
	if err != nil {
		return NilRef, nil, err
	}
	return ref, payload, nil
}

// Free returns a tenured tail allocation to the size-class free list.
// Hatchery/local-heap allocations are never freed individually: their
// whole slab list is reset wholesale once nothing references it (a minor
// collection), matching this nursery model.
func (c AllocContext) Free(ref Ref) error {
	if c.gen != GenTenured {
		return nil
	}
	return c.heap.freelist.free(c.heap, ref)
}

// NewBase is the public constructor object.go's unexported newBase wraps;
// exported so other packages' heap types (object.Object, frame.Frame, ...)
// can build their embedded Base without heap needing to know their
// concrete types.
func NewBase(slab *Slab, ref Ref, tag format.Tag, payloadLen int) Base {
	return newBase(slab, ref, tag, payloadLen)
}

// SlabForRef is a convenience used by callers (e.g. the value package's
// write barrier) that only have a Heap and a Ref and need the owning Slab
// to mark a card dirty.
func (h *Heap) SlabForRef(ref Ref) (*Slab, bool) {
	return h.SlabOf(ref)
}
