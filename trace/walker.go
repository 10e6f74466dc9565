package trace

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/value"
)

// Walker performs an iterative, explicit-stack reachability walk over a
// Heap starting from a root set. Grounded on hive/walker/core.go's
// WalkerCore: no recursion (so walk depth is bounded by heap size, not Go
// stack size), and visited tracking so a cyclic object graph (delegate
// loops, mutually recursive closures) terminates.
//
// WalkerCore tracks visited cells with a bitmap keyed by byte offset,
// since hive cell offsets are dense integers into one file. Wisp's Ref is
// a (generation, slab, card) triple with no single dense integer space
// spanning generations, so the visited set here is a Go map keyed by Ref
// directly — the idiomatic Go equivalent of the same O(1)-amortized
// membership test, without inventing a synthetic linear offset scheme the
// allocator doesn't otherwise need.
type Walker struct {
	heap    *heap.Heap
	visited map[heap.Ref]bool
	stack   []heap.Ref
}

// NewWalker creates a Walker bound to h, with stack capacity pre-sized the
// way WalkerCore pre-sizes its stack for typical traversal depth.
func NewWalker(h *heap.Heap) *Walker {
	return &Walker{
		heap:    h,
		visited: make(map[heap.Ref]bool, 256),
		stack:   make([]heap.Ref, 0, 256),
	}
}

// Reset clears the visited set and stack so the Walker can be reused for a
// subsequent collection pass, mirroring WalkerCore.Reset.
func (w *Walker) Reset() {
	clear(w.visited)
	w.stack = w.stack[:0]
}

// Walk visits every object reachable from roots exactly once, in DFS
// order, calling visit on each. Objects named by a root Box that fails to
// resolve (freed, or not a pointer) are silently skipped, matching
// resolveAndParseCellFast's bounds-checked behavior: a malformed or stale
// reference never panics the walk.
func (w *Walker) Walk(roots []value.Box, visit func(heap.HeapObject)) {
	ScanRoots(roots, func(b value.Box) {
		ref, ok := value.Pointer(b)
		if !ok {
			return
		}
		w.push(ref)
	})
	w.drain(visit)
}

// WalkFrom is Walk for a caller that already has a Ref (e.g. resuming a
// partial walk, or walking from a single known root such as the global
// scope).
func (w *Walker) WalkFrom(ref heap.Ref, visit func(heap.HeapObject)) {
	w.push(ref)
	w.drain(visit)
}

func (w *Walker) push(ref heap.Ref) {
	if ref.IsNil() || w.visited[ref] {
		return
	}
	w.visited[ref] = true
	w.stack = append(w.stack, ref)
}

func (w *Walker) drain(visit func(heap.HeapObject)) {
	for len(w.stack) > 0 {
		ref := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		obj, ok := w.heap.Resolve(ref)
		if !ok {
			continue
		}
		visit(obj)
		Scan(obj, func(field value.Box) {
			if child, ok := value.Pointer(field); ok {
				w.push(child)
			}
		})
	}
}
