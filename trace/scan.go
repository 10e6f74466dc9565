package trace

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/value"
)

// Scan walks obj's pointer-typed fields read-only, calling visit on each.
// Leaf formats (format.Lookup(tag).IsLeaf) are skipped without even
// type-asserting obj, mirroring walkDataCell short-circuit
// for inline/non-cell value data.
func Scan(obj heap.HeapObject, visit func(value.Box)) {
	tag := obj.Header().Tag
	if format.IsLeaf(tag) {
		return
	}
	t, ok := obj.(Traceable)
	if !ok {
		return
	}
	t.Trace(func(b value.Box) value.Box {
		visit(b)
		return b
	})
}

// Update walks obj's pointer-typed fields, replacing each with the value
// replace returns. Used by a copying/compacting collector to fix up
// references after relocating the objects they point to.
func Update(obj heap.HeapObject, replace func(value.Box) value.Box) {
	tag := obj.Header().Tag
	if format.IsLeaf(tag) {
		return
	}
	t, ok := obj.(Traceable)
	if !ok {
		return
	}
	t.Trace(replace)
}

// ScanRoots walks a slice of root Boxes (stack roots, handles), calling
// visit on every pointer-kind entry. Non-pointer Boxes (integers, booleans,
// undefined) are skipped; it is not an error for a root slot to hold one.
func ScanRoots(roots []value.Box, visit func(value.Box)) {
	for _, b := range roots {
		if value.Classify(b) == value.KindPointer {
			visit(b)
		}
	}
}
