package value

import (
	"errors"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
)

// ErrNotObject is returned when an ObjectBox is constructed from a pointer
// that does not name a registered base-object heap type.
var ErrNotObject = errors.New("value: pointer does not name an object")

// isObjectTag is populated by the object package's init (via
// RegisterObjectTags) so this package can validate ObjectBox construction
// without importing object, which would create an import cycle (object
// depends on value for Box, not the other way around).
var isObjectTag = map[format.Tag]bool{}

// RegisterObjectTags declares which format.Tag values identify heap
// allocations that satisfy the base-object interface. Called once from object's package init.
func RegisterObjectTags(tags ...format.Tag) {
	for _, t := range tags {
		isObjectTag[t] = true
	}
}

// ObjectBox is the refinement of Box described in this module: a pointer Box
// whose payload is constrained to a registered object type. It carries no
// behavior of its own; it exists so call sites that require "any object"
// (as opposed to "any heap pointer") get a type-checked guarantee at
// construction time rather than a runtime type switch at every use.
type ObjectBox struct {
	box Box
}

// NewObjectBox validates that tag, which the caller supplies as ref's
// format tag, was registered via RegisterObjectTags before wrapping ref.
// Nothing is read from the heap here, so the tag is trusted as given.
func NewObjectBox(ref heap.Ref, tag format.Tag) (ObjectBox, error) {
	if !isObjectTag[tag] {
		return ObjectBox{}, ErrNotObject
	}
	return ObjectBox{box: FromPointer(ref)}, nil
}

// Box returns the underlying Box.
func (o ObjectBox) Box() Box { return o.box }

// Ref returns the underlying heap.Ref. Always ok since construction
// already validated the pointer.
func (o ObjectBox) Ref() heap.Ref {
	ref, _ := Pointer(o.box)
	return ref
}

// AsObjectBox downgrades a plain pointer Box to an ObjectBox, validating
// tag against the registry exactly as NewObjectBox does.
func AsObjectBox(b Box, tag format.Tag) (ObjectBox, bool) {
	ref, ok := Pointer(b)
	if !ok || !isObjectTag[tag] {
		return ObjectBox{}, false
	}
	return ObjectBox{box: FromPointer(ref)}, true
}
