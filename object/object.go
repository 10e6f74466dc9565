// Package object implements the base object layout and scope hierarchy:
// every object owns a delegate array (prototype chain, searched
// left-to-right) and a property dictionary; the four scope kinds
// (call/block/module/global) share this exact layout and differ only in
// their delegate composition and format tag.
//
// Grounded on pkg/ast/tree.go's Node (parent pointer + children slice +
// dirty bit), generalized here from "registry key with a parent and
// children" to "object with a delegate array and a property dictionary"
// — Node serving both "key" and "tree root" without a second type is the
// same shape as wisp's single Object type serving both "plain object"
// and every scope kind via format.Tag alone.
package object

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/trace"
	"github.com/wisplang/wisp/value"
)

func init() {
	value.RegisterObjectTags(
		format.TagPlainObject,
		format.TagCallScope,
		format.TagBlockScope,
		format.TagModuleScope,
		format.TagGlobalScope,
	)
}

// Object is the base layout shared by every plain object and scope kind
//. Which concrete "thing" it is, is entirely a function of its
// format.Header.Tag.
type Object struct {
	heap.Base
	delegates []value.Box // object pointer Boxes, lookup order
	dict      value.Box   // pointer to a propdict.Dict
}

var _ heap.HeapObject = (*Object)(nil)

// Trace implements trace.Traceable.
func (o *Object) Trace(v trace.Visitor) {
	for i := range o.delegates {
		o.delegates[i] = v(o.delegates[i])
	}
	o.dict = v(o.dict)
}

// new_ is the shared constructor for every Object-shaped format.
func new_(ctx heap.AllocContext, tag format.Tag, delegates []value.Box) (heap.Ref, error) {
	dictRef, err := propdict.New(ctx, 0)
	if err != nil {
		return heap.NilRef, err
	}
	dictBox := value.FromPointer(dictRef)

	delegatesCopy := make([]value.Box, len(delegates))
	copy(delegatesCopy, delegates)

	approxSize := 24 + len(delegatesCopy)*8
	ref, err := ctx.AllocHead(tag, approxSize, func(r heap.Ref) heap.HeapObject {
		slab, _ := ctx.Heap().SlabOf(r)
		return &Object{
			Base:      heap.NewBase(slab, r, tag, approxSize),
			delegates: delegatesCopy,
			dict:      dictBox,
		}
	})
	return ref, err
}

// NewPlainObject allocates a plain object with the given delegate chain.
func NewPlainObject(ctx heap.AllocContext, delegates []value.Box) (heap.Ref, error) {
	return new_(ctx, format.TagPlainObject, delegates)
}

// NewCallScope allocates a call scope delegating to parent (the lexically
// enclosing scope), 's "scope variants... differ only in their
// delegate composition."
func NewCallScope(ctx heap.AllocContext, parent value.Box) (heap.Ref, error) {
	return new_(ctx, format.TagCallScope, []value.Box{parent})
}

// NewBlockScope allocates a block scope delegating to parent.
func NewBlockScope(ctx heap.AllocContext, parent value.Box) (heap.Ref, error) {
	return new_(ctx, format.TagBlockScope, []value.Box{parent})
}

// NewModuleScope allocates a module scope delegating to parent (typically
// the global scope).
func NewModuleScope(ctx heap.AllocContext, parent value.Box) (heap.Ref, error) {
	return new_(ctx, format.TagModuleScope, []value.Box{parent})
}

// NewGlobalScope allocates the root global scope, which has no delegates.
func NewGlobalScope(ctx heap.AllocContext) (heap.Ref, error) {
	return new_(ctx, format.TagGlobalScope, nil)
}

func resolve(h *heap.Heap, ref heap.Ref) (*Object, bool) {
	obj, ok := h.Resolve(ref)
	if !ok {
		return nil, false
	}
	o, ok := obj.(*Object)
	return o, ok
}

// Delegates returns ref's delegate array, in lookup order (this module:
// "the first delegate (lowest index) wins").
func Delegates(h *heap.Heap, ref heap.Ref) []value.Box {
	o, ok := resolve(h, ref)
	if !ok {
		return nil
	}
	return o.delegates
}

// Dict returns the Box pointing at ref's property dictionary.
func Dict(h *heap.Heap, ref heap.Ref) value.Box {
	o, ok := resolve(h, ref)
	if !ok {
		return value.Undefined
	}
	return o.dict
}

// GetOwn probes ref's own property dictionary only (no delegate walk);
// the lookup package composes this with delegate traversal.
func GetOwn(h *heap.Heap, ref heap.Ref, key value.Box) (propdict.Descriptor, bool) {
	o, ok := resolve(h, ref)
	if !ok {
		return propdict.Descriptor{}, false
	}
	dictRef, ok := value.Pointer(o.dict)
	if !ok {
		return propdict.Descriptor{}, false
	}
	return propdict.Get(h, dictRef, key)
}

// DefineOwn defines (or redefines) a property directly on ref, handling
// the property dictionary's own possible reallocation by writing the new
// dict Box back into ref's dict field through the write-barrier helper
//.
func DefineOwn(ctx heap.AllocContext, ref heap.Ref, key value.Box, desc propdict.Descriptor) error {
	o, ok := resolve(ctx.Heap(), ref)
	if !ok {
		return heap.ErrBadRef
	}
	dictRef, ok := value.Pointer(o.dict)
	if !ok {
		return heap.ErrBadRef
	}
	newDictRef, err := propdict.Define(ctx, dictRef, key, desc)
	if err != nil {
		return err
	}
	if newDictRef != dictRef {
		value.WriteField(ctx.Heap(), ref, &o.dict, value.FromPointer(newDictRef))
	}
	return nil
}

// SetDelegate overwrites the delegate at index i on ref, through the
// write-barrier helper. Used to close forward-referencing delegate cycles
// (mutually recursive scopes/prototypes) that cannot be expressed at
// construction time, since one of the two objects must already exist
// before the other can name it as a delegate.
func SetDelegate(h *heap.Heap, ref heap.Ref, i int, newDelegate value.Box) error {
	o, ok := resolve(h, ref)
	if !ok {
		return heap.ErrBadRef
	}
	if i < 0 || i >= len(o.delegates) {
		return heap.ErrBadRef
	}
	value.WriteField(h, ref, &o.delegates[i], newDelegate)
	return nil
}

// Tag returns ref's format tag, used by callers that need to distinguish
// scope kinds (e.g. the frame package's Entry frame picking an evaluation
// scope shape).
func Tag(h *heap.Heap, ref heap.Ref) (format.Tag, bool) {
	obj, ok := h.Resolve(ref)
	if !ok {
		return format.TagInvalid, false
	}
	return obj.Header().Tag, true
}
