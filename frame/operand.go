package frame

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/trace"
	"github.com/wisplang/wisp/value"
)

// operandList is the singly-linked accumulator CallExpr's Arg* state
// prepends to as each argument resolves. Building by prepending means the
// list is in reverse evaluation order; invokeApplicativeFromOperands
// reverses it (via flattenOperands) into a boxArray before
// InvokeApplicative ever sees it.
type operandList struct {
	heap.Base
	value value.Box
	next  value.Box // pointer to the next cons cell, or value.Undefined at the tail
}

var _ heap.HeapObject = (*operandList)(nil)

func (o *operandList) Trace(v trace.Visitor) {
	o.value = v(o.value)
	if o.next != value.Undefined {
		o.next = v(o.next)
	}
}

func pushOperand(ctx heap.AllocContext, head value.Box, v value.Box) (heap.Ref, error) {
	const size = 24
	return ctx.AllocHead(format.TagOperandList, size, func(r heap.Ref) heap.HeapObject {
		slab, _ := ctx.Heap().SlabOf(r)
		return &operandList{
			Base:  heap.NewBase(slab, r, format.TagOperandList, size),
			value: v,
			next:  head,
		}
	})
}

// boxArray is the materialized, order-preserving argument array an
// InvokeApplicative frame applies a function to (this "applies a
// function to an evaluated operand list" — the operand list proper, once
// complete, is flattened into this traced fixed array rather than handed
// to the function still reversed and linked).
type boxArray struct {
	heap.Base
	items []value.Box
}

var _ heap.HeapObject = (*boxArray)(nil)

func (a *boxArray) Trace(v trace.Visitor) {
	for i := range a.items {
		a.items[i] = v(a.items[i])
	}
}

func newBoxArray(ctx heap.AllocContext, items []value.Box) (heap.Ref, error) {
	itemsCopy := make([]value.Box, len(items))
	copy(itemsCopy, items)
	size := 24 + len(itemsCopy)*8
	return ctx.AllocHead(format.TagBoxArray, size, func(r heap.Ref) heap.HeapObject {
		slab, _ := ctx.Heap().SlabOf(r)
		return &boxArray{
			Base:  heap.NewBase(slab, r, format.TagBoxArray, size),
			items: itemsCopy,
		}
	})
}

func resolveBoxArray(h *heap.Heap, ref heap.Ref) (*boxArray, bool) {
	obj, ok := h.Resolve(ref)
	if !ok {
		return nil, false
	}
	a, ok := obj.(*boxArray)
	return a, ok
}

// BoxArrayItems returns the Boxes held by a BoxArray ref, for callers
// outside this package (e.g. a native applicative wanting direct access
// to its argument array rather than the []value.Box CallNative already
// flattens it to).
func BoxArrayItems(h *heap.Heap, ref heap.Ref) []value.Box {
	a, ok := resolveBoxArray(h, ref)
	if !ok {
		return nil
	}
	return a.items
}

// flattenOperands walks a reversed operandList chain (or value.Undefined
// for zero arguments) back into evaluation order.
func flattenOperands(h *heap.Heap, head value.Box) ([]value.Box, error) {
	var reversed []value.Box
	cur := head
	for cur != value.Undefined {
		ref, ok := value.Pointer(cur)
		if !ok {
			return nil, ErrMalformedFrame
		}
		obj, ok := h.Resolve(ref)
		if !ok {
			return nil, ErrMalformedFrame
		}
		node, ok := obj.(*operandList)
		if !ok {
			return nil, ErrMalformedFrame
		}
		reversed = append(reversed, node.value)
		cur = node.next
	}
	items := make([]value.Box, len(reversed))
	for i, v := range reversed {
		items[len(reversed)-1-i] = v
	}
	return items, nil
}
