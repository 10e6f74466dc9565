// Package lookup implements a depth-first, left-to-right delegate walker:
// given a receiver and a property name, probe the receiver's own
// dictionary, then its delegates in order, recording visited objects in a
// seen-set so a delegate cycle is harmless.
//
// The walk is resumable one step at a time through an explicit state byte
// rather than plain recursion, since a NextNode step may itself allocate
// and must be callable from an outer loop that holds the lookup state in
// a root.
//
// The seen-set reuses propdict's open-addressed table keyed on object
// identity Boxes rather than an offset-indexed bitmap, since objects have
// no small dense integer key the way slab offsets do; a set is a
// dictionary with a placeholder descriptor, so no new data structure is
// introduced for it.
package lookup

import (
	"errors"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/object"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/trace"
	"github.com/wisplang/wisp/value"
)

// Result is the three-way outcome this module defines for a completed walk.
type Result uint8

const (
	ResultPending Result = iota
	ResultFound
	ResultNotFound
	ResultError
)

// ErrLookup wraps an internal walk failure (e.g. a malformed object ref
// encountered mid-walk).
var ErrLookup = errors.New("lookup: internal error")

// node is one frame of the cursor's parent-linked chain: the object whose
// dictionary is currently being probed, a cached snapshot of its delegate
// array (fetched once on first descent), and the index of the next
// delegate to try.
type node struct {
	heap.Base
	object    value.Box
	delegates []value.Box
	index     int
	parent    value.Box // pointer to the parent node, or value.Undefined at the root
}

var _ heap.HeapObject = (*node)(nil)

func (n *node) Trace(v trace.Visitor) {
	n.object = v(n.object)
	for i := range n.delegates {
		n.delegates[i] = v(n.delegates[i])
	}
	if n.parent != value.Undefined {
		n.parent = v(n.parent)
	}
}

func newNode(ctx heap.AllocContext, obj value.Box, delegates []value.Box, parent value.Box) (heap.Ref, error) {
	delegatesCopy := make([]value.Box, len(delegates))
	copy(delegatesCopy, delegates)
	size := 24 + len(delegatesCopy)*8
	return ctx.AllocHead(format.TagLookupNode, size, func(r heap.Ref) heap.HeapObject {
		slab, _ := ctx.Heap().SlabOf(r)
		return &node{
			Base:      heap.NewBase(slab, r, format.TagLookupNode, size),
			object:    obj,
			delegates: delegatesCopy,
			index:     0,
			parent:    parent,
		}
	})
}

func resolveNode(h *heap.Heap, b value.Box) (*node, heap.Ref, bool) {
	ref, ok := value.Pointer(b)
	if !ok {
		return nil, heap.NilRef, false
	}
	obj, ok := h.Resolve(ref)
	if !ok {
		return nil, heap.NilRef, false
	}
	n, ok := obj.(*node)
	return n, ref, ok
}

// State is the reifiable cursor of an in-progress property walk (this module's "lookup state"): the receiver, the name being looked up, a
// seen-set, and the current cursor node. Allocation-safe across NextNode
// calls: the caller must keep stateRef rooted between Step invocations.
type State struct {
	heap.Base
	receiver        value.Box
	name            value.Box
	seenSet         value.Box
	cursor          value.Box
	result          Result
	foundDesc       propdict.Descriptor
	resolvingObject value.Box
}

var _ heap.HeapObject = (*State)(nil)

func (s *State) Trace(v trace.Visitor) {
	s.receiver = v(s.receiver)
	s.name = v(s.name)
	s.seenSet = v(s.seenSet)
	s.cursor = v(s.cursor)
	if s.foundDesc.Kind == propdict.KindValue {
		s.foundDesc.Value = v(s.foundDesc.Value)
	} else {
		s.foundDesc.Method = v(s.foundDesc.Method)
	}
	if s.resolvingObject != value.Undefined {
		s.resolvingObject = v(s.resolvingObject)
	}
}

func resolveState(h *heap.Heap, ref heap.Ref) (*State, bool) {
	obj, ok := h.Resolve(ref)
	if !ok {
		return nil, false
	}
	st, ok := obj.(*State)
	return st, ok
}

// Start allocates a fresh lookup State for (receiver, name), seeded with
// the receiver itself as the root cursor node and already marked seen.
func Start(ctx heap.AllocContext, receiver, name value.Box) (heap.Ref, error) {
	seenRef, err := propdict.NewTagged(ctx, format.TagLookupSeenSet, 0)
	if err != nil {
		return heap.NilRef, err
	}
	receiverRef, ok := value.Pointer(receiver)
	if !ok {
		return heap.NilRef, ErrLookup
	}
	delegates := object.Delegates(ctx.Heap(), receiverRef)
	rootNodeRef, err := newNode(ctx, receiver, delegates, value.Undefined)
	if err != nil {
		return heap.NilRef, err
	}
	newSeenRef, err := propdict.Define(ctx, seenRef, receiver, propdict.Descriptor{})
	if err != nil {
		return heap.NilRef, err
	}

	size := 48
	return ctx.AllocHead(format.TagLookupState, size, func(r heap.Ref) heap.HeapObject {
		slab, _ := ctx.Heap().SlabOf(r)
		return &State{
			Base:    heap.NewBase(slab, r, format.TagLookupState, size),
			receiver: receiver,
			name:     name,
			seenSet:  value.FromPointer(newSeenRef),
			cursor:   value.FromPointer(rootNodeRef),
			result:   ResultPending,
		}
	})
}

// Step performs exactly one NextNode action: probe the
// current cursor node's object, then either settle Found, advance into
// the next unseen delegate (possibly allocating a child node), or pop
// back to the parent when the current node's delegates are exhausted.
// done reports whether the walk has reached Found/NotFound/Error.
func Step(ctx heap.AllocContext, stateRef heap.Ref) (done bool, err error) {
	h := ctx.Heap()
	st, ok := resolveState(h, stateRef)
	if !ok {
		return true, ErrLookup
	}
	if st.result != ResultPending {
		return true, nil
	}

	cur, _, ok := resolveNode(h, st.cursor)
	if !ok {
		st.result = ResultError
		return true, ErrLookup
	}

	objRef, ok := value.Pointer(cur.object)
	if !ok {
		st.result = ResultError
		return true, ErrLookup
	}
	if desc, found := object.GetOwn(h, objRef, st.name); found {
		st.result = ResultFound
		st.foundDesc = desc
		st.resolvingObject = cur.object
		return true, nil
	}

	// Advance past any already-seen delegates (tie-break: first
	// unseen, lowest-index delegate wins).
	for cur.index < len(cur.delegates) {
		candidate := cur.delegates[cur.index]
		cur.index++
		seenRef, ok := value.Pointer(st.seenSet)
		if !ok {
			st.result = ResultError
			return true, ErrLookup
		}
		if _, already := propdict.Get(h, seenRef, candidate); already {
			continue // seen-set law: never visit the same object twice
		}
		newSeenRef, err := propdict.Define(ctx, seenRef, candidate, propdict.Descriptor{})
		if err != nil {
			st.result = ResultError
			return true, err
		}
		if newSeenRef != seenRef {
			value.WriteField(h, stateRef, &st.seenSet, value.FromPointer(newSeenRef))
		}
		candidateRef, ok := value.Pointer(candidate)
		if !ok {
			continue
		}
		childDelegates := object.Delegates(h, candidateRef)
		childNodeRef, err := newNode(ctx, candidate, childDelegates, st.cursor)
		if err != nil {
			st.result = ResultError
			return true, err
		}
		value.WriteField(h, stateRef, &st.cursor, value.FromPointer(childNodeRef))
		return false, nil
	}

	// This node's delegates are exhausted; pop to the parent.
	if cur.parent == value.Undefined {
		st.result = ResultNotFound
		return true, nil
	}
	value.WriteField(h, stateRef, &st.cursor, cur.parent)
	return false, nil
}

// Run drives Step to completion, for callers (the frame package's
// SyntaxNameLookup frame, among others) that perform a whole lookup as one
// atomic action rather than spreading it across trampoline iterations.
func Run(ctx heap.AllocContext, receiver, name value.Box) (Result, propdict.Descriptor, value.Box, error) {
	stateRef, err := Start(ctx, receiver, name)
	if err != nil {
		return ResultError, propdict.Descriptor{}, value.Undefined, err
	}
	for {
		done, err := Step(ctx, stateRef)
		if err != nil {
			return ResultError, propdict.Descriptor{}, value.Undefined, err
		}
		if done {
			break
		}
	}
	st, _ := resolveState(ctx.Heap(), stateRef)
	return st.result, st.foundDesc, st.resolvingObject, nil
}
