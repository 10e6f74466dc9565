// Package function implements the function objects the frame package's
// Invoke* frames operate on. Applicative invocation for ≥1-argument
// functions binds the accumulated operand list positionally into fresh
// call-scope bindings named by the function's parameter list (recovered
// from original_source/src/whisper/vm/control_flow.hpp's FunctionObject
// parameter-name vector), and the function's body then steps through the
// same Entry/File/Block machinery top-level evaluation uses — a call is
// not a special case, just an Entry frame over a pre-populated scope.
//
// Grounded on hive/merge/session.go (a resumable session object threading
// state across repeated calls) for the bridge a native function needs to
// re-enter the frame trampoline (frame.NativeCallResume), and on
// hive/merge/strategy's registered-by-kind strategies for distinguishing
// operative vs. applicative dispatch by a Kind field rather than a type
// switch over concrete Go types.
package function

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/trace"
	"github.com/wisplang/wisp/value"
)

// Kind discriminates the three function shapes the frame package's
// Invoke* frames dispatch on.
type Kind uint8

const (
	// KindNativeApplicative wraps a Go function receiving fully-evaluated
	// operands (e.g. arithmetic primitives).
	KindNativeApplicative Kind = iota
	// KindNativeOperative wraps one of the four built-in structural
	// syntax forms (File/Block/Var/CallExpr), invoked with the raw,
	// unevaluated syntax fragment by InvokeOperative.
	KindNativeOperative
	// KindApplicative is a user-defined function: operands are evaluated
	// before the call, bound to Params, and the body is stepped as an
	// Entry frame over a fresh call scope.
	KindApplicative
)

// NativeResult is what a KindNativeApplicative function produces: either
// a plain value or an exception object (as a pointer Box), since native
// functions can fail in-language (e.g. a wrong-arity call) without that
// being a Go error. Kept independent of the frame package's own Result
// sum type to avoid an import cycle (frame imports function, not the
// reverse); the frame package translates a NativeResult into its own
// Result when it invokes one of these.
type NativeResult struct {
	IsException bool
	Value       value.Box // the plain value, or (if IsException) the exception ref as a pointer Box
}

// NativeApplicativeFn is the Go-level implementation of a native
// applicative function (e.g. "+": arith.Add wrapped to this shape).
type NativeApplicativeFn func(ctx heap.AllocContext, args []value.Box) (NativeResult, error)

// Function is the heap object backing every callable value.
type Function struct {
	heap.Base
	kind      Kind
	nativeApp NativeApplicativeFn // KindNativeApplicative only; not traced (no Box fields)
	nativeOp  syntax.Kind         // KindNativeOperative only: which structural form this implements
	params    []value.Box         // KindApplicative only: parameter-name Boxes, in positional order
	bodyTree  value.Box           // KindApplicative only: pointer to the defining syntax.Tree's heap leaf
	bodyNode  int                 // KindApplicative only: word position of the function body
	closure   value.Box           // KindApplicative only: the lexically enclosing scope
}

var _ heap.HeapObject = (*Function)(nil)

func (f *Function) Trace(v trace.Visitor) {
	if f.kind != KindApplicative {
		return
	}
	for i := range f.params {
		f.params[i] = v(f.params[i])
	}
	f.bodyTree = v(f.bodyTree)
	f.closure = v(f.closure)
}

func alloc(ctx heap.AllocContext, build func(heap.Ref) *Function) (heap.Ref, error) {
	const approxSize = 64
	return ctx.AllocHead(format.TagFunction, approxSize, func(r heap.Ref) heap.HeapObject {
		slab, _ := ctx.Heap().SlabOf(r)
		fn := build(r)
		fn.Base = heap.NewBase(slab, r, format.TagFunction, approxSize)
		return fn
	})
}

// NewNativeApplicative allocates a function object wrapping a Go-native
// applicative implementation.
func NewNativeApplicative(ctx heap.AllocContext, impl NativeApplicativeFn) (heap.Ref, error) {
	return alloc(ctx, func(heap.Ref) *Function {
		return &Function{kind: KindNativeApplicative, nativeApp: impl}
	})
}

// NewNativeOperative allocates a function object implementing one of the
// built-in structural syntax forms.
func NewNativeOperative(ctx heap.AllocContext, op syntax.Kind) (heap.Ref, error) {
	return alloc(ctx, func(heap.Ref) *Function {
		return &Function{kind: KindNativeOperative, nativeOp: op}
	})
}

// NewApplicative allocates a user-defined function closing over scope.
func NewApplicative(ctx heap.AllocContext, params []value.Box, bodyTree value.Box, bodyNode int, closure value.Box) (heap.Ref, error) {
	paramsCopy := make([]value.Box, len(params))
	copy(paramsCopy, params)
	return alloc(ctx, func(heap.Ref) *Function {
		return &Function{
			kind:     KindApplicative,
			params:   paramsCopy,
			bodyTree: bodyTree,
			bodyNode: bodyNode,
			closure:  closure,
		}
	})
}

func resolve(h *heap.Heap, ref heap.Ref) (*Function, bool) {
	obj, ok := h.Resolve(ref)
	if !ok {
		return nil, false
	}
	fn, ok := obj.(*Function)
	return fn, ok
}

// Is reports whether ref names a Function object at all (the frame
// package's CallExpr uses this to decide "not operative"/"not callable").
func Is(h *heap.Heap, ref heap.Ref) bool {
	_, ok := resolve(h, ref)
	return ok
}

// KindOf returns ref's Kind.
func KindOf(h *heap.Heap, ref heap.Ref) (Kind, bool) {
	fn, ok := resolve(h, ref)
	if !ok {
		return 0, false
	}
	return fn.kind, true
}

// IsOperative reports whether ref is operative (gets the unevaluated
// syntax fragment) rather than applicative (gets evaluated operands).
func IsOperative(h *heap.Heap, ref heap.Ref) bool {
	k, ok := KindOf(h, ref)
	return ok && k == KindNativeOperative
}

// NativeOp returns the structural form a KindNativeOperative function
// implements.
func NativeOp(h *heap.Heap, ref heap.Ref) (syntax.Kind, bool) {
	fn, ok := resolve(h, ref)
	if !ok || fn.kind != KindNativeOperative {
		return syntax.KindInvalid, false
	}
	return fn.nativeOp, true
}

// CallNative invokes a KindNativeApplicative function's Go implementation.
func CallNative(h *heap.Heap, ctx heap.AllocContext, ref heap.Ref, args []value.Box) (NativeResult, error) {
	fn, ok := resolve(h, ref)
	if !ok || fn.kind != KindNativeApplicative {
		return NativeResult{}, ErrNotNativeApplicative
	}
	return fn.nativeApp(ctx, args)
}

// Params returns a KindApplicative function's parameter-name Boxes.
func Params(h *heap.Heap, ref heap.Ref) []value.Box {
	fn, ok := resolve(h, ref)
	if !ok || fn.kind != KindApplicative {
		return nil
	}
	return fn.params
}

// Body returns a KindApplicative function's defining tree and body node.
func Body(h *heap.Heap, ref heap.Ref) (bodyTree value.Box, bodyNode int, ok bool) {
	fn, found := resolve(h, ref)
	if !found || fn.kind != KindApplicative {
		return value.Undefined, 0, false
	}
	return fn.bodyTree, fn.bodyNode, true
}

// Closure returns a KindApplicative function's lexically enclosing scope.
func Closure(h *heap.Heap, ref heap.Ref) value.Box {
	fn, ok := resolve(h, ref)
	if !ok || fn.kind != KindApplicative {
		return value.Undefined
	}
	return fn.closure
}

// ErrNotNativeApplicative is returned by CallNative when ref is not a
// KindNativeApplicative function.
var ErrNotNativeApplicative = errNotNativeApplicative{}

type errNotNativeApplicative struct{}

func (errNotNativeApplicative) Error() string { return "function: not a native applicative" }
