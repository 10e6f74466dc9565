// Package frame implements the evaluator's frame hierarchy and the
// Step/Resolve trampoline described in this module: a tree-walking,
// continuation-passing evaluator whose call stack is heap-allocated and
// traced rather than borrowed from the Go stack, so a long-running
// evaluation never holds an unbounded number of live Go frames and every
// in-flight activation record survives a collection.
//
// Grounded on hive/merge/planner.go + hive/merge/walk_apply.go: an
// explicit Op/Plan state machine walked one step at a time by an outer
// loop, each step either advancing in place or handing back a new
// sub-plan to apply before resuming — generalized here from "apply a
// registry merge plan" to "step an evaluation frame and resolve its
// parent when it terminates." All eleven frame kinds from this module are
// one Go type (Frame) discriminated by Kind/format.Tag, following the
// same "one struct, many tags" idiom as object.Object and
// function.Function.
package frame

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/strtab"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/trace"
	"github.com/wisplang/wisp/value"
)

// Kind discriminates the eleven frame variants of this module.
type Kind uint8

const (
	KindTerminal Kind = iota
	KindEntry
	KindSyntaxNameLookup
	KindInvokeSyntax
	KindFile
	KindBlock
	KindVar
	KindCallExpr
	KindInvokeApplicative
	KindInvokeOperative
	KindNativeCallResume
)

var kindToTag = [...]format.Tag{
	KindTerminal:          format.TagFrameTerminal,
	KindEntry:             format.TagFrameEntry,
	KindSyntaxNameLookup:  format.TagFrameSyntaxNameLookup,
	KindInvokeSyntax:      format.TagFrameInvokeSyntax,
	KindFile:              format.TagFrameFile,
	KindBlock:             format.TagFrameBlock,
	KindVar:               format.TagFrameVar,
	KindCallExpr:          format.TagFrameCallExpr,
	KindInvokeApplicative: format.TagFrameInvokeApplicative,
	KindInvokeOperative:   format.TagFrameInvokeOperative,
	KindNativeCallResume:  format.TagFrameNativeCallResume,
}

// callPhase discriminates CallExpr's {Callee -> Arg* -> Invoke} state
// machine.
type callPhase uint8

const (
	callPhaseCallee callPhase = iota
	callPhaseArg
	callPhaseDone
)

// resumeFn is the Go closure a NativeCallResume frame invokes once its
// child (the body Entry frame of an applicative call) terminates. It is
// not traced, exactly like function.Function's nativeApp field: a Go
// closure holds no Box fields the tracer could ever need to visit.
type resumeFn func(childResult Result) Result

// Frame is the heap object backing every this module variant; format.Tag
// (cached locally as kind) discriminates which one a given allocation is.
// Field groups below are commented by which Kind(s) populate them; an
// unused group simply holds its zero value for every other Kind, the same
// convention function.Function uses for its Kind-specific fields.
type Frame struct {
	heap.Base
	kind   Kind
	parent value.Box // every kind except Terminal: pointer to the parent Frame

	// Terminal: the stored final outcome.
	termResult Result

	// Entry: the syntax-tree fragment to evaluate and the scope it
	// evaluates in, plus a two-valued phase distinguishing "awaiting the
	// handler lookup" from "awaiting the handler's invocation" for
	// structural (handler-dispatched) nodes.
	tree    value.Box // pointer to a format.TagPackedTree leaf
	node    int
	scope   value.Box // evaluation scope, an ObjectBox-shaped pointer
	entryDispatched bool

	// SyntaxNameLookup: which structural syntax.Kind's conventional
	// handler name to resolve (derived from the Entry node's own kind at
	// construction time, so this frame need not re-decode the tree).
	synKind syntax.Kind

	// InvokeSyntax: the resolved handler function being invoked over
	// (tree, node, scope). InvokeOperative keeps its function in fn below.
	handler value.Box

	// File / Block: statement sequencing state.
	stmtIndex int
	stmtCount int
	lastVoid  bool
	lastValue value.Box

	// Var: binding sequencing state.
	bindingIndex int
	bindingCount int
	pendingName  value.Box

	// CallExpr: the {Callee -> Arg* -> Invoke} state machine.
	phase       callPhase
	callee      value.Box
	argNo       int
	argCount    int
	operandHead value.Box // pointer to an OperandList cons cell, or value.Undefined

	// InvokeApplicative: the function being applied and its fully
	// evaluated, order-preserving argument array. InvokeOperative also
	// stores its function in fn (and leaves args unset).
	fn   value.Box
	args value.Box // pointer to a BoxArray

	// NativeCallResume: the Go closure to run once the child (the called
	// function's body Entry frame) produces a result.
	resume resumeFn
}

var _ heap.HeapObject = (*Frame)(nil)

// Trace implements trace.Traceable. Guards follow the codebase's
// established convention (lookup.State, except.Exception) of skipping a
// visit for fields a given Kind never populates.
func (f *Frame) Trace(v trace.Visitor) {
	if f.parent != value.Undefined {
		f.parent = v(f.parent)
	}
	if f.tree != value.Undefined {
		f.tree = v(f.tree)
	}
	if f.scope != value.Undefined {
		f.scope = v(f.scope)
	}
	if f.handler != value.Undefined {
		f.handler = v(f.handler)
	}
	if f.lastValue != value.Undefined {
		f.lastValue = v(f.lastValue)
	}
	if f.pendingName != value.Undefined {
		f.pendingName = v(f.pendingName)
	}
	if f.callee != value.Undefined {
		f.callee = v(f.callee)
	}
	if f.operandHead != value.Undefined {
		f.operandHead = v(f.operandHead)
	}
	if f.fn != value.Undefined {
		f.fn = v(f.fn)
	}
	if f.args != value.Undefined {
		f.args = v(f.args)
	}
	f.termResult.trace(v)
}

// Env bundles the per-thread-context resources every frame operation
// needs: the allocation context and the string table used to intern
// syntax-tree identifiers into name Boxes. Kept separate from
// heap.AllocContext itself (rather than folding Strings into it) because
// strtab already imports heap; an AllocContext field there would create
// an import cycle.
type Env struct {
	Ctx     heap.AllocContext
	Strings *strtab.Table
}

func (e Env) heap() *heap.Heap { return e.Ctx.Heap() }

// ResultKind discriminates the evaluation-result variants of this module:
// "Error (unrecoverable), Exception(throwingFrame, exceptionObject),
// Value(box), Void". Call-result's extra Continue is not a ResultKind: the
// trampoline carries it internally as outcomeContinue (see trampoline.go).
type ResultKind uint8

const (
	ResultError ResultKind = iota
	ResultException
	ResultValue
	ResultVoid
)

// String names a ResultKind, matching heap.Generation's String convention
// (cmd/wispctl's --json output prints this rather than a bare integer).
func (k ResultKind) String() string {
	switch k {
	case ResultError:
		return "Error"
	case ResultException:
		return "Exception"
	case ResultValue:
		return "Value"
	case ResultVoid:
		return "Void"
	default:
		return "Invalid"
	}
}

// Result is the outcome of a completed evaluation: either the value the
// terminal frame settled on, or the reason it didn't.
type Result struct {
	Kind ResultKind

	Err error // ResultError

	ExceptionFrame value.Box // ResultException: the frame that raised it
	Exception      value.Box // ResultException: pointer to the except.Exception object

	Value value.Box // ResultValue
}

func valueResult(v value.Box) Result  { return Result{Kind: ResultValue, Value: v} }
func voidResult() Result              { return Result{Kind: ResultVoid} }
func errorResult(err error) Result    { return Result{Kind: ResultError, Err: err} }
func exceptionResult(throwingFrame, exceptionRef value.Box) Result {
	return Result{Kind: ResultException, ExceptionFrame: throwingFrame, Exception: exceptionRef}
}

func (r *Result) trace(v trace.Visitor) {
	if r.ExceptionFrame != value.Undefined {
		r.ExceptionFrame = v(r.ExceptionFrame)
	}
	if r.Exception != value.Undefined {
		r.Exception = v(r.Exception)
	}
	if r.Value != value.Undefined {
		r.Value = v(r.Value)
	}
}

// alloc is the shared constructor every New* function in this package
// funnels through, mirroring function.alloc's build-then-stamp-Base idiom.
func alloc(env Env, kind Kind, approxSize int, build func(heap.Ref) *Frame) (heap.Ref, error) {
	tag := kindToTag[kind]
	return env.Ctx.AllocHead(tag, approxSize, func(r heap.Ref) heap.HeapObject {
		slab, _ := env.Ctx.Heap().SlabOf(r)
		f := build(r)
		f.kind = kind
		f.Base = heap.NewBase(slab, r, tag, approxSize)
		return f
	})
}

func resolve(h *heap.Heap, ref heap.Ref) (*Frame, bool) {
	obj, ok := h.Resolve(ref)
	if !ok {
		return nil, false
	}
	f, ok := obj.(*Frame)
	return f, ok
}

// KindOf reports ref's frame Kind.
func KindOf(h *heap.Heap, ref heap.Ref) (Kind, bool) {
	f, ok := resolve(h, ref)
	if !ok {
		return 0, false
	}
	return f.kind, true
}

func parentOf(h *heap.Heap, ref heap.Ref) (heap.Ref, bool) {
	f, ok := resolve(h, ref)
	if !ok || f.parent == value.Undefined {
		return heap.NilRef, false
	}
	p, ok := value.Pointer(f.parent)
	return p, ok
}

func internName(env Env, name string) (value.Box, error) {
	ref, err := env.Strings.Intern(env.Ctx, name)
	if err != nil {
		return value.Undefined, err
	}
	return value.FromPointer(ref), nil
}

func loadTree(env Env, treeBox value.Box) (*syntax.Tree, error) {
	ref, ok := value.Pointer(treeBox)
	if !ok {
		return nil, ErrMalformedFrame
	}
	return syntax.Load(env.heap(), ref)
}
