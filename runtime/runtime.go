// Package runtime implements this external interface surface: create
// a runtime, initialize a thread context, parse/evaluate a file, and
// dispose. It is the one package that wires every other package together
// into a runnable whole — the global scope's built-in bindings
// (structural-form handlers and arithmetic operators) are assembled here
// rather than in any leaf package, the same way a registry library's
// top-level factory is the only place that knows about every internal
// subpackage at once.
//
// Grounded on pkg/hive/factory.go's Open/NewEditor/NewHive lifecycle
// functions (a small set of top-level constructors that assemble internal
// subpackages behind one public entry point) and pkg/hive/parse.go's
// ParseRegFile/ParseRegBytes layering (a file-reading convenience wrapping
// a byte-oriented core function) — generalized from "open a hive file"
// to "create a runtime, spin up a thread context, evaluate a packed
// tree." wisp's packed syntax tree is itself opaque input (this
// "delegated to parser" non-goal), so runtime.Evaluate takes an
// already-decoded *syntax.Tree rather than raw source text.
package runtime

import (
	"github.com/wisplang/wisp/arith"
	"github.com/wisplang/wisp/except"
	"github.com/wisplang/wisp/frame"
	"github.com/wisplang/wisp/function"
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/object"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/strtab"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/value"
)

// Runtime is the process-wide (in practice, program-wide) factory for
// thread contexts. It holds no mutable state of its own: this module says
// thread-contexts "share only the runtime-level string-table spoiler and
// immutable configuration," but the string-table spoiler is drawn per
// string table (strtab.NewTable calls randomSpoiler, so each
// ThreadContext gets its own), so Runtime today is a named entry point
// rather than a container — kept as a type (not a bare package-level
// function) so a future runtime-wide configuration knob has somewhere to
// live without breaking callers.
type Runtime struct{}

// New creates a Runtime. There is nothing to fail on today; it returns no
// error, matching own NewHive (a pure constructor with no
// I/O).
func New() *Runtime {
	return &Runtime{}
}

// ThreadContext owns one Heap, one string table, and one global scope, and
// evaluates within them. A Runtime may host many; they never share
// a Heap.
type ThreadContext struct {
	heap    *heap.Heap
	strings *strtab.Table
	global  heap.Ref
}

// NewThreadContext allocates a fresh Heap and string table, builds the
// global scope, and binds the four structural-form handlers ("%file",
// "%block", "%var", "%call") as native operatives, and the arithmetic
// operators as native applicatives. Scope construction happens in the
// hatchery generation, the default allocation target.
func (r *Runtime) NewThreadContext() (*ThreadContext, error) {
	h := heap.NewHeap()
	strings := strtab.NewTable(h)
	ctx := h.Context(heap.GenHatchery)

	globalRef, err := object.NewGlobalScope(ctx)
	if err != nil {
		return nil, err
	}

	tc := &ThreadContext{heap: h, strings: strings, global: globalRef}
	if err := tc.installBuiltins(ctx); err != nil {
		return nil, err
	}
	return tc, nil
}

// Heap exposes the underlying heap for introspection (cmd/wispctl's
// heap-stats subcommand walks generation occupancy through this).
func (tc *ThreadContext) Heap() *heap.Heap { return tc.heap }

// Strings exposes the thread context's interning table.
func (tc *ThreadContext) Strings() *strtab.Table { return tc.strings }

// GlobalScope returns the thread context's global scope as an ObjectBox
// pointer, the outermost delegate of every other scope kind.
func (tc *ThreadContext) GlobalScope() value.Box { return value.FromPointer(tc.global) }

func (tc *ThreadContext) env() frame.Env {
	return frame.Env{Ctx: tc.heap.Context(heap.GenHatchery), Strings: tc.strings}
}

// define interns name and binds it as a KindValue, non-writable own
// property of the global scope; built-ins are not reassignable from evaluated code.
func (tc *ThreadContext) define(ctx heap.AllocContext, name string, v value.Box) error {
	nameRef, err := tc.strings.Intern(ctx, name)
	if err != nil {
		return err
	}
	desc := propdict.Descriptor{Kind: propdict.KindValue, Value: v, Writable: false}
	return object.DefineOwn(ctx, tc.global, value.FromPointer(nameRef), desc)
}

// installBuiltins binds every structural handler and arithmetic operator
// onto the global scope.
func (tc *ThreadContext) installBuiltins(ctx heap.AllocContext) error {
	structurals := []struct {
		name string
		kind syntax.Kind
	}{
		{syntax.KindFile.HandlerName(), syntax.KindFile},
		{syntax.KindBlock.HandlerName(), syntax.KindBlock},
		{syntax.KindVarStmt.HandlerName(), syntax.KindVarStmt},
		{syntax.KindCallExpr.HandlerName(), syntax.KindCallExpr},
	}
	for _, s := range structurals {
		fnRef, err := function.NewNativeOperative(ctx, s.kind)
		if err != nil {
			return err
		}
		if err := tc.define(ctx, s.name, value.FromPointer(fnRef)); err != nil {
			return err
		}
	}

	binaryOps := []struct {
		name string
		op   func(heap.AllocContext, value.Box, value.Box) (value.Box, error)
	}{
		{"+", arith.Add},
		{"-", arith.Sub},
		{"*", arith.Mul},
		{"/", arith.Div},
		{"%", arith.Mod},
	}
	for _, b := range binaryOps {
		op := b.op
		impl := func(implCtx heap.AllocContext, args []value.Box) (function.NativeResult, error) {
			if len(args) != 2 {
				return tc.wrongArity(implCtx, len(args), 2)
			}
			v, err := op(implCtx, args[0], args[1])
			if err != nil {
				return tc.wrongType(implCtx, err)
			}
			return function.NativeResult{Value: v}, nil
		}
		fnRef, err := function.NewNativeApplicative(ctx, impl)
		if err != nil {
			return err
		}
		if err := tc.define(ctx, b.name, value.FromPointer(fnRef)); err != nil {
			return err
		}
	}

	negRef, err := function.NewNativeApplicative(ctx, func(implCtx heap.AllocContext, args []value.Box) (function.NativeResult, error) {
		if len(args) != 1 {
			return tc.wrongArity(implCtx, len(args), 1)
		}
		v, err := arith.Neg(implCtx, args[0])
		if err != nil {
			return tc.wrongType(implCtx, err)
		}
		return function.NativeResult{Value: v}, nil
	})
	if err != nil {
		return err
	}
	return tc.define(ctx, "neg", value.FromPointer(negRef))
}

// wrongArity raises a native applicative's in-language arity-mismatch
// exception (this internal-exception variant), rather than a Go
// error — a wrong argument count is a user-visible mistake in the
// evaluated program, not an interpreter bug.
func (tc *ThreadContext) wrongArity(ctx heap.AllocContext, got, want int) (function.NativeResult, error) {
	gotBox, _ := value.FromInt64(int64(got))
	wantBox, _ := value.FromInt64(int64(want))
	ref, err := except.NewInternal(ctx, "wrong number of arguments: got %v, want %v", gotBox, wantBox)
	if err != nil {
		return function.NativeResult{}, err
	}
	return function.NativeResult{IsException: true, Value: value.FromPointer(ref)}, nil
}

// wrongType converts an arith package Go error (a non-numeric operand,
// this module scenario 5: "1 + true") into an in-language exception rather
// than letting it abort the trampoline. The error text is interned through
// this thread context's own string table rather than a throwaway one, so
// repeated type errors (e.g. in a loop) don't grow the table unboundedly
// with duplicate messages — strtab.Intern is idempotent for equal content.
func (tc *ThreadContext) wrongType(ctx heap.AllocContext, cause error) (function.NativeResult, error) {
	msgRef, err := tc.strings.Intern(ctx, cause.Error())
	if err != nil {
		return function.NativeResult{}, err
	}
	ref, err := except.NewInternal(ctx, "%v", value.FromPointer(msgRef))
	if err != nil {
		return function.NativeResult{}, err
	}
	return function.NativeResult{IsException: true, Value: value.FromPointer(ref)}, nil
}

// Evaluate stores tree into the heap and drives the Step/Resolve
// trampoline (frame.Run, this module) over rootNode in scope, returning the
// terminal frame's Result.
// Passing value.Undefined for scope evaluates in a fresh module scope
// delegating to the thread context's global scope, the same way a file
// evaluated at a REPL or load() boundary gets its own top-level bindings
// without polluting the shared global scope other files delegate to.
func (tc *ThreadContext) Evaluate(tree *syntax.Tree, scope value.Box, rootNode int) (frame.Result, error) {
	ctx := tc.heap.Context(heap.GenHatchery)
	if scope == value.Undefined {
		moduleScope, err := tc.newModuleScope(ctx)
		if err != nil {
			return frame.Result{}, err
		}
		scope = moduleScope
	}
	treeRef, err := syntax.Store(ctx, tree)
	if err != nil {
		return frame.Result{}, err
	}
	return frame.Run(tc.env(), scope, value.FromPointer(treeRef), rootNode)
}

// EvaluateStored is Evaluate's counterpart for a tree already resident on
// the heap (e.g. loaded via syntax.Load from a prior Store), avoiding a
// redundant re-store.
func (tc *ThreadContext) EvaluateStored(treeRef heap.Ref, scope value.Box, rootNode int) (frame.Result, error) {
	ctx := tc.heap.Context(heap.GenHatchery)
	if scope == value.Undefined {
		moduleScope, err := tc.newModuleScope(ctx)
		if err != nil {
			return frame.Result{}, err
		}
		scope = moduleScope
	}
	return frame.Run(tc.env(), scope, value.FromPointer(treeRef), rootNode)
}

// newModuleScope allocates a module scope delegating to the global scope,
// the per-evaluation top-level scope a bare "evaluate this file" call runs
// in.
func (tc *ThreadContext) newModuleScope(ctx heap.AllocContext) (value.Box, error) {
	ref, err := object.NewModuleScope(ctx, tc.GlobalScope())
	if err != nil {
		return value.Undefined, err
	}
	return value.FromPointer(ref), nil
}

// FormatResult renders a Result the way a driver would print it at the
// CLI boundary, bounded to maxLen for
// exception messages.
func (tc *ThreadContext) FormatResult(res frame.Result, maxLen int) string {
	switch res.Kind {
	case frame.ResultValue:
		return except.FormatValue(tc.heap, res.Value, maxLen)
	case frame.ResultVoid:
		return "<void>"
	case frame.ResultException:
		ref, ok := value.Pointer(res.Exception)
		if !ok {
			return "<malformed exception>"
		}
		return "uncaught exception: " + except.Format(tc.heap, ref, maxLen)
	case frame.ResultError:
		return "error: " + res.Err.Error()
	default:
		return "<unknown result>"
	}
}
