package frame

import (
	"github.com/wisplang/wisp/function"
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/object"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/value"
)

// buildStructuralFrame allocates the built-in frame kind a structural
// syntax.Kind maps to, over (tree, node, scope). Block introduces a
// fresh delegate scope for its own statements (this module: scope variants
// "differ only in their delegate composition"); File, Var and CallExpr
// evaluate directly in the scope they're handed.
func buildStructuralFrame(env Env, parent, scope, tree value.Box, node int, kind syntax.Kind) (heap.Ref, error) {
	switch kind {
	case syntax.KindFile:
		return NewFile(env, parent, scope, tree, node)
	case syntax.KindBlock:
		scopeRef, err := object.NewBlockScope(env.Ctx, scope)
		if err != nil {
			return heap.NilRef, err
		}
		return NewBlock(env, parent, value.FromPointer(scopeRef), tree, node)
	case syntax.KindVarStmt:
		return NewVar(env, parent, scope, tree, node)
	case syntax.KindCallExpr:
		return NewCallExpr(env, parent, scope, tree, node)
	default:
		return heap.NilRef, ErrMalformedFrame
	}
}

// NewInvokeSyntax allocates a frame invoking a resolved structural
// handler over the syntax fragment that named it.
func NewInvokeSyntax(env Env, parent, scope, tree value.Box, node int, handler value.Box) (heap.Ref, error) {
	const size = 56
	return alloc(env, KindInvokeSyntax, size, func(heap.Ref) *Frame {
		return &Frame{parent: parent, scope: scope, tree: tree, node: node, handler: handler}
	})
}

func stepInvokeSyntax(env Env, f *Frame, self heap.Ref) (outcome, error) {
	op, ok := function.NativeOp(env.heap(), mustRef(f.handler))
	if !ok {
		r, err := raiseNotOperative(env, selfBox(self), f.handler)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: r}, nil
	}
	child, err := buildStructuralFrame(env, selfBox(self), f.scope, f.tree, f.node, op)
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: child}, nil
}

func resolveInvokeSyntax(f *Frame, res Result) (outcome, error) {
	return outcome{kind: outcomeDone, result: res}, nil
}

// NewInvokeOperative allocates a frame handing an operative function the
// unevaluated syntax fragment it was called with.
func NewInvokeOperative(env Env, parent, scope, tree value.Box, node int, fn value.Box) (heap.Ref, error) {
	const size = 56
	return alloc(env, KindInvokeOperative, size, func(heap.Ref) *Frame {
		return &Frame{parent: parent, scope: scope, tree: tree, node: node, fn: fn}
	})
}

func stepInvokeOperative(env Env, f *Frame, self heap.Ref) (outcome, error) {
	op, ok := function.NativeOp(env.heap(), mustRef(f.fn))
	if !ok {
		r, err := raiseNotOperative(env, selfBox(self), f.fn)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: r}, nil
	}
	child, err := buildStructuralFrame(env, selfBox(self), f.scope, f.tree, f.node, op)
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: child}, nil
}

func resolveInvokeOperative(f *Frame, res Result) (outcome, error) {
	return outcome{kind: outcomeDone, result: res}, nil
}

// NewInvokeApplicative allocates a frame applying fn to its fully
// evaluated argument array.
func NewInvokeApplicative(env Env, parent, fn, args value.Box) (heap.Ref, error) {
	const size = 48
	return alloc(env, KindInvokeApplicative, size, func(heap.Ref) *Frame {
		return &Frame{parent: parent, fn: fn, args: args}
	})
}

func stepInvokeApplicative(env Env, f *Frame, self heap.Ref) (outcome, error) {
	h := env.heap()
	fnRef := mustRef(f.fn)
	argsRef := mustRef(f.args)
	args := BoxArrayItems(h, argsRef)

	kind, ok := function.KindOf(h, fnRef)
	if !ok {
		r, err := raisef(env, selfBox(self), "%v is not callable", f.fn)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: r}, nil
	}

	if kind == function.KindNativeApplicative {
		nr, err := function.CallNative(h, env.Ctx, fnRef, args)
		if err != nil {
			return outcome{}, err
		}
		if nr.IsException {
			return outcome{kind: outcomeDone, result: exceptionResult(selfBox(self), nr.Value)}, nil
		}
		return outcome{kind: outcomeDone, result: valueResult(nr.Value)}, nil
	}

	// KindApplicative: bind operands positionally into a fresh call scope,
	// then step the function body by sequencing it through the same
	// File/Block machinery every other block uses, bridged through a
	// NativeCallResume frame so that frame kind is genuinely exercised by
	// the core call path instead of staying an unused variant.
	params := function.Params(h, fnRef)
	closure := function.Closure(h, fnRef)
	callScopeRef, err := object.NewCallScope(env.Ctx, closure)
	if err != nil {
		return outcome{}, err
	}
	callScope := value.FromPointer(callScopeRef)
	for i, param := range params {
		v := value.Undefined
		if i < len(args) {
			v = args[i]
		}
		desc := propdict.Descriptor{Kind: propdict.KindValue, Value: v, Writable: true}
		if err := object.DefineOwn(env.Ctx, callScopeRef, param, desc); err != nil {
			return outcome{}, err
		}
	}

	bodyTree, bodyNode, ok := function.Body(h, fnRef)
	if !ok {
		return outcome{}, ErrMalformedFrame
	}
	resumeRef, err := NewNativeCallResume(env, selfBox(self), callScope, bodyTree, bodyNode, identityResume)
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: resumeRef}, nil
}

// identityResume is the resume closure InvokeApplicative's user-defined-
// function call path bridges through: the body's own result becomes the
// call's result unchanged. A future native applicative wanting to call
// back into the interpreter (e.g. a higher-order builtin invoking a wisp
// function) would supply a different closure here instead.
func identityResume(res Result) Result { return res }

func resolveInvokeApplicative(f *Frame, res Result) (outcome, error) {
	return outcome{kind: outcomeDone, result: res}, nil
}

func mustRef(b value.Box) heap.Ref {
	ref, _ := value.Pointer(b)
	return ref
}
