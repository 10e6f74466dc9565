package frame

import (
	"github.com/wisplang/wisp/function"
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/value"
)

// NewCallExpr allocates a frame driving the {Callee -> Arg* -> Invoke}
// state machine of this module.
func NewCallExpr(env Env, parent, scope, tree value.Box, node int) (heap.Ref, error) {
	const size = 80
	return alloc(env, KindCallExpr, size, func(heap.Ref) *Frame {
		return &Frame{
			parent:      parent,
			scope:       scope,
			tree:        tree,
			node:        node,
			phase:       callPhaseCallee,
			callee:      value.Undefined,
			operandHead: value.Undefined,
		}
	})
}

func stepCallExpr(env Env, f *Frame, self heap.Ref) (outcome, error) {
	t, err := loadTree(env, f.tree)
	if err != nil {
		return outcome{}, err
	}
	calleePos, err := t.Callee(f.node)
	if err != nil {
		return outcome{}, err
	}
	child, err := NewEntry(env, selfBox(self), f.scope, f.tree, calleePos)
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: child}, nil
}

func resolveCallExpr(env Env, f *Frame, self heap.Ref, res Result) (outcome, error) {
	switch f.phase {
	case callPhaseCallee:
		return resolveCallExprCallee(env, f, self, res)
	case callPhaseArg:
		return resolveCallExprArg(env, f, self, res)
	default: // callPhaseDone: forward the Invoke* child's result unchanged.
		return outcome{kind: outcomeDone, result: res}, nil
	}
}

func resolveCallExprCallee(env Env, f *Frame, self heap.Ref, res Result) (outcome, error) {
	if isExceptionOrError(res) {
		return outcome{kind: outcomeDone, result: res}, nil
	}
	if res.Kind == ResultVoid {
		r, err := raisef(env, selfBox(self), "void value used in callee position")
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: r}, nil
	}
	f.callee = res.Value

	h := env.heap()
	fnRef, ok := value.Pointer(f.callee)
	if !ok || !function.Is(h, fnRef) {
		r, err := raisef(env, selfBox(self), "%v is not callable", f.callee)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: r}, nil
	}

	t, err := loadTree(env, f.tree)
	if err != nil {
		return outcome{}, err
	}
	f.argCount = t.ArgCount(f.node)

	if function.IsOperative(h, fnRef) {
		f.phase = callPhaseDone
		child, err := NewInvokeOperative(env, selfBox(self), f.scope, f.tree, f.node, f.callee)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeContinue, next: child}, nil
	}

	if f.argCount == 0 {
		return invokeApplicativeWithNoArgs(env, f, self)
	}
	f.phase = callPhaseArg
	f.argNo = 0
	return continueToArg(env, f, self, t, 0)
}

func continueToArg(env Env, f *Frame, self heap.Ref, t *syntax.Tree, i int) (outcome, error) {
	pos, err := t.Arg(f.node, i)
	if err != nil {
		return outcome{}, err
	}
	child, err := NewEntry(env, selfBox(self), f.scope, f.tree, pos)
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: child}, nil
}

func resolveCallExprArg(env Env, f *Frame, self heap.Ref, res Result) (outcome, error) {
	if isExceptionOrError(res) {
		return outcome{kind: outcomeDone, result: res}, nil
	}
	if res.Kind == ResultVoid {
		r, err := raisef(env, selfBox(self), "void value used in argument position")
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: r}, nil
	}
	head, err := pushOperand(env.Ctx, f.operandHead, res.Value)
	if err != nil {
		return outcome{}, err
	}
	f.operandHead = value.FromPointer(head)
	f.argNo++
	if f.argNo == f.argCount {
		return invokeApplicativeFromOperands(env, f, self)
	}
	t, err := loadTree(env, f.tree)
	if err != nil {
		return outcome{}, err
	}
	return continueToArg(env, f, self, t, f.argNo)
}

func invokeApplicativeWithNoArgs(env Env, f *Frame, self heap.Ref) (outcome, error) {
	arrRef, err := newBoxArray(env.Ctx, nil)
	if err != nil {
		return outcome{}, err
	}
	return invokeApplicative(env, f, self, arrRef)
}

func invokeApplicativeFromOperands(env Env, f *Frame, self heap.Ref) (outcome, error) {
	items, err := flattenOperands(env.heap(), f.operandHead)
	if err != nil {
		return outcome{}, err
	}
	arrRef, err := newBoxArray(env.Ctx, items)
	if err != nil {
		return outcome{}, err
	}
	return invokeApplicative(env, f, self, arrRef)
}

func invokeApplicative(env Env, f *Frame, self heap.Ref, argsRef heap.Ref) (outcome, error) {
	f.phase = callPhaseDone
	child, err := NewInvokeApplicative(env, selfBox(self), f.callee, value.FromPointer(argsRef))
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: child}, nil
}
