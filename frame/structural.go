package frame

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/object"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/value"
)

// NewFile allocates a frame sequencing a File node's statements by index
//.
func NewFile(env Env, parent, scope, tree value.Box, node int) (heap.Ref, error) {
	const size = 56
	return alloc(env, KindFile, size, func(heap.Ref) *Frame {
		return &Frame{parent: parent, scope: scope, tree: tree, node: node, lastValue: value.Undefined}
	})
}

// NewBlock allocates a frame sequencing a Block node's statements by
// index, in its own freshly delegated scope (see buildStructuralFrame).
func NewBlock(env Env, parent, scope, tree value.Box, node int) (heap.Ref, error) {
	const size = 56
	return alloc(env, KindBlock, size, func(heap.Ref) *Frame {
		return &Frame{parent: parent, scope: scope, tree: tree, node: node, lastValue: value.Undefined}
	})
}

// stepSequence is shared by File and Block: both are "statement index i;
// initial i=0; terminal when i equals statement count".
func stepSequence(env Env, f *Frame, self heap.Ref) (outcome, error) {
	t, err := loadTree(env, f.tree)
	if err != nil {
		return outcome{}, err
	}
	f.stmtCount = t.StatementCount(f.node)
	if f.stmtCount == 0 {
		return outcome{kind: outcomeDone, result: voidResult()}, nil
	}
	return continueToStatement(env, f, self, t, 0)
}

func continueToStatement(env Env, f *Frame, self heap.Ref, t *syntax.Tree, i int) (outcome, error) {
	pos, err := t.Statement(f.node, i)
	if err != nil {
		return outcome{}, err
	}
	child, err := NewEntry(env, selfBox(self), f.scope, f.tree, pos)
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: child}, nil
}

// resolveSequence advances File/Block's statement index on a Value/Void
// child result (discarding every intermediate value except the last),
// and forwards Exception/Error immediately (this edge-case
// policy).
func resolveSequence(env Env, f *Frame, self heap.Ref, res Result) (outcome, error) {
	if isExceptionOrError(res) {
		return outcome{kind: outcomeDone, result: res}, nil
	}
	f.lastVoid = res.Kind == ResultVoid
	f.lastValue = res.Value
	f.stmtIndex++
	if f.stmtIndex == f.stmtCount {
		if f.lastVoid {
			return outcome{kind: outcomeDone, result: voidResult()}, nil
		}
		return outcome{kind: outcomeDone, result: valueResult(f.lastValue)}, nil
	}
	t, err := loadTree(env, f.tree)
	if err != nil {
		return outcome{}, err
	}
	return continueToStatement(env, f, self, t, f.stmtIndex)
}

// NewVar allocates a frame sequencing a VarStmt node's bindings (this module).
func NewVar(env Env, parent, scope, tree value.Box, node int) (heap.Ref, error) {
	const size = 56
	return alloc(env, KindVar, size, func(heap.Ref) *Frame {
		return &Frame{parent: parent, scope: scope, tree: tree, node: node, pendingName: value.Undefined}
	})
}

func stepVar(env Env, f *Frame, self heap.Ref) (outcome, error) {
	t, err := loadTree(env, f.tree)
	if err != nil {
		return outcome{}, err
	}
	f.bindingCount = t.BindingCount(f.node)
	if f.bindingCount == 0 {
		return outcome{kind: outcomeDone, result: voidResult()}, nil
	}
	return continueToBinding(env, f, self, t, 0)
}

func continueToBinding(env Env, f *Frame, self heap.Ref, t *syntax.Tree, i int) (outcome, error) {
	name, valuePos, err := t.Binding(f.node, i)
	if err != nil {
		return outcome{}, err
	}
	nameBox, err := internName(env, name)
	if err != nil {
		return outcome{}, err
	}
	f.pendingName = nameBox
	child, err := NewEntry(env, selfBox(self), f.scope, f.tree, valuePos)
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: child}, nil
}

func resolveVar(env Env, f *Frame, self heap.Ref, res Result) (outcome, error) {
	if isExceptionOrError(res) {
		return outcome{kind: outcomeDone, result: res}, nil
	}
	if res.Kind == ResultVoid {
		r, err := raisef(env, selfBox(self), "cannot bind %v to a void expression", f.pendingName)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: r}, nil
	}
	scopeRef := mustRef(f.scope)
	desc := propdict.Descriptor{Kind: propdict.KindValue, Value: res.Value, Writable: true}
	if err := object.DefineOwn(env.Ctx, scopeRef, f.pendingName, desc); err != nil {
		return outcome{}, err
	}
	f.bindingIndex++
	if f.bindingIndex == f.bindingCount {
		return outcome{kind: outcomeDone, result: voidResult()}, nil
	}
	t, err := loadTree(env, f.tree)
	if err != nil {
		return outcome{}, err
	}
	return continueToBinding(env, f, self, t, f.bindingIndex)
}
