package frame

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/lookup"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/value"
)

// NewEntry allocates an Entry frame establishing scope as the evaluation
// scope for the syntax-tree fragment at node, as a child of parent.
func NewEntry(env Env, parent, scope, tree value.Box, node int) (heap.Ref, error) {
	const size = 64
	return alloc(env, KindEntry, size, func(heap.Ref) *Frame {
		return &Frame{parent: parent, scope: scope, tree: tree, node: node}
	})
}

// stepEntry evaluates node directly if it's one of the self-evaluating
// leaf kinds (syntax.Kind's doc: "Entry evaluates these directly, with no
// syntax-handler dispatch"), or kicks off the SyntaxNameLookup/
// InvokeSyntax dispatch sequence for a structural node.
func stepEntry(env Env, f *Frame, self heap.Ref) (outcome, error) {
	t, err := loadTree(env, f.tree)
	if err != nil {
		return outcome{}, err
	}
	kind := t.Kind(f.node)

	switch kind {
	case syntax.KindIntegerLiteral:
		iv, err := t.Int(f.node)
		if err != nil {
			return outcome{}, err
		}
		box, ok := value.FromInt64(iv)
		if !ok {
			return outcome{}, ErrMalformedFrame
		}
		return outcome{kind: outcomeDone, result: valueResult(box)}, nil

	case syntax.KindStringLiteral:
		s, err := t.Str(f.node)
		if err != nil {
			return outcome{}, err
		}
		ref, err := env.Strings.Intern(env.Ctx, s)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: valueResult(value.FromPointer(ref))}, nil

	case syntax.KindBooleanLiteral:
		bv, err := t.Bool(f.node)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeDone, result: valueResult(value.FromBool(bv))}, nil

	case syntax.KindUndefinedLiteral:
		return outcome{kind: outcomeDone, result: valueResult(value.Undefined)}, nil

	case syntax.KindIdentifierRef:
		name, err := t.Ident(f.node)
		if err != nil {
			return outcome{}, err
		}
		nameBox, err := internName(env, name)
		if err != nil {
			return outcome{}, err
		}
		lookupResult, desc, _, err := lookup.Run(env.Ctx, f.scope, nameBox)
		if err != nil {
			return outcome{}, err
		}
		switch lookupResult {
		case lookup.ResultNotFound:
			r, err := raiseNameLookupFailed(env, selfBox(self), f.scope, nameBox)
			if err != nil {
				return outcome{}, err
			}
			return outcome{kind: outcomeDone, result: r}, nil
		case lookup.ResultFound:
			// A method descriptor's payload is already a callable function
			// Box; identifier lookup exposes it the same way a value
			// descriptor's payload is exposed, since neither needs
			// rebinding to a receiver in this object model.
			v := desc.Value
			if desc.Kind == propdict.KindMethod {
				v = desc.Method
			}
			return outcome{kind: outcomeDone, result: valueResult(v)}, nil
		default:
			return outcome{}, ErrMalformedFrame
		}

	default:
		if !kind.IsStructural() {
			return outcome{}, ErrMalformedFrame
		}
		f.synKind = kind
		child, err := NewSyntaxNameLookup(env, selfBox(self), f.scope, kind)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeContinue, next: child}, nil
	}
}

// resolveEntry is reached twice for a structural node's dispatch
// (this module: Entry -> SyntaxNameLookup -> InvokeSyntax -> built-in
// frame) and once for everything else's children: the first time with
// the resolved handler function, building the InvokeSyntax child; the
// second time with the structural frame's own result, which Entry simply
// forwards as its own.
func resolveEntry(env Env, f *Frame, self heap.Ref, res Result) (outcome, error) {
	if isExceptionOrError(res) {
		return outcome{kind: outcomeDone, result: res}, nil
	}
	if !f.entryDispatched {
		f.entryDispatched = true
		child, err := NewInvokeSyntax(env, selfBox(self), f.scope, f.tree, f.node, res.Value)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: outcomeContinue, next: child}, nil
	}
	return outcome{kind: outcomeDone, result: res}, nil
}
