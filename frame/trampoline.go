package frame

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/value"
)

// outcomeKind discriminates what a Step or Resolve call produced: either
// push a new child frame and make it current (outcomeContinue), or this
// frame has settled on a Result and the driver should hand that Result to
// this frame's parent via Resolve (outcomeDone). Step returns either
// "Error" or "Continue(nextFrame)", but a frame can also settle by other
// means; outcome unifies both into one value the driver loop in Run
// switches on, the same way function.NativeResult unifies a native call's
// two possible shapes.
type outcomeKind uint8

const (
	outcomeContinue outcomeKind = iota
	outcomeDone
)

type outcome struct {
	kind   outcomeKind
	next   heap.Ref // outcomeContinue: the child frame to make current
	result Result   // outcomeDone: the result to resolve this frame's parent with
}

// stepFrame dispatches Step to the Kind-specific implementation (this module: each frame kind "defines its own Step").
func stepFrame(env Env, ref heap.Ref) (outcome, error) {
	f, ok := resolve(env.heap(), ref)
	if !ok {
		return outcome{}, ErrMalformedFrame
	}
	switch f.kind {
	case KindTerminal:
		return stepTerminal(f)
	case KindEntry:
		return stepEntry(env, f, ref)
	case KindSyntaxNameLookup:
		return stepSyntaxNameLookup(env, f, ref)
	case KindInvokeSyntax:
		return stepInvokeSyntax(env, f, ref)
	case KindFile, KindBlock:
		return stepSequence(env, f, ref)
	case KindVar:
		return stepVar(env, f, ref)
	case KindCallExpr:
		return stepCallExpr(env, f, ref)
	case KindInvokeApplicative:
		return stepInvokeApplicative(env, f, ref)
	case KindInvokeOperative:
		return stepInvokeOperative(env, f, ref)
	case KindNativeCallResume:
		return stepNativeCallResume(env, f, ref)
	default:
		return outcome{}, ErrMalformedFrame
	}
}

// resolveFrame dispatches Resolve to the Kind-specific implementation
// (this module: each frame kind "defines its own Resolve, given a child's
// result").
func resolveFrame(env Env, ref heap.Ref, res Result) (outcome, error) {
	f, ok := resolve(env.heap(), ref)
	if !ok {
		return outcome{}, ErrMalformedFrame
	}
	switch f.kind {
	case KindTerminal:
		return resolveTerminal(f, res)
	case KindEntry:
		return resolveEntry(env, f, ref, res)
	case KindSyntaxNameLookup:
		return resolveSyntaxNameLookup(f, res)
	case KindInvokeSyntax:
		return resolveInvokeSyntax(f, res)
	case KindFile, KindBlock:
		return resolveSequence(env, f, ref, res)
	case KindVar:
		return resolveVar(env, f, ref, res)
	case KindCallExpr:
		return resolveCallExpr(env, f, ref, res)
	case KindInvokeApplicative:
		return resolveInvokeApplicative(f, res)
	case KindInvokeOperative:
		return resolveInvokeOperative(f, res)
	case KindNativeCallResume:
		return resolveNativeCallResume(f, res)
	default:
		return outcome{}, ErrMalformedFrame
	}
}

// Run drives a single top-level evaluation of tree's node rootNode in
// scope to completion: it allocates the Terminal root and an
// Entry frame over (scope, tree, rootNode) as Terminal's child, then
// alternates Step/Resolve until a frame with no parent settles — which,
// by construction, is only ever Terminal.
//
// Each iteration steps the current frame; if that yields Continue, the
// child becomes current and the loop repeats. If it yields a settled
// Result, the driver locates the stepped frame's parent and calls
// Resolve on it instead — bubbling upward through as many ancestors as
// settle in a row — until either an ancestor's Resolve itself yields
// Continue (a new current frame to step) or the walk reaches a frame
// with no parent, at which point that Result is the overall outcome.
func Run(env Env, scope, tree value.Box, rootNode int) (Result, error) {
	h := env.heap()

	termRef, err := NewTerminal(env)
	if err != nil {
		return Result{}, err
	}
	rootRef, err := NewEntry(env, selfBox(termRef), scope, tree, rootNode)
	if err != nil {
		return Result{}, err
	}

	current := rootRef
	for {
		out, err := stepFrame(env, current)
		if err != nil {
			return Result{}, err
		}
		for out.kind == outcomeDone {
			parentRef, ok := parentOf(h, current)
			if !ok {
				return out.result, nil
			}
			out, err = resolveFrame(env, parentRef, out.result)
			if err != nil {
				return Result{}, err
			}
			current = parentRef
		}
		current = out.next
	}
}
