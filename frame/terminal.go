package frame

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/value"
)

// NewTerminal allocates the unique root frame of an evaluation (this module's "Terminal — accumulates the final evaluation result; null
// parent").
func NewTerminal(env Env) (heap.Ref, error) {
	const size = 48
	return alloc(env, KindTerminal, size, func(heap.Ref) *Frame {
		return &Frame{parent: value.Undefined}
	})
}

// stepTerminal is never reached in ordinary evaluation (Terminal never
// becomes the trampoline's current frame; it only ever receives a
// Resolve once its sole child, the top-level Entry frame, finishes). It
// is still implemented, defensively, by returning whatever result it has
// already accumulated.
func stepTerminal(f *Frame) (outcome, error) {
	return outcome{kind: outcomeDone, result: f.termResult}, nil
}

// resolveTerminal stores the finished evaluation's outcome (this module:
// "accumulates the final evaluation result") and hands it back to the
// driver, which finds Terminal has no parent and treats this as the
// overall Run result.
func resolveTerminal(f *Frame, res Result) (outcome, error) {
	f.termResult = res
	return outcome{kind: outcomeDone, result: res}, nil
}
