package frame

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/value"
)

// NewNativeCallResume allocates the bridge frame this module describes as
// bringing "a native call through a recursive interpreter step back to
// completion": it steps scope/tree/node (a function body, ordinarily) as
// a fresh Entry frame, then runs resume over whatever that Entry
// eventually produces. Grounded on hive/merge/session.go's resumable
// session object, generalized from "thread repair state across repeated
// merge-apply calls" to "thread a Go closure across one nested
// trampoline descent."
func NewNativeCallResume(env Env, parent, scope, tree value.Box, node int, resume resumeFn) (heap.Ref, error) {
	const size = 56
	return alloc(env, KindNativeCallResume, size, func(heap.Ref) *Frame {
		return &Frame{parent: parent, scope: scope, tree: tree, node: node, resume: resume}
	})
}

func stepNativeCallResume(env Env, f *Frame, self heap.Ref) (outcome, error) {
	child, err := NewEntry(env, selfBox(self), f.scope, f.tree, f.node)
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue, next: child}, nil
}

func resolveNativeCallResume(f *Frame, res Result) (outcome, error) {
	return outcome{kind: outcomeDone, result: f.resume(res)}, nil
}
