package frame

import (
	"errors"

	"github.com/wisplang/wisp/except"
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/value"
)

// ErrMalformedFrame is returned when a frame's own fields (tree/node
// references set up by its constructor) don't decode the way the Kind
// that created it expects — an internal invariant violation, not a user
// exception.
var ErrMalformedFrame = errors.New("frame: malformed frame state")

// raisef allocates an internal exception from a printf-style
// template and boxed arguments, wrapping it as an ResultException outcome
// thrown by throwingFrame.
func raisef(env Env, throwingFrame value.Box, messageFmt string, args ...value.Box) (Result, error) {
	ref, err := except.NewInternal(env.Ctx, messageFmt, args...)
	if err != nil {
		return Result{}, err
	}
	return exceptionResult(throwingFrame, value.FromPointer(ref)), nil
}

// raiseNameLookupFailed allocates a name-lookup-failed exception.
func raiseNameLookupFailed(env Env, throwingFrame, receiver, name value.Box) (Result, error) {
	ref, err := except.NewNameLookupFailed(env.Ctx, receiver, name)
	if err != nil {
		return Result{}, err
	}
	return exceptionResult(throwingFrame, value.FromPointer(ref)), nil
}

// raiseNotOperative allocates a function-not-operative exception.
func raiseNotOperative(env Env, throwingFrame, fn value.Box) (Result, error) {
	ref, err := except.NewNotOperative(env.Ctx, fn)
	if err != nil {
		return Result{}, err
	}
	return exceptionResult(throwingFrame, value.FromPointer(ref)), nil
}

// isExceptionOrError reports whether res should propagate past the
// current frame's own state-machine logic untouched (this edge
// case policy: "an Exception or Error result always propagates past the
// current frame's state-machine logic").
func isExceptionOrError(res Result) bool {
	return res.Kind == ResultError || res.Kind == ResultException
}

func selfBox(ref heap.Ref) value.Box { return value.FromPointer(ref) }
