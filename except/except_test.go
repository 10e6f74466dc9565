package except_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/except"
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/strtab"
	"github.com/wisplang/wisp/value"
)

func newCtx(t *testing.T) heap.AllocContext {
	t.Helper()
	h := heap.NewHeap()
	return h.Context(heap.GenHatchery)
}

func TestInternalFormatsTemplateWithArgs(t *testing.T) {
	ctx := newCtx(t)
	one, ok := value.FromInt64(1)
	require.True(t, ok)

	ref, err := except.NewInternal(ctx, "expected %v arguments, got %v", one, value.FromBool(false))
	require.NoError(t, err)

	msg := except.Format(ctx.Heap(), ref, 256)
	require.Equal(t, "expected 1 arguments, got false", msg)
}

func TestInternalFormatTruncatesToMaxLen(t *testing.T) {
	ctx := newCtx(t)
	ref, err := except.NewInternal(ctx, "this message is long")
	require.NoError(t, err)

	msg := except.Format(ctx.Heap(), ref, 4)
	require.Equal(t, "this", msg)
}

func TestNameLookupFailedMentionsName(t *testing.T) {
	ctx := newCtx(t)
	nameRef, err := strtab.New(ctx, "f")
	require.NoError(t, err)
	nameBox := value.FromPointer(nameRef)

	objRef, err := strtab.New(ctx, "dummy-receiver")
	require.NoError(t, err)

	excRef, err := except.NewNameLookupFailed(ctx, value.FromPointer(objRef), nameBox)
	require.NoError(t, err)

	msg := except.Format(ctx.Heap(), excRef, 256)
	require.Contains(t, msg, "f")
	require.Contains(t, msg, "not bound")
	require.Equal(t, nameBox, except.Name(ctx.Heap(), excRef))
	require.Equal(t, value.FromPointer(objRef), except.Object(ctx.Heap(), excRef))
}

func TestNotOperativeMentionsFunction(t *testing.T) {
	ctx := newCtx(t)
	fnNameRef, err := strtab.New(ctx, "my-fn")
	require.NoError(t, err)
	fnBox := value.FromPointer(fnNameRef)

	excRef, err := except.NewNotOperative(ctx, fnBox)
	require.NoError(t, err)

	msg := except.Format(ctx.Heap(), excRef, 256)
	require.Contains(t, msg, "not operative")
	require.Equal(t, fnBox, except.Function(ctx.Heap(), excRef))
}

func TestFormatOnIntegerAndBooleanArgs(t *testing.T) {
	ctx := newCtx(t)
	iv, _ := value.FromInt64(42)
	ref, err := except.NewInternal(ctx, "%v and %v and %v", iv, value.FromBool(true), value.Undefined)
	require.NoError(t, err)

	msg := except.Format(ctx.Heap(), ref, 256)
	require.Equal(t, "42 and true and undefined", msg)
}
