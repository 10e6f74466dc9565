package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/object"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/strtab"
	"github.com/wisplang/wisp/value"
)

func TestDefineOwnThenGetOwn(t *testing.T) {
	h := heap.NewHeap()
	ctx := h.Context(heap.GenHatchery)

	ref, err := object.NewPlainObject(ctx, nil)
	require.NoError(t, err)

	nameRef, err := strtab.New(ctx, "x")
	require.NoError(t, err)
	key := value.FromPointer(nameRef)
	v, _ := value.FromInt64(7)

	require.NoError(t, object.DefineOwn(ctx, ref, key, propdict.Descriptor{Kind: propdict.KindValue, Value: v, Writable: true}))

	got, ok := object.GetOwn(h, ref, key)
	require.True(t, ok)
	require.Equal(t, v, got.Value)
}

func TestDelegatesOrderPreserved(t *testing.T) {
	h := heap.NewHeap()
	ctx := h.Context(heap.GenHatchery)

	base1, err := object.NewPlainObject(ctx, nil)
	require.NoError(t, err)
	base2, err := object.NewPlainObject(ctx, nil)
	require.NoError(t, err)

	child, err := object.NewPlainObject(ctx, []value.Box{value.FromPointer(base1), value.FromPointer(base2)})
	require.NoError(t, err)

	delegates := object.Delegates(h, child)
	require.Len(t, delegates, 2)
	ref0, _ := value.Pointer(delegates[0])
	require.Equal(t, base1, ref0)
}
