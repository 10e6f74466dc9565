package propdict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/strtab"
	"github.com/wisplang/wisp/value"
)

func newTestDict(t *testing.T) (*heap.Heap, heap.AllocContext, heap.Ref) {
	t.Helper()
	h := heap.NewHeap()
	ctx := h.Context(heap.GenHatchery)
	ref, err := propdict.New(ctx, 0)
	require.NoError(t, err)
	return h, ctx, ref
}

func internKey(t *testing.T, ctx heap.AllocContext, s string) value.Box {
	t.Helper()
	ref, err := strtab.New(ctx, s)
	require.NoError(t, err)
	return value.FromPointer(ref)
}

func TestDictDefineThenGet(t *testing.T) {
	h, ctx, ref := newTestDict(t)
	k := internKey(t, ctx, "x")
	box, _ := value.FromInt64(42)

	newRef, err := propdict.Define(ctx, ref, k, propdict.Descriptor{Kind: propdict.KindValue, Value: box, Writable: true})
	require.NoError(t, err)

	got, ok := propdict.Get(h, newRef, k)
	require.True(t, ok)
	require.Equal(t, box, got.Value)
}

func TestDictRedefineOverwrites(t *testing.T) {
	h, ctx, ref := newTestDict(t)
	k := internKey(t, ctx, "x")
	v1, _ := value.FromInt64(1)
	v2, _ := value.FromInt64(2)

	ref, err := propdict.Define(ctx, ref, k, propdict.Descriptor{Kind: propdict.KindValue, Value: v1, Writable: true})
	require.NoError(t, err)
	ref, err = propdict.Define(ctx, ref, k, propdict.Descriptor{Kind: propdict.KindValue, Value: v2, Writable: true})
	require.NoError(t, err)

	got, ok := propdict.Get(h, ref, k)
	require.True(t, ok)
	require.Equal(t, v2, got.Value)
	require.Equal(t, 1, propdict.Len(h, ref))
}

func TestDictNotFoundForUnbound(t *testing.T) {
	h, ctx, ref := newTestDict(t)
	k := internKey(t, ctx, "missing")
	_, ok := propdict.Get(h, ref, k)
	require.False(t, ok)
}

func TestDictDeleteThenRedefine(t *testing.T) {
	h, ctx, ref := newTestDict(t)
	k := internKey(t, ctx, "x")
	v1, _ := value.FromInt64(1)

	ref, err := propdict.Define(ctx, ref, k, propdict.Descriptor{Kind: propdict.KindValue, Value: v1})
	require.NoError(t, err)
	require.True(t, propdict.Delete(h, ref, k))
	_, ok := propdict.Get(h, ref, k)
	require.False(t, ok)

	v2, _ := value.FromInt64(2)
	ref, err = propdict.Define(ctx, ref, k, propdict.Descriptor{Kind: propdict.KindValue, Value: v2})
	require.NoError(t, err)
	got, ok := propdict.Get(h, ref, k)
	require.True(t, ok)
	require.Equal(t, v2, got.Value)
}

func TestDictEnlargesPastFillRatio(t *testing.T) {
	h, ctx, ref := newTestDict(t)
	for i := 0; i < 50; i++ {
		k := internKey(t, ctx, string(rune('a'+i%26))+string(rune('0'+i/26)))
		v, _ := value.FromInt64(int64(i))
		var err error
		ref, err = propdict.Define(ctx, ref, k, propdict.Descriptor{Kind: propdict.KindValue, Value: v})
		require.NoError(t, err)
	}
	require.Equal(t, 50, propdict.Len(h, ref))
}
