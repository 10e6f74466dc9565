package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/internal/format"
)

func TestAllocContextHeadAndTail(t *testing.T) {
	h := NewHeap()
	ctx := h.Context(GenHatchery)

	var obj *fakeObj
	ref, err := ctx.AllocHead(format.TagPlainObject, 16, func(ref Ref) HeapObject {
		obj = &fakeObj{Base: NewBase(nil, ref, format.TagPlainObject, 16)}
		return obj
	})
	require.NoError(t, err)

	resolved, ok := h.Resolve(ref)
	require.True(t, ok)
	assert.Same(t, obj, resolved)

	tref, payload, err := ctx.AllocTail(format.TagString, 4)
	require.NoError(t, err)
	copy(payload, "wisp")
	slab, ok := h.SlabOf(tref)
	require.True(t, ok)
	got, err := slab.TailPayload(tref)
	require.NoError(t, err)
	assert.Equal(t, "wisp", string(got))
}

func TestTenuredFreeListReuse(t *testing.T) {
	h := NewHeap()
	ctx := h.Context(GenTenured)

	ref, payload, err := ctx.AllocTail(format.TagString, 16)
	require.NoError(t, err)
	copy(payload, []byte("0123456789abcdef"))

	require.NoError(t, ctx.Free(ref))

	ref2, payload2, err := ctx.AllocTail(format.TagString, 8)
	require.NoError(t, err)
	assert.Equal(t, ref, ref2, "small allocation should reuse the freed slot")
	assert.Len(t, payload2, 8)
}

func TestHatcheryFreeIsNoop(t *testing.T) {
	h := NewHeap()
	ctx := h.Context(GenHatchery)
	ref, _, err := ctx.AllocTail(format.TagString, 8)
	require.NoError(t, err)
	assert.NoError(t, ctx.Free(ref))
}
