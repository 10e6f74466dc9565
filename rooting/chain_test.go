package rooting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/value"
)

func TestStackRootLinkAndScan(t *testing.T) {
	c := NewChain()
	ib, _ := value.FromInt64(5)
	r := c.NewStackRoot(ib)
	assert.Equal(t, 1, c.Depth())

	var seen []value.Box
	c.Scan(func(b value.Box) { seen = append(seen, b) })
	assert.Equal(t, []value.Box{ib}, seen)

	r.Set(value.FromBool(true))
	assert.Equal(t, value.FromBool(true), r.Get())

	r.Release()
	assert.Equal(t, 0, c.Depth())
}

func TestStackRootLIFODiscipline(t *testing.T) {
	c := NewChain()
	r1 := c.NewStackRoot(value.Undefined)
	r2 := c.NewStackRoot(value.Undefined)
	assert.Equal(t, 2, c.Depth())

	assert.Panics(t, func() { r1.Release() }, "releasing out of LIFO order must panic")

	r2.Release()
	r1.Release()
	assert.Equal(t, 0, c.Depth())
}

func TestArrayHandleRootsAllElements(t *testing.T) {
	c := NewChain()
	a, b := value.FromBool(true), value.FromBool(false)
	arr := NewArrayHandle([]value.Box{a, b})

	release := c.Root(arr)
	assert.Equal(t, 2, c.Depth())

	var seen []value.Box
	c.Scan(func(bx value.Box) { seen = append(seen, bx) })
	assert.Equal(t, []value.Box{a, b}, seen)

	release()
	assert.Equal(t, 0, c.Depth())
}

func TestChainUpdateRewritesRoots(t *testing.T) {
	c := NewChain()
	ib, _ := value.FromInt64(1)
	r := c.NewStackRoot(ib)
	defer r.Release()

	replacement, _ := value.FromInt64(99)
	c.Update(func(value.Box) value.Box { return replacement })
	assert.Equal(t, replacement, r.Get())
}

func TestMutableHandlePlainSlot(t *testing.T) {
	var slot value.Box = value.Undefined
	mh := NewMutableHandle(&slot)
	mh.Set(value.FromBool(true))
	assert.Equal(t, value.FromBool(true), mh.Get())
}

func TestMutableHandleHeapFieldMarksCard(t *testing.T) {
	h := heap.NewHeap()
	ctx := h.Context(heap.GenHatchery)

	var slot value.Box
	ref, err := ctx.AllocHead(format.TagPlainObject, 0, func(ref heap.Ref) heap.HeapObject {
		return &struct{ heap.Base }{Base: heap.NewBase(nil, ref, format.TagPlainObject, 0)}
	})
	require.NoError(t, err)

	slab, ok := h.SlabOf(ref)
	require.True(t, ok)
	assert.False(t, slab.IsCardDirty(ref.Card))

	mh := NewHeapFieldHandle(h, ref, &slot)
	mh.Set(value.FromBool(true))
	assert.True(t, slab.IsCardDirty(ref.Card))
	assert.Equal(t, value.FromBool(true), slot)
}

func TestArrayHandleHeapElementMarksCard(t *testing.T) {
	h := heap.NewHeap()
	ctx := h.Context(heap.GenHatchery)
	fields := make([]value.Box, 2)

	ref, err := ctx.AllocHead(format.TagPlainObject, 0, func(ref heap.Ref) heap.HeapObject {
		return &struct{ heap.Base }{Base: heap.NewBase(nil, ref, format.TagPlainObject, 0)}
	})
	require.NoError(t, err)

	slab, ok := h.SlabOf(ref)
	require.True(t, ok)

	ah := NewHeapArrayHandle(h, ref, fields)
	ah.Set(1, value.FromBool(true))
	assert.True(t, slab.IsCardDirty(ref.Card))
	assert.Equal(t, value.FromBool(true), ah.Get(1))
}
