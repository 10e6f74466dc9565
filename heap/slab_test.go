package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/internal/format"
)

type fakeObj struct {
	Base
	val int
}

func TestSlabHeadAllocAndResolve(t *testing.T) {
	s, err := newSlab(1, GenHatchery, 4)
	require.NoError(t, err)

	var installed *fakeObj
	ref, err := s.AllocHead(format.TagPlainObject, func(ref Ref) HeapObject {
		installed = &fakeObj{Base: newBase(s, ref, format.TagPlainObject, 16), val: 42}
		return installed
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), ref.Card)

	got, ok := s.Head(ref)
	require.True(t, ok)
	assert.Same(t, installed, got)
	assert.Equal(t, format.TagPlainObject, got.Header().Tag)
}

func TestSlabTailAllocRoundTrip(t *testing.T) {
	s, err := newSlab(1, GenHatchery, 4)
	require.NoError(t, err)

	ref, payload, err := s.AllocTail(format.TagString, 10)
	require.NoError(t, err)
	copy(payload, []byte("helloworld"))

	got, err := s.TailPayload(ref)
	require.NoError(t, err)
	assert.Equal(t, "helloworld", string(got))

	hdr, err := s.TailHeader(ref)
	require.NoError(t, err)
	assert.Equal(t, format.TagString, hdr.Tag)
}

func TestSlabHeadAndTailShareCardBudgetAndCollide(t *testing.T) {
	s, err := newSlab(1, GenHatchery, 1) // 1 card * CardSize bytes total, tiny
	require.NoError(t, err)

	// Exhaust the tail with one big allocation leaving no room for head.
	_, _, err = s.AllocTail(format.TagString, format.CardSize-format.HeaderSize)
	require.NoError(t, err)

	_, err = s.AllocHead(format.TagPlainObject, func(ref Ref) HeapObject {
		return &fakeObj{Base: newBase(s, ref, format.TagPlainObject, 8)}
	})
	assert.ErrorIs(t, err, ErrNoSpace)
}

func TestSlabDirtyBitmap(t *testing.T) {
	s, err := newSlab(1, GenHatchery, 4)
	require.NoError(t, err)

	assert.False(t, s.IsCardDirty(2))
	s.MarkCard(2)
	assert.True(t, s.IsCardDirty(2))
	s.ClearDirty()
	assert.False(t, s.IsCardDirty(2))
}

func TestSlabListGrowsOnDemand(t *testing.T) {
	list := NewSlabList(GenHatchery, 1)
	assert.Empty(t, list.Slabs())

	first, err := list.Current()
	require.NoError(t, err)
	require.Len(t, list.Slabs(), 1)

	// Exhaust the first slab's tail so the next AllocContext.AllocTail call
	// has to grow a second one.
	_, _, err = first.AllocTail(format.TagString, format.CardSize-format.HeaderSize)
	require.NoError(t, err)

	h := &Heap{hatchery: list, localHeap: NewSlabList(GenLocalHeap, 1), tenured: NewSlabList(GenTenured, 1), freelist: newTenuredFreeList()}
	ctx := h.Context(GenHatchery)
	ref, _, err := ctx.AllocTail(format.TagString, 8)
	require.NoError(t, err)
	assert.Len(t, list.Slabs(), 2)
	assert.Equal(t, uint32(1), ref.Slab)
}

func TestRefPackRoundTrip(t *testing.T) {
	r := Ref{Gen: GenTenured, Slab: 123, Card: 456789}
	got := UnpackRef(r.Pack())
	assert.Equal(t, r, got)
}

func TestNilRef(t *testing.T) {
	assert.True(t, NilRef.IsNil())
	assert.False(t, (Ref{Gen: GenHatchery}).IsNil())
}
