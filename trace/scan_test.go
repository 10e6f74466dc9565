package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/value"
)

// fakeTraceable is a minimal Traceable heap object for testing the
// dispatch and walk logic without depending on the object package.
type fakeTraceable struct {
	heap.Base
	fields []value.Box
}

func (f *fakeTraceable) Trace(v Visitor) {
	for i := range f.fields {
		f.fields[i] = v(f.fields[i])
	}
}

func newFake(h *heap.Heap, gen heap.Generation, fields ...value.Box) *fakeTraceable {
	ctx := h.Context(gen)
	var obj *fakeTraceable
	_, err := ctx.AllocHead(format.TagPlainObject, 0, func(ref heap.Ref) heap.HeapObject {
		obj = &fakeTraceable{Base: heap.NewBase(nil, ref, format.TagPlainObject, 0), fields: fields}
		return obj
	})
	if err != nil {
		panic(err)
	}
	return obj
}

func TestScanVisitsEachField(t *testing.T) {
	h := heap.NewHeap()
	child := newFake(h, heap.GenHatchery)
	childBox := value.FromPointer(child.SelfRef())
	intBox, _ := value.FromInt64(7)

	parent := newFake(h, heap.GenHatchery, childBox, intBox)

	var seen []value.Box
	Scan(parent, func(b value.Box) { seen = append(seen, b) })
	assert.Equal(t, []value.Box{childBox, intBox}, seen)
}

func TestScanSkipsLeafFormats(t *testing.T) {
	h := heap.NewHeap()
	ctx := h.Context(heap.GenHatchery)
	ref, _, err := ctx.AllocTail(format.TagString, 4)
	require.NoError(t, err)
	slab, ok := h.SlabOf(ref)
	require.True(t, ok)
	hdr, err := slab.TailHeader(ref)
	require.NoError(t, err)

	leafObj := &leafStub{hdr: hdr, ref: ref}
	called := false
	Scan(leafObj, func(value.Box) { called = true })
	assert.False(t, called)
}

type leafStub struct {
	hdr format.Header
	ref heap.Ref
}

func (l *leafStub) Header() format.Header { return l.hdr }
func (l *leafStub) SelfRef() heap.Ref      { return l.ref }

func TestUpdateRewritesFields(t *testing.T) {
	h := heap.NewHeap()
	child := newFake(h, heap.GenHatchery)
	parent := newFake(h, heap.GenHatchery, value.FromPointer(child.SelfRef()))

	newRef := heap.Ref{Gen: heap.GenTenured, Slab: 9, Card: 9}
	Update(parent, func(value.Box) value.Box { return value.FromPointer(newRef) })

	got, ok := value.Pointer(parent.fields[0])
	require.True(t, ok)
	assert.Equal(t, newRef, got)
}

func TestWalkerVisitsReachableGraphOnce(t *testing.T) {
	h := heap.NewHeap()
	leaf := newFake(h, heap.GenHatchery)
	leafBox := value.FromPointer(leaf.SelfRef())
	mid := newFake(h, heap.GenHatchery, leafBox, leafBox) // two edges to the same leaf
	root := newFake(h, heap.GenHatchery, value.FromPointer(mid.SelfRef()))

	w := NewWalker(h)
	var visited []heap.Ref
	w.Walk([]value.Box{value.FromPointer(root.SelfRef())}, func(obj heap.HeapObject) {
		visited = append(visited, obj.SelfRef())
	})

	assert.Len(t, visited, 3, "root, mid, and leaf each visited exactly once")
}

func TestWalkerSkipsUnresolvableRoots(t *testing.T) {
	h := heap.NewHeap()
	w := NewWalker(h)
	var calls int
	intBox, _ := value.FromInt64(1)
	w.Walk([]value.Box{intBox, value.Undefined}, func(heap.HeapObject) { calls++ })
	assert.Zero(t, calls)
}
