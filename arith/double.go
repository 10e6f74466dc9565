package arith

import (
	"math"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/buf"
	"github.com/wisplang/wisp/internal/format"
)

// doublePayloadLen is the byte width of a boxed Double's tail payload: one
// little-endian float64.
const doublePayloadLen = 8

// NewDouble allocates a boxed float64 (format.TagDouble), the heap leaf
// format that carries every arithmetic result which doesn't fit value.Box's
// inline Integer encoding (this overflow-promotion path). Grounded
// on strtab.New's tail-allocation shape: a leaf format with no pointer
// fields, addressed purely by Ref.
func NewDouble(ctx heap.AllocContext, f float64) (heap.Ref, error) {
	ref, payload, err := ctx.AllocTail(format.TagDouble, doublePayloadLen)
	if err != nil {
		return heap.NilRef, err
	}
	buf.PutU64LE(payload, math.Float64bits(f))
	return ref, nil
}

// ErrNotDouble is returned when ref does not name a format.TagDouble heap
// object (e.g. a caller passed a String ref by mistake).
var ErrNotDouble = &notDoubleError{}

type notDoubleError struct{}

func (*notDoubleError) Error() string { return "arith: ref is not a boxed Double" }

// ReadDouble decodes a boxed Double back into a float64.
func ReadDouble(h *heap.Heap, ref heap.Ref) (float64, error) {
	slab, ok := h.SlabOf(ref)
	if !ok {
		return 0, heap.ErrBadRef
	}
	hdr, err := slab.TailHeader(ref)
	if err != nil {
		return 0, err
	}
	if hdr.Tag != format.TagDouble {
		return 0, ErrNotDouble
	}
	payload, err := slab.TailPayload(ref)
	if err != nil {
		return 0, err
	}
	if len(payload) < doublePayloadLen {
		return 0, heap.ErrBadRef
	}
	return math.Float64frombits(buf.U64LE(payload)), nil
}
