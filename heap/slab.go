package heap

import (
	"fmt"

	"github.com/wisplang/wisp/internal/format"
)

// defaultSlabCards is the default card capacity of a newly grown slab,
// chosen so the tail byte buffer (cards * format.CardSize) comfortably
// holds a few hundred small strings before the slab list must grow again.
// Mirrors HBIN default of covering "typical" content per
// growth (hive/alloc/bump.go's GrowByPages convention).
const defaultSlabCards = 512 // 512 * 512B = 256KiB tail budget per slab

// Slab is a contiguous card-addressable allocation region with two
// concurrent bump allocators sharing one card budget: head (object-table
// slots for traced heap types) grows from card 0 upward, tail (raw bytes
// for leaf formats) grows from the top card downward. See doc.go for why
// head and tail allocations have different underlying storage.
type Slab struct {
	id   uint32
	gen  Generation
	cap  uint32 // total cards available to this slab

	headNext uint32       // next free card for head allocations
	objects  []HeapObject // objects[i] lives at card i

	tailNext uint32 // next free card counted DOWN from cap (i.e. cards [tailNext, cap) are used)
	bytes    []byte // backing store for tail byte allocations, sized cap*CardSize

	dirty cardBitmap // per-card dirty tracking for the write barrier
}

// newSlab allocates a fresh slab with room for `cards` cards. The byte
// backing store is obtained via newSlabBytes, which is platform-specific
// (see slab_unix.go / slab_other.go): large slabs are mmap-backed so the OS
// can demand-page them instead of the allocation living entirely on Go's
// own GC heap up front.
func newSlab(id uint32, gen Generation, cards uint32) (*Slab, error) {
	if cards == 0 {
		cards = defaultSlabCards
	}
	backing, err := newSlabBytes(int(cards) * format.CardSize)
	if err != nil {
		return nil, fmt.Errorf("heap: %w: %v", ErrGrowFail, err)
	}
	return &Slab{
		id:       id,
		gen:      gen,
		cap:      cards,
		tailNext: cards,
		bytes:    backing,
		dirty:    newCardBitmap(cards),
	}, nil
}

// cardsUsed reports how many cards are currently spoken for between the
// head and tail allocators.
func (s *Slab) cardsUsed() uint32 {
	return s.headNext + (s.cap - s.tailNext)
}

// HasRoomForHead reports whether one more head slot fits without
// colliding with the tail region.
func (s *Slab) HasRoomForHead() bool {
	return s.headNext < s.tailNext
}

// AllocHead reserves the next head slot and installs obj into it, after
// the caller has already populated obj's Base via newBase(s, ref, ...).
// Returns the ref the object was installed at.
func (s *Slab) AllocHead(tag format.Tag, install func(ref Ref) HeapObject) (Ref, error) {
	if !s.HasRoomForHead() {
		return NilRef, ErrNoSpace
	}
	ref := Ref{Gen: s.gen, Slab: s.id, Card: s.headNext}
	obj := install(ref)
	if int(ref.Card) != len(s.objects) {
		return NilRef, fmt.Errorf("heap: internal: head card/slot mismatch (%d != %d)", ref.Card, len(s.objects))
	}
	s.objects = append(s.objects, obj)
	s.headNext++
	return ref, nil
}

// Head returns the object installed at ref, or ok=false if ref doesn't
// name a live head slot in this slab.
func (s *Slab) Head(ref Ref) (HeapObject, bool) {
	if ref.Slab != s.id || ref.Gen != s.gen || ref.Card >= uint32(len(s.objects)) {
		return nil, false
	}
	obj := s.objects[ref.Card]
	return obj, obj != nil
}

// AllocTail reserves `need` bytes (rounded up to a card boundary) from the
// tail allocator and writes a format.Header at the front of the returned
// region, exactly mirroring cell-header-then-payload layout.
// Returns the ref and the payload slice (header already skipped).
func (s *Slab) AllocTail(tag format.Tag, payloadLen int) (Ref, []byte, error) {
	if payloadLen < 0 {
		return NilRef, nil, ErrNeedSmall
	}
	total := format.HeaderSize + format.Align8(payloadLen)
	needCards := uint32((total + format.CardSize - 1) / format.CardSize)
	if needCards == 0 {
		needCards = 1
	}
	if needCards > s.tailNext-s.headNext {
		return NilRef, nil, ErrNoSpace
	}
	startCard := s.tailNext - needCards
	off := int(startCard) * format.CardSize
	region := s.bytes[off : off+total]

	hdr := format.Header{Tag: tag, Card: startCard, PayloadLen: uint32(format.Align8(payloadLen))}
	if err := format.WriteHeader(region, hdr); err != nil {
		return NilRef, nil, err
	}

	s.tailNext = startCard
	ref := Ref{Gen: s.gen, Slab: s.id, Card: startCard}
	return ref, region[format.HeaderSize : format.HeaderSize+payloadLen], nil
}

// TailPayload returns the payload byte slice for a tail allocation
// previously returned by AllocTail, re-deriving it from the stored header.
func (s *Slab) TailPayload(ref Ref) ([]byte, error) {
	if ref.Slab != s.id || ref.Gen != s.gen {
		return nil, ErrBadRef
	}
	off := int(ref.Card) * format.CardSize
	if off < 0 || off+format.HeaderSize > len(s.bytes) {
		return nil, ErrBadRef
	}
	hdr, err := format.ReadHeader(s.bytes[off:])
	if err != nil {
		return nil, err
	}
	start := off + format.HeaderSize
	end := start + int(hdr.PayloadLen)
	if end > len(s.bytes) {
		return nil, ErrBadRef
	}
	return s.bytes[start:end], nil
}

// SetTailFlag flips small-flag bit i in a tail allocation's stored header,
// used by formats (e.g. strtab's String) whose small flags are only known
// once the content has been encoded, after AllocTail already wrote a
// zero-flags header.
func (s *Slab) SetTailFlag(ref Ref, i uint8, v bool) error {
	off := int(ref.Card) * format.CardSize
	if off < 0 || off+format.HeaderSize > len(s.bytes) {
		return ErrBadRef
	}
	hdr, err := format.ReadHeader(s.bytes[off:])
	if err != nil {
		return err
	}
	hdr = hdr.WithFlag(i, v)
	return format.WriteHeader(s.bytes[off:], hdr)
}

// TailHeader reads back the header of a tail allocation.
func (s *Slab) TailHeader(ref Ref) (format.Header, error) {
	off := int(ref.Card) * format.CardSize
	if off < 0 || off+format.HeaderSize > len(s.bytes) {
		return format.Header{}, ErrBadRef
	}
	return format.ReadHeader(s.bytes[off:])
}

// MarkCard marks card as dirty in the slab's write-barrier bitmap.
func (s *Slab) MarkCard(card uint32) {
	s.dirty.set(card)
}

// IsCardDirty reports whether card has been marked dirty since the last
// ClearDirty.
func (s *Slab) IsCardDirty(card uint32) bool {
	return s.dirty.isSet(card)
}

// ClearDirty resets the dirty bitmap, e.g. after a minor GC has rescanned
// all dirty cards for inter-generational pointers.
func (s *Slab) ClearDirty() {
	s.dirty.clear()
}

// Objects returns every live head-allocated object in the slab, in
// allocation order. Used by trace's root/heap scan.
func (s *Slab) Objects() []HeapObject {
	return s.objects
}
