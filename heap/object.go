package heap

import "github.com/wisplang/wisp/internal/format"

// HeapObject is implemented by every head-allocated (traced) managed type:
// plain objects, scopes, dictionaries, frames, the lookup machinery,
// functions, exceptions, continuations. Leaf/untraced formats (strings,
// the packed tree, source files) live in a Slab's byte-addressed tail and
// do not implement this interface directly — they are addressed purely by
// Ref and decoded on demand.
type HeapObject interface {
	// Header returns the object's self-describing header.
	Header() format.Header
	// SelfRef returns the Ref this object was allocated at.
	SelfRef() Ref
}

// Base is embedded by every head-allocated heap type. It carries the
// object's header and the bookkeeping the write barrier needs to mark its
// owning card dirty.
type Base struct {
	hdr  format.Header
	ref  Ref
	slab *Slab
}

// Header implements HeapObject.
func (b *Base) Header() format.Header { return b.hdr }

// SelfRef implements HeapObject.
func (b *Base) SelfRef() Ref { return b.ref }

// SetSmallFlag sets small flag bit i on the object's header in place.
func (b *Base) SetSmallFlag(i uint8, v bool) {
	b.hdr = b.hdr.WithFlag(i, v)
}

// MarkDirty marks the card this object lives on as dirty in its owning
// slab's card table. Called by the write-barrier helper in the value
// package whenever a pointer field inside this object is overwritten.
func (b *Base) MarkDirty() {
	if b.slab != nil {
		b.slab.MarkCard(b.ref.Card)
	}
}

// newBase constructs a Base for an object about to be installed into slab
// at the given ref with the given tag/payload length.
func newBase(slab *Slab, ref Ref, tag format.Tag, payloadLen int) Base {
	return Base{
		hdr: format.Header{
			Tag:        tag,
			Card:       ref.Card,
			PayloadLen: uint32(format.Align8(payloadLen)),
		},
		ref:  ref,
		slab: slab,
	}
}
