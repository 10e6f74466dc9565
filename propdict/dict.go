// Package propdict implements the property dictionary: a fixed-capacity
// open-addressed hash from interned string keys to property descriptors,
// with sentinel-based tombstone deletion and 0.75-fill-ratio doubling
// enlargement.
package propdict

import (
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/trace"
	"github.com/wisplang/wisp/value"
)

// Kind discriminates the two property.descriptor shapes this module defines.
type Kind uint8

const (
	// KindValue stores a Box payload plus a writability flag.
	KindValue Kind = iota
	// KindMethod stores a function pointer Box.
	KindMethod
)

// Descriptor is one of {value slot, method}. It carries no identity of its
// own: it is stored by value inside the dictionary's entries
// array.
type Descriptor struct {
	Kind     Kind
	Value    value.Box // KindValue payload
	Writable bool       // KindValue only
	Method   value.Box  // KindMethod payload: a function-object pointer Box
}

// emptyKey is the zero Box (a null pointer, heap.NilRef packed with no tag
// bits set) used to mark a never-occupied slot: the name pointer null
// reserves "empty."
var emptyKey = value.FromPointer(heap.NilRef)

// tombstoneKey is a sentinel pointer value distinct from any real interned
// string's Box and from emptyKey, marking a deleted slot that a probe must
// still walk past. The card field (all-ones) can never be produced by a
// live allocation, since CardBits-sized slabs never actually fill their
// entire card address space.
var tombstoneKey = value.FromPointer(heap.Ref{Gen: heap.GenInvalid, Slab: 0, Card: 0xFFFFFFFF})

const defaultCapacity = 8

// maxFillNum/Den is the 0.75 fill-ratio ceiling.
const (
	maxFillNum = 3
	maxFillDen = 4
)

// Dict is the heap-resident property dictionary (format.TagPropertyDict).
type Dict struct {
	heap.Base
	names []value.Box  // emptyKey / tombstoneKey / a live interned-string Box
	descs []Descriptor // descs[i] is valid only when names[i] is a live key
	size  int          // live (non-tombstone, non-empty) entries
}

var _ heap.HeapObject = (*Dict)(nil)

// Trace implements trace.Traceable: visits the key Box of every live slot,
// plus that slot's Descriptor payload (the KindValue Value or the
// KindMethod Method, whichever the slot's Kind says is populated) — a
// visit is safe even for a non-pointer payload (e.g. a KindValue holding
// an Integer Box), since the Visitor treats a non-pointer Box as an
// identity mapping.
func (d *Dict) Trace(v trace.Visitor) {
	for i := range d.names {
		if d.names[i] == emptyKey || d.names[i] == tombstoneKey {
			continue
		}
		d.names[i] = v(d.names[i])
		if d.descs[i].Kind == KindValue {
			d.descs[i].Value = v(d.descs[i].Value)
		} else {
			d.descs[i].Method = v(d.descs[i].Method)
		}
	}
}

// New allocates an empty Dict with room for at least capacityHint entries
// (rounded up to the next power of two, defaultCapacity if capacityHint <=
// 0), tagged format.TagPropertyDict.
func New(ctx heap.AllocContext, capacityHint int) (heap.Ref, error) {
	return NewTagged(ctx, format.TagPropertyDict, capacityHint)
}

// NewTagged allocates an empty Dict exactly like New, but under a caller-
// chosen format tag. Used by the lookup package to reuse this same
// open-addressed structure for the seen-set (format.TagLookupSeenSet): a
// set is a dictionary with a unit value.
func NewTagged(ctx heap.AllocContext, tag format.Tag, capacityHint int) (heap.Ref, error) {
	cap := nextPow2(capacityHint)
	ref, err := ctx.AllocHead(tag, cap*24, func(r heap.Ref) heap.HeapObject {
		slab, _ := ctx.Heap().SlabOf(r)
		d := &Dict{
			Base:  heap.NewBase(slab, r, tag, cap*24),
			names: make([]value.Box, cap),
			descs: make([]Descriptor, cap),
		}
		for i := range d.names {
			d.names[i] = emptyKey
		}
		return d
	})
	return ref, err
}

func nextPow2(n int) int {
	if n <= defaultCapacity {
		return defaultCapacity
	}
	p := defaultCapacity
	for p < n {
		p *= 2
	}
	return p
}

// resolve fetches the *Dict a ref names.
func resolve(h *heap.Heap, ref heap.Ref) (*Dict, bool) {
	obj, ok := h.Resolve(ref)
	if !ok {
		return nil, false
	}
	d, ok := obj.(*Dict)
	return d, ok
}

// mixKey turns an interned-string key Box into a probe sequence seed. The
// Box's bit pattern alone is sufficient entropy: equal interned strings
// always produce bit-identical Boxes.
func mixKey(b value.Box) uint64 {
	x := uint64(b)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// Get looks up key in the dictionary at ref, returning its Descriptor and
// true, or false if unbound.
func Get(h *heap.Heap, ref heap.Ref, key value.Box) (Descriptor, bool) {
	d, ok := resolve(h, ref)
	if !ok {
		return Descriptor{}, false
	}
	i, found := d.probe(key)
	if !found {
		return Descriptor{}, false
	}
	return d.descs[i], true
}

// Len reports the live entry count.
func Len(h *heap.Heap, ref heap.Ref) int {
	d, ok := resolve(h, ref)
	if !ok {
		return 0
	}
	return d.size
}

// probe finds key's slot index, following the open-addressing probe
// sequence (linear probing). found is true only for a live
// (non-tombstone) match.
func (d *Dict) probe(key value.Box) (int, bool) {
	mask := uint64(len(d.names) - 1)
	i := mixKey(key) & mask
	for probes := 0; probes < len(d.names); probes++ {
		switch d.names[i] {
		case emptyKey:
			return int(i), false
		case tombstoneKey:
			// keep walking; the key may be further down the chain
		default:
			if d.names[i] == key {
				return int(i), true
			}
		}
		i = (i + 1) & mask
	}
	return -1, false
}

// insertSlot finds the slot key should occupy for insertion: the first
// live match (overwrite in place) or, failing that, the first empty-or-
// tombstone slot encountered along the probe chain (reusing tombstones
// before falling through to a never-used slot, per standard open-
// addressing practice).
func (d *Dict) insertSlot(key value.Box) (idx int, isNewKey bool) {
	mask := uint64(len(d.names) - 1)
	i := mixKey(key) & mask
	firstTombstone := -1
	for probes := 0; probes < len(d.names); probes++ {
		switch d.names[i] {
		case emptyKey:
			if firstTombstone >= 0 {
				return firstTombstone, true
			}
			return int(i), true
		case tombstoneKey:
			if firstTombstone < 0 {
				firstTombstone = int(i)
			}
		default:
			if d.names[i] == key {
				return int(i), false
			}
		}
		i = (i + 1) & mask
	}
	// Table is logically full of tombstones/live entries with no match;
	// the caller's fill-ratio check should have enlarged before this can
	// happen, but fall back to the first tombstone found.
	return firstTombstone, true
}

// Define sets key -> desc in the dictionary at ref: updates an existing
// entry in place, or inserts a new one. If the insert would push the
// dictionary's fill ratio past 0.75 it is enlarged first (doubling
// capacity, rehashing, and dropping tombstones) and the returned ref
// names the new, larger dictionary — the caller is responsible for
// writing the new ref back into whatever heap field pointed at the old
// one (this write-field discipline), since propdict has no
// knowledge of its owning object.
func Define(ctx heap.AllocContext, ref heap.Ref, key value.Box, desc Descriptor) (heap.Ref, error) {
	d, ok := resolve(ctx.Heap(), ref)
	if !ok {
		return heap.NilRef, heap.ErrBadRef
	}
	idx, isNewKey := d.insertSlot(key)
	if !isNewKey {
		d.descs[idx] = desc
		return ref, nil
	}
	if (d.size+1)*maxFillDen > len(d.names)*maxFillNum {
		newRef, err := enlarge(ctx, d)
		if err != nil {
			return heap.NilRef, err
		}
		return Define(ctx, newRef, key, desc)
	}
	d.names[idx] = key
	d.descs[idx] = desc
	d.size++
	return ref, nil
}

// enlarge allocates a new Dict with double d's capacity, rehashes every
// live entry into it (dropping tombstones), and returns its ref.
func enlarge(ctx heap.AllocContext, d *Dict) (heap.Ref, error) {
	newRef, err := New(ctx, len(d.names)*2)
	if err != nil {
		return heap.NilRef, err
	}
	nd, _ := resolve(ctx.Heap(), newRef)
	for i, key := range d.names {
		if key == emptyKey || key == tombstoneKey {
			continue
		}
		idx, _ := nd.insertSlot(key)
		nd.names[idx] = key
		nd.descs[idx] = d.descs[i]
		nd.size++
	}
	return newRef, nil
}

// Delete removes key via tombstone.
// Reports whether key was bound.
func Delete(h *heap.Heap, ref heap.Ref, key value.Box) bool {
	d, ok := resolve(h, ref)
	if !ok {
		return false
	}
	idx, found := d.probe(key)
	if !found {
		return false
	}
	d.names[idx] = tombstoneKey
	d.descs[idx] = Descriptor{}
	d.size--
	return true
}

// ForEach iterates every live (key, descriptor) pair in slot order. Order
// is not meaningful (open-addressing slot order is an artifact of
// hashing), but iteration is deterministic for a given dictionary state.
func ForEach(h *heap.Heap, ref heap.Ref, fn func(key value.Box, desc Descriptor)) {
	d, ok := resolve(h, ref)
	if !ok {
		return
	}
	for i, key := range d.names {
		if key == emptyKey || key == tombstoneKey {
			continue
		}
		fn(key, d.descs[i])
	}
}
