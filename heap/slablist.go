package heap

import "fmt"

// SlabList is the growable list of slabs backing one generation, grounded
// on Allocator.GrowByPages contract (hive/alloc/types.go):
// growth happens in whole slab-sized increments, never partial.
type SlabList struct {
	gen        Generation
	cardsPer   uint32
	slabs      []*Slab
	nextSlabID uint32
}

// NewSlabList creates an empty slab list for gen. cardsPerSlab sizes every
// slab subsequently grown into the list (0 uses defaultSlabCards).
func NewSlabList(gen Generation, cardsPerSlab uint32) *SlabList {
	if cardsPerSlab == 0 {
		cardsPerSlab = defaultSlabCards
	}
	return &SlabList{gen: gen, cardsPer: cardsPerSlab}
}

// Grow appends exactly one new slab to the list. Mirrors GrowByPages(1):
// spec-compliant generations only ever grow by whole slabs.
func (sl *SlabList) Grow() (*Slab, error) {
	s, err := newSlab(sl.nextSlabID, sl.gen, sl.cardsPer)
	if err != nil {
		return nil, fmt.Errorf("heap: grow %s: %w", sl.gen, err)
	}
	sl.nextSlabID++
	sl.slabs = append(sl.slabs, s)
	return s, nil
}

// Current returns the slab new allocations should be attempted against
// (the most recently grown one), growing the list if it is empty.
func (sl *SlabList) Current() (*Slab, error) {
	if len(sl.slabs) == 0 {
		return sl.Grow()
	}
	return sl.slabs[len(sl.slabs)-1], nil
}

// Slabs returns every slab in the list, oldest first.
func (sl *SlabList) Slabs() []*Slab {
	return sl.slabs
}

// BySlabID finds a slab in the list by its id, or ok=false.
func (sl *SlabList) BySlabID(id uint32) (*Slab, bool) {
	for _, s := range sl.slabs {
		if s.id == id {
			return s, true
		}
	}
	return nil, false
}

// Reset discards every slab, freeing their tail byte backing stores. Used
// when a generation (typically the hatchery) is fully evacuated by a
// collection and can restart from empty.
func (sl *SlabList) Reset() {
	for _, s := range sl.slabs {
		_ = freeSlabBytes(s.bytes)
	}
	sl.slabs = nil
	sl.nextSlabID = 0
}
