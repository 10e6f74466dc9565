package heap

// SlabStats is one slab's occupancy snapshot, for introspection tooling
// (cmd/wispctl's heap-stats subcommand) rather than allocation itself.
type SlabStats struct {
	ID         uint32
	Generation Generation
	Cards      uint32 // total cards available
	CardsUsed  uint32 // cards spoken for by head+tail allocators
	HeadSlots  int    // live head-allocated objects
}

// Stats reports every slab's occupancy in a generation's list, oldest
// first.
func (sl *SlabList) Stats() []SlabStats {
	out := make([]SlabStats, 0, len(sl.slabs))
	for _, s := range sl.slabs {
		out = append(out, SlabStats{
			ID:         s.id,
			Generation: s.gen,
			Cards:      s.cap,
			CardsUsed:  s.cardsUsed(),
			HeadSlots:  len(s.objects),
		})
	}
	return out
}

// Stats reports occupancy across all three generations.
func (h *Heap) Stats() map[Generation][]SlabStats {
	return map[Generation][]SlabStats{
		GenHatchery:  h.hatchery.Stats(),
		GenLocalHeap: h.localHeap.Stats(),
		GenTenured:   h.tenured.Stats(),
	}
}
