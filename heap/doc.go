// Package heap implements the managed-heap allocator described in this module:
// generational slabs with two concurrent bump pointers each, and the
// per-format self-describing header from internal/format.
//
// # Generations
//
// Three nominal generations exist, each a separate SlabList: Hatchery (the
// nursery, the default allocation target), LocalHeap, and Tenured. An
// AllocContext names exactly one generation and performs every allocation
// on behalf of a thread-context.
//
// # Two allocation shapes
//
// A Slab hands out two distinct shapes of allocation from a shared card
// budget:
//
//   - Head allocations ("traced"): every heap type that holds pointer
//     fields (objects, scopes, frames, dictionaries, ...) is a plain Go
//     struct implementing HeapObject. The slab's head bump pointer hands
//     out one card-indexed slot per object in an append-only table; the
//     struct itself, not a byte encoding, is the payload. This is a
//     deliberate simplification: Go gives no portable way to place an
//     arbitrary struct at a chosen byte offset the way the C++ original
//     does, so "object header" here is a format.Header value embedded in
//     the object (via Base) rather than literal bytes, and "card" for a
//     head allocation is an object-table slot index. This keeps the
//     format-tag/payload-size/card contract fully testable (see
//     internal/format's invariants) without requiring a hand-rolled
//     struct-to-bytes codec for every traced type.
//   - Tail allocations ("leaf/untraced"): formats that are pure byte data
//     with no pointer fields (String content, the packed syntax tree,
//     source file text) are genuinely byte-addressed: the slab's tail
//     bump pointer hands out real, contiguous byte ranges from a backing
//     []byte, with a literal header word written at the front exactly as
//     internal/format describes. These formats round-trip to bytes
//     (needed for the packed-tree wire format and UTF-16 string content)
//     so they get the real encoding; pointer-bearing formats do not need
//     it and get the lighter-weight struct-table treatment instead.
//
// Grounded on hive/alloc package: Slab mirrors an HBIN's
// head/tail bump allocation discipline, Ref mirrors CellRef (a relative
// offset standing in for a pointer), and the tenured generation's
// size-class free list (tenured_freelist.go) is adapted from
// hive/alloc/size_classes.go for the one generation that frees
// individual objects instead of discarding the whole slab at once.
package heap
