package rooting

import "github.com/wisplang/wisp/value"

// entry is one link in the root chain: a live StackRoot's backing slot.
// Array roots occupy a contiguous run of entries rather than a dedicated
// entry kind, so ScanChain can walk the whole chain uniformly.
type entry struct {
	slot  *value.Box
	first bool // first entry of one StackRoot or ArrayHandle
}

// Chain is a thread-context's root chain: every StackRoot and ArrayHandle
// currently in scope on this thread, in push order. A Chain is never
// shared across thread-contexts.
type Chain struct {
	entries []entry
}

// NewChain creates an empty root chain, pre-sized generously enough that
// typical call depth never reallocates it, matching this module's
// pre-sized-stack convention (hive/walker/core.go's initialStackCapacity).
func NewChain() *Chain {
	return &Chain{entries: make([]entry, 0, 64)}
}

// push links slot onto the chain and returns its position, used by Unlink
// to pop back to exactly that depth.
func (c *Chain) push(slot *value.Box) int {
	c.entries = append(c.entries, entry{slot: slot, first: true})
	return len(c.entries) - 1
}

// pushRange links a contiguous run of slots (an ArrayHandle) as a single
// logical root; Unlink still only needs the starting depth to pop them all.
func (c *Chain) pushRange(slots []value.Box) int {
	depth := len(c.entries)
	for i := range slots {
		c.entries = append(c.entries, entry{slot: &slots[i], first: i == 0})
	}
	return depth
}

// unlinkTo truncates the chain back to depth, releasing every root linked
// at or after that depth. Callers must unlink in strict LIFO order (lexical
// scope exit order); unlinkTo panics otherwise, catching a root leak or a
// misordered release immediately rather than silently corrupting the chain.
func (c *Chain) unlinkTo(depth int) {
	if depth > len(c.entries) {
		panic("rooting: unlink depth exceeds chain length")
	}
	for i := depth + 1; i < len(c.entries); i++ {
		if c.entries[i].first {
			panic("rooting: root released out of LIFO order")
		}
	}
	c.entries = c.entries[:depth]
}

// Scan invokes visit on every currently-rooted Box in the chain, in link
// order. This is the collector's sole entry point into per-thread roots:
// walking the chain once visits every StackRoot, Handle target, and
// ArrayHandle element currently held live by the thread.
func (c *Chain) Scan(visit func(value.Box)) {
	for _, e := range c.entries {
		visit(*e.slot)
	}
}

// Update invokes replace on every currently-rooted Box and stores the
// result back into its slot, used by a copying collector fixing up root
// references after relocating the objects they name.
func (c *Chain) Update(replace func(value.Box) value.Box) {
	for i := range c.entries {
		*c.entries[i].slot = replace(*c.entries[i].slot)
	}
}

// Depth reports the chain's current link count, primarily for tests and
// for the invariant check in unlinkTo.
func (c *Chain) Depth() int {
	return len(c.entries)
}
