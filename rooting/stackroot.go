package rooting

import "github.com/wisplang/wisp/value"

// StackRoot is "typed storage + automatic link/unlink with lexical scope"
//. Construct with Chain.NewStackRoot and release with
// Release, typically via defer so the link/unlink pair brackets exactly
// one Go lexical scope regardless of early returns.
type StackRoot struct {
	chain *Chain
	val   value.Box
	depth int
}

// NewStackRoot links a fresh root holding initial onto c and returns it.
// The caller must call Release before returning from the enclosing scope;
// the conventional idiom is:
//
//	r := chain.NewStackRoot(value.Undefined)
//	defer r.Release()
func (c *Chain) NewStackRoot(initial value.Box) *StackRoot {
	r := &StackRoot{chain: c, val: initial}
	r.depth = c.push(&r.val)
	return r
}

// Get reads the rooted value.
func (r *StackRoot) Get() value.Box { return r.val }

// Set updates the rooted value directly. Used for plain (non-heap-field)
// locals; heap.Ref-owning writers should prefer value.WriteField for the
// card-marking write barrier on heap fields themselves — a StackRoot's
// slot lives on this Go stack/chain, not on the heap, so no card marking
// applies to the slot itself.
func (r *StackRoot) Set(v value.Box) { r.val = v }

// Release unlinks r from its chain. r must be the most recently linked,
// unreleased root or array handle on that chain (lexical-scope LIFO
// discipline); violating this panics via Chain.unlinkTo.
func (r *StackRoot) Release() {
	r.chain.unlinkTo(r.depth)
}
