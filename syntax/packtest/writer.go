// Package packtest is test-support-only tooling that fabricates packed
// syntax trees (syntax.Tree) without a real parser, used by frame,
// syntax, and runtime's tests and by `wispctl gen-fixture`.
//
// Recovered from original_source/src/whisper/parser/packed_writer.cpp:
// the packed tree is normally only consumed, never written, but a
// writer is useful fixture tooling for building trees by hand in tests
// and for `wispctl gen-fixture`, distinct from and never imported by the
// reader in package syntax itself.
package packtest

import "github.com/wisplang/wisp/syntax"

// Builder accumulates words/identifiers/integers for a syntax.Tree using
// a tiny S-expression-like surface: each Node-producing method appends a
// node (and any constant-pool entries it needs) and returns the node's
// word position, to be threaded into a parent node's child list.
type Builder struct {
	words  []uint32
	idents []string
	ints   []int64
	root   int

	identIndex map[string]int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{identIndex: make(map[string]int)}
}

func (b *Builder) internIdent(s string) int {
	if idx, ok := b.identIndex[s]; ok {
		return idx
	}
	idx := len(b.idents)
	b.idents = append(b.idents, s)
	b.identIndex[s] = idx
	return idx
}

func (b *Builder) internInt(v int64) int {
	idx := len(b.ints)
	b.ints = append(b.ints, v)
	return idx
}

func (b *Builder) emit(word uint32) int {
	pos := len(b.words)
	b.words = append(b.words, word)
	return pos
}

func pack(k syntax.Kind, extra uint32) uint32 {
	return uint32(k) | extra<<8
}

// Integer appends an integer-literal node and returns its position.
func (b *Builder) Integer(v int64) int {
	idx := b.internInt(v)
	return b.emit(pack(syntax.KindIntegerLiteral, uint32(idx)))
}

// String appends a string-literal node and returns its position.
func (b *Builder) String(s string) int {
	idx := b.internIdent(s)
	return b.emit(pack(syntax.KindStringLiteral, uint32(idx)))
}

// Boolean appends a boolean-literal node and returns its position.
func (b *Builder) Boolean(v bool) int {
	extra := uint32(0)
	if v {
		extra = 1
	}
	return b.emit(pack(syntax.KindBooleanLiteral, extra))
}

// Undefined appends an undefined-literal node and returns its position.
func (b *Builder) Undefined() int {
	return b.emit(pack(syntax.KindUndefinedLiteral, 0))
}

// Identifier appends an identifier-reference node and returns its position.
func (b *Builder) Identifier(name string) int {
	idx := b.internIdent(name)
	return b.emit(pack(syntax.KindIdentifierRef, uint32(idx)))
}

// reserve appends n placeholder words (to be back-patched with jump
// offsets once their targets are known) and returns the position of the
// first reserved word.
func (b *Builder) reserve(n int) int {
	pos := len(b.words)
	for i := 0; i < n; i++ {
		b.words = append(b.words, 0)
	}
	return pos
}

// patchJump back-patches the jump slot at slot to point at target, as a
// signed word-count offset (see syntax.Tree.jump's doc: this builder's
// bottom-up construction order means most offsets run backward).
func (b *Builder) patchJump(slot, target int) {
	b.words[slot] = uint32(int32(target - slot))
}

// Call appends a CallExpr node invoking callee with args, all given as
// node positions already emitted (e.g. via Identifier/Integer/Call),
// and returns the CallExpr node's own position.
func (b *Builder) Call(callee int, args ...int) int {
	header := b.emit(pack(syntax.KindCallExpr, uint32(len(args))))
	calleeSlot := b.reserve(1)
	b.patchJump(calleeSlot, callee)
	for _, a := range args {
		argSlot := b.reserve(1)
		b.patchJump(argSlot, a)
	}
	return header
}

// Binding is one name/value-expression pair for Var.
type Binding struct {
	Name  string
	Value int // node position of the value expression
}

// Var appends a VarStmt node binding each Binding's name to its value
// expression, and returns the node's position.
func (b *Builder) Var(bindings ...Binding) int {
	header := b.emit(pack(syntax.KindVarStmt, uint32(len(bindings))))
	for _, bind := range bindings {
		identIdx := b.internIdent(bind.Name)
		b.emit(uint32(identIdx))
		offSlot := b.reserve(1)
		b.patchJump(offSlot, bind.Value)
	}
	return header
}

// Block appends a Block node sequencing stmts in order, and returns the
// node's position.
func (b *Builder) Block(stmts ...int) int {
	header := b.emit(pack(syntax.KindBlock, uint32(len(stmts))))
	for _, s := range stmts {
		slot := b.reserve(1)
		b.patchJump(slot, s)
	}
	return header
}

// File appends a File node sequencing stmts in order and records it as
// the tree's root, returning the node's position. A Builder should call
// File exactly once.
func (b *Builder) File(stmts ...int) int {
	header := b.emit(pack(syntax.KindFile, uint32(len(stmts))))
	for _, s := range stmts {
		slot := b.reserve(1)
		b.patchJump(slot, s)
	}
	b.root = header
	return header
}

// Build finalizes the accumulated words/pools into a syntax.Tree.
func (b *Builder) Build() *syntax.Tree {
	return &syntax.Tree{Words: b.words, Idents: b.idents, Ints: b.ints, Root: b.root}
}
