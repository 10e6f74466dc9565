package syntax

import (
	"encoding/binary"
	"errors"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/buf"
	"github.com/wisplang/wisp/internal/format"
)

// ErrMalformed is returned when a reader method is asked to decode a
// position that doesn't hold the shape its caller expects (e.g. Extra
// called on a bad node offset, or a constant-pool index out of range).
var ErrMalformed = errors.New("syntax: malformed packed tree")

// Tree is the in-memory decoded view of a packed syntax tree: the flat
// word array plus its two constant pools. Random access is O(1)
// by word index, matching the wire format's forward-jump design.
type Tree struct {
	Words  []uint32
	Idents []string
	Ints   []int64
	Root   int // word position of the top-level File node
}

// Kind returns the node kind stored at word index pos.
func (t *Tree) Kind(pos int) Kind {
	if pos < 0 || pos >= len(t.Words) {
		return KindInvalid
	}
	k, _ := unpackWord(t.Words[pos])
	return k
}

// extra returns the raw extra field of the header word at pos.
func (t *Tree) extra(pos int) uint32 {
	if pos < 0 || pos >= len(t.Words) {
		return 0
	}
	_, extra := unpackWord(t.Words[pos])
	return extra
}

// Ident returns the identifier pool string referenced by an
// IdentifierRef node at pos.
func (t *Tree) Ident(pos int) (string, error) {
	if t.Kind(pos) != KindIdentifierRef {
		return "", ErrMalformed
	}
	idx := int(t.extra(pos))
	if idx < 0 || idx >= len(t.Idents) {
		return "", ErrMalformed
	}
	return t.Idents[idx], nil
}

// Int returns the integer literal pool value referenced by an
// IntegerLiteral node at pos.
func (t *Tree) Int(pos int) (int64, error) {
	if t.Kind(pos) != KindIntegerLiteral {
		return 0, ErrMalformed
	}
	idx := int(t.extra(pos))
	if idx < 0 || idx >= len(t.Ints) {
		return 0, ErrMalformed
	}
	return t.Ints[idx], nil
}

// Str returns the string literal pool value referenced by a
// StringLiteral node at pos.
func (t *Tree) Str(pos int) (string, error) {
	if t.Kind(pos) != KindStringLiteral {
		return "", ErrMalformed
	}
	idx := int(t.extra(pos))
	if idx < 0 || idx >= len(t.Idents) {
		return "", ErrMalformed
	}
	return t.Idents[idx], nil
}

// Bool returns the boolean literal value at pos, packed directly into
// the header's extra field (no operand word needed for a one-bit payload).
func (t *Tree) Bool(pos int) (bool, error) {
	if t.Kind(pos) != KindBooleanLiteral {
		return false, ErrMalformed
	}
	return t.extra(pos) != 0, nil
}

// StatementCount returns the statement count of a File/Block node.
func (t *Tree) StatementCount(pos int) int {
	return int(t.extra(pos))
}

// Statement returns the absolute word position of statement i of a
// File/Block node at pos, resolving the forward-jump slot that
// immediately follows the header word.
func (t *Tree) Statement(pos, i int) (int, error) {
	k := t.Kind(pos)
	if k != KindFile && k != KindBlock {
		return 0, ErrMalformed
	}
	count := t.StatementCount(pos)
	if i < 0 || i >= count {
		return 0, ErrMalformed
	}
	slot := pos + 1 + i
	return t.jump(slot)
}

// BindingCount returns the binding count of a VarStmt node.
func (t *Tree) BindingCount(pos int) int {
	return int(t.extra(pos))
}

// Binding returns the binding-name identifier and the absolute word
// position of binding i's value expression on a VarStmt node at pos.
func (t *Tree) Binding(pos, i int) (name string, valuePos int, err error) {
	if t.Kind(pos) != KindVarStmt {
		return "", 0, ErrMalformed
	}
	count := t.BindingCount(pos)
	if i < 0 || i >= count {
		return "", 0, ErrMalformed
	}
	nameSlot := pos + 1 + 2*i
	offsetSlot := nameSlot + 1
	if nameSlot < 0 || nameSlot >= len(t.Words) {
		return "", 0, ErrMalformed
	}
	identIdx := int(t.Words[nameSlot])
	if identIdx < 0 || identIdx >= len(t.Idents) {
		return "", 0, ErrMalformed
	}
	valuePos, err = t.jump(offsetSlot)
	if err != nil {
		return "", 0, err
	}
	return t.Idents[identIdx], valuePos, nil
}

// ArgCount returns the argument count of a CallExpr node.
func (t *Tree) ArgCount(pos int) int {
	return int(t.extra(pos))
}

// Callee returns the absolute word position of a CallExpr node's callee.
func (t *Tree) Callee(pos int) (int, error) {
	if t.Kind(pos) != KindCallExpr {
		return 0, ErrMalformed
	}
	return t.jump(pos + 1)
}

// Arg returns the absolute word position of CallExpr argument i.
func (t *Tree) Arg(pos, i int) (int, error) {
	if t.Kind(pos) != KindCallExpr {
		return 0, ErrMalformed
	}
	if i < 0 || i >= t.ArgCount(pos) {
		return 0, ErrMalformed
	}
	return t.jump(pos + 2 + i)
}

// jump resolves a jump slot: the word at slot holds a signed word-count
// offset from slot itself to the referenced child's start ("forward-jump
// slots"); a writer that builds a tree bottom-up (as packtest's does)
// necessarily emits children before the parent header
// that references them, so in practice offsets run backward as often as
// forward. Supporting both directions costs nothing (one int32 instead
// of a uint32) and preserves the one property that actually matters:
// O(1) indexed access to any child from its parent.
func (t *Tree) jump(slot int) (int, error) {
	if slot < 0 || slot >= len(t.Words) {
		return 0, ErrMalformed
	}
	off := int(int32(t.Words[slot]))
	target := slot + off
	if target < 0 || target >= len(t.Words) {
		return 0, ErrMalformed
	}
	return target, nil
}

// encodedSize returns the byte length Encode will produce for t.
func encodedSize(t *Tree) int {
	size := 4 + 4 + len(t.Words)*4
	size += 4
	for _, s := range t.Idents {
		size += 4 + len(s)
	}
	size += 4 + len(t.Ints)*8
	return size
}

// Encode serializes t into the flat byte layout this module describes: a
// length-prefixed words section followed by length-prefixed identifier and
// integer constant-pool sections. This is the same layout Store writes
// into a heap tail allocation, factored out so cmd/wispctl can read/write
// packed-tree *files* directly — the consumer contract this module describes
// as living outside the managed heap entirely until a program is actually
// evaluated.
func Encode(t *Tree) []byte {
	payload := make([]byte, encodedSize(t))
	off := 0
	buf.PutU32LE(payload[off:], uint32(t.Root))
	off += 4
	buf.PutU32LE(payload[off:], uint32(len(t.Words)))
	off += 4
	for _, w := range t.Words {
		buf.PutU32LE(payload[off:], w)
		off += 4
	}
	buf.PutU32LE(payload[off:], uint32(len(t.Idents)))
	off += 4
	for _, s := range t.Idents {
		buf.PutU32LE(payload[off:], uint32(len(s)))
		off += 4
		copy(payload[off:], s)
		off += len(s)
	}
	buf.PutU32LE(payload[off:], uint32(len(t.Ints)))
	off += 4
	for _, v := range t.Ints {
		binary.LittleEndian.PutUint64(payload[off:], uint64(v))
		off += 8
	}
	return payload
}

// Decode parses the flat byte layout Encode produces back into a Tree.
func Decode(payload []byte) (*Tree, error) {
	off := 0
	readU32 := func() (uint32, error) {
		if off+4 > len(payload) {
			return 0, ErrMalformed
		}
		v := buf.U32LE(payload[off:])
		off += 4
		return v, nil
	}

	root, err := readU32()
	if err != nil {
		return nil, err
	}
	wordCount, err := readU32()
	if err != nil {
		return nil, err
	}
	words := make([]uint32, wordCount)
	for i := range words {
		v, err := readU32()
		if err != nil {
			return nil, err
		}
		words[i] = v
	}

	identCount, err := readU32()
	if err != nil {
		return nil, err
	}
	idents := make([]string, identCount)
	for i := range idents {
		n, err := readU32()
		if err != nil {
			return nil, err
		}
		if off+int(n) > len(payload) {
			return nil, ErrMalformed
		}
		idents[i] = string(payload[off : off+int(n)])
		off += int(n)
	}

	intCount, err := readU32()
	if err != nil {
		return nil, err
	}
	ints := make([]int64, intCount)
	for i := range ints {
		if off+8 > len(payload) {
			return nil, ErrMalformed
		}
		ints[i] = int64(binary.LittleEndian.Uint64(payload[off:]))
		off += 8
	}

	return &Tree{Words: words, Idents: idents, Ints: ints, Root: int(root)}, nil
}

// Store serializes t into a heap-resident, tail-allocated leaf
// (format.TagPackedTree), mirroring strtab's leaf tail-allocation shape.
func Store(ctx heap.AllocContext, t *Tree) (heap.Ref, error) {
	encoded := Encode(t)
	ref, payload, err := ctx.AllocTail(format.TagPackedTree, len(encoded))
	if err != nil {
		return heap.NilRef, err
	}
	copy(payload, encoded)
	return ref, nil
}

// Load deserializes a heap-resident packed tree back into a Tree.
func Load(h *heap.Heap, ref heap.Ref) (*Tree, error) {
	slab, ok := h.SlabOf(ref)
	if !ok {
		return nil, heap.ErrBadRef
	}
	hdr, err := slab.TailHeader(ref)
	if err != nil {
		return nil, err
	}
	if hdr.Tag != format.TagPackedTree {
		return nil, ErrMalformed
	}
	payload, err := slab.TailPayload(ref)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}
