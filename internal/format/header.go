package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated reports that a decode call was handed fewer bytes than the
// declared structure needs.
var ErrTruncated = errors.New("format: truncated header")

// Header is the decoded form of the word every managed heap allocation is
// prefixed with. See consts.go for the bit layout.
type Header struct {
	Tag        Tag
	SmallFlags uint8 // low SmallFlagsBits significant
	Card       uint32
	PayloadLen uint32
}

// Encode packs h into its on-heap 64-bit representation.
func (h Header) Encode() uint64 {
	w := uint64(h.Tag) & FormatTagMask
	w |= (uint64(h.SmallFlags) & SmallFlagsMask) << SmallFlagsShift
	w |= (uint64(h.Card) & CardMask) << CardShift20
	w |= (uint64(h.PayloadLen) & PayloadMask) << PayloadShift
	return w
}

// DecodeHeader unpacks a raw header word.
func DecodeHeader(w uint64) Header {
	return Header{
		Tag:        Tag((w >> FormatTagShift) & FormatTagMask),
		SmallFlags: uint8((w >> SmallFlagsShift) & SmallFlagsMask),
		Card:       uint32((w >> CardShift20) & CardMask),
		PayloadLen: uint32((w >> PayloadShift) & PayloadMask),
	}
}

// WriteHeader encodes h and writes it as little-endian bytes at b[0:8].
// b must have at least HeaderSize bytes.
func WriteHeader(b []byte, h Header) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("format: %w", ErrTruncated)
	}
	binary.LittleEndian.PutUint64(b, h.Encode())
	return nil
}

// ReadHeader decodes the header word at the start of b.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("format: %w", ErrTruncated)
	}
	return DecodeHeader(binary.LittleEndian.Uint64(b)), nil
}

// Validate checks the invariants this module requires of every reachable heap
// object: the format tag is a member of the closed enumeration and the
// payload size is a multiple of Alignment.
func (h Header) Validate() error {
	if !h.Tag.Valid() {
		return fmt.Errorf("format: unknown tag %d", uint8(h.Tag))
	}
	if int(h.PayloadLen)%Alignment != 0 {
		return fmt.Errorf("format: payload size %d not %d-aligned", h.PayloadLen, Alignment)
	}
	return nil
}

// HasFlag reports whether the small flag bit at index i (0..SmallFlagsBits-1)
// is set.
func (h Header) HasFlag(i uint8) bool {
	if i >= SmallFlagsBits {
		return false
	}
	return h.SmallFlags&(1<<i) != 0
}

// WithFlag returns a copy of h with flag bit i set to v.
func (h Header) WithFlag(i uint8, v bool) Header {
	if i >= SmallFlagsBits {
		return h
	}
	if v {
		h.SmallFlags |= 1 << i
	} else {
		h.SmallFlags &^= 1 << i
	}
	return h
}
