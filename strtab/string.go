package strtab

import (
	"errors"
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/buf"
	"github.com/wisplang/wisp/internal/format"
)

// ErrTooShort is returned when a String's tail payload is smaller than its
// own length prefix declares.
var ErrTooShort = errors.New("strtab: string payload shorter than declared length")

// widthFlag is the format.Header small-flag bit distinguishing the two
// on-heap string encodings: narrow (one byte per code unit, Latin-1 range)
// and wide (two bytes per code unit, UTF-16LE), matching this
// "code-unit width" query field.
const widthFlag = 0

// Width is the code-unit width of a String's content.
type Width uint8

const (
	WidthNarrow Width = 1 // one byte per code unit
	WidthWide   Width = 2 // two bytes per code unit (UTF-16LE)
)

// lengthPrefixSize is the byte width of the code-unit count prefix every
// String payload carries ahead of its content, mirroring this module's
// subkey-list convention of a fixed count field ahead of variable content.
const lengthPrefixSize = 4

// New allocates a String heap object holding s, choosing the narrowest
// encoding that round-trips losslessly: single-byte (Latin-1 range code
// points) when every rune fits, UTF-16LE otherwise.
func New(ctx heap.AllocContext, s string) (heap.Ref, error) {
	units, wide, err := encode(s)
	if err != nil {
		return heap.NilRef, err
	}

	unitWidth := 1
	if wide {
		unitWidth = 2
	}
	contentLen := len(units) / unitWidth
	payloadLen := lengthPrefixSize + len(units)

	ref, payload, err := ctx.AllocTail(format.TagString, payloadLen)
	if err != nil {
		return heap.NilRef, err
	}
	buf.PutU32LE(payload, uint32(contentLen))
	copy(payload[lengthPrefixSize:], units)

	if wide {
		if err := setWidth(ctx, ref, WidthWide); err != nil {
			return heap.NilRef, err
		}
	}
	return ref, nil
}

// encode converts s to its on-heap byte representation, reporting whether
// the wide (UTF-16LE) encoding was required.
func encode(s string) (units []byte, wide bool, err error) {
	narrow := true
	for _, r := range s {
		if r > 0xFF {
			narrow = false
			break
		}
	}
	if narrow {
		b := make([]byte, 0, len(s))
		for _, r := range s {
			b = append(b, byte(r))
		}
		return b, false, nil
	}

	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, false, fmt.Errorf("strtab: encode UTF-16: %w", err)
	}
	return b, true, nil
}

// Read decodes a String heap object back into a Go string.
func Read(h *heap.Heap, ref heap.Ref) (string, error) {
	slab, ok := h.SlabOf(ref)
	if !ok {
		return "", heap.ErrBadRef
	}
	payload, err := slab.TailPayload(ref)
	if err != nil {
		return "", err
	}
	if len(payload) < lengthPrefixSize {
		return "", ErrTooShort
	}
	count := int(buf.U32LE(payload))
	content := payload[lengthPrefixSize:]

	hdr, err := slab.TailHeader(ref)
	if err != nil {
		return "", err
	}
	w := widthOf(hdr)

	switch w {
	case WidthNarrow:
		if len(content) < count {
			return "", ErrTooShort
		}
		r := make([]rune, count)
		for i := 0; i < count; i++ {
			r[i] = rune(content[i])
		}
		return string(r), nil
	default:
		if len(content) < count*2 {
			return "", ErrTooShort
		}
		units := make([]uint16, count)
		for i := 0; i < count; i++ {
			units[i] = uint16(content[2*i]) | uint16(content[2*i+1])<<8
		}
		return string(utf16.Decode(units)), nil
	}
}

// Len returns the code-unit count (not byte length) of a String.
func Len(h *heap.Heap, ref heap.Ref) (int, error) {
	slab, ok := h.SlabOf(ref)
	if !ok {
		return 0, heap.ErrBadRef
	}
	payload, err := slab.TailPayload(ref)
	if err != nil {
		return 0, err
	}
	if len(payload) < lengthPrefixSize {
		return 0, ErrTooShort
	}
	return int(buf.U32LE(payload)), nil
}

// WidthOf reports a String's code-unit width.
func WidthOf(h *heap.Heap, ref heap.Ref) (Width, error) {
	slab, ok := h.SlabOf(ref)
	if !ok {
		return 0, heap.ErrBadRef
	}
	hdr, err := slab.TailHeader(ref)
	if err != nil {
		return 0, err
	}
	return widthOf(hdr), nil
}

func widthOf(hdr format.Header) Width {
	if hdr.HasFlag(widthFlag) {
		return WidthWide
	}
	return WidthNarrow
}

// setWidth flips the wide bit in ref's header after the fact (New already
// knows at construction time, but the write goes through AllocContext's
// owning heap so tests and callers sharing a Heap agree on the byte
// layout).
func setWidth(ctx heap.AllocContext, ref heap.Ref, w Width) error {
	slab, ok := ctx.Heap().SlabOf(ref)
	if !ok {
		return heap.ErrBadRef
	}
	return slab.SetTailFlag(ref, widthFlag, w == WidthWide)
}
