// Package except implements the three exception variants: an internal
// printf-style message carrying boxed arguments, a name-lookup-failed
// exception (object + name), and a function-not-operative exception
// (function). Formatting is side-effect-free and bounded by a
// caller-provided buffer length.
//
// Grounded on hive/builder/doc.go's doc-comment style for example-driven
// APIs for the package-level documentation register, and on the general
// "typed, printf-style internal error" shape hive/alloc/errors.go's
// sentinel-plus-fmt.Errorf-context convention follows, generalized here
// from a Go `error` value to a heap-resident exception object so it can
// flow through frame.Result and be caught/inspected from within the
// evaluated language itself.
package except

import (
	"fmt"
	"strings"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/internal/format"
	"github.com/wisplang/wisp/strtab"
	"github.com/wisplang/wisp/trace"
	"github.com/wisplang/wisp/value"
)

// Exception is the heap object backing all three this module variants; its
// format.Header.Tag distinguishes which one it is.
type Exception struct {
	heap.Base
	message string      // internal: printf-style template; others: a fixed human label
	args    []value.Box // internal: boxed printf arguments
	object  value.Box   // name-lookup-failed: the receiver object
	name    value.Box   // name-lookup-failed: the interned name Box
	fn      value.Box   // function-not-operative: the function Box
}

var _ heap.HeapObject = (*Exception)(nil)

func (e *Exception) Trace(v trace.Visitor) {
	for i := range e.args {
		e.args[i] = v(e.args[i])
	}
	if e.object != value.Undefined {
		e.object = v(e.object)
	}
	if e.name != value.Undefined {
		e.name = v(e.name)
	}
	if e.fn != value.Undefined {
		e.fn = v(e.fn)
	}
}

func alloc(ctx heap.AllocContext, tag format.Tag, build func(r heap.Ref) *Exception) (heap.Ref, error) {
	const approxSize = 64
	return ctx.AllocHead(tag, approxSize, func(r heap.Ref) heap.HeapObject {
		slab, _ := ctx.Heap().SlabOf(r)
		e := build(r)
		e.Base = heap.NewBase(slab, r, tag, approxSize)
		return e
	})
}

// NewInternal allocates an internal exception: a printf-style message
// template plus its boxed arguments, rendered lazily by Format.
func NewInternal(ctx heap.AllocContext, messageFmt string, args ...value.Box) (heap.Ref, error) {
	argsCopy := make([]value.Box, len(args))
	copy(argsCopy, args)
	return alloc(ctx, format.TagExceptionInternal, func(heap.Ref) *Exception {
		return &Exception{message: messageFmt, args: argsCopy}
	})
}

// NewNameLookupFailed allocates a name-lookup-failed exception, naming the
// object the lookup started from and the unbound name (e.g. "f() where f
// is unbound" must mention "f" in the formatted message).
func NewNameLookupFailed(ctx heap.AllocContext, object, name value.Box) (heap.Ref, error) {
	return alloc(ctx, format.TagExceptionNameLookupFailed, func(heap.Ref) *Exception {
		return &Exception{object: object, name: name}
	})
}

// NewNotOperative allocates a function-not-operative exception, naming
// the function value that was invoked in a position requiring an
// operative.
func NewNotOperative(ctx heap.AllocContext, fn value.Box) (heap.Ref, error) {
	return alloc(ctx, format.TagExceptionNotOperative, func(heap.Ref) *Exception {
		return &Exception{fn: fn}
	})
}

func resolve(h *heap.Heap, ref heap.Ref) (*Exception, bool) {
	obj, ok := h.Resolve(ref)
	if !ok {
		return nil, false
	}
	e, ok := obj.(*Exception)
	return e, ok
}

// Format renders ref's human-readable message, truncated to at most
// maxLen bytes.
// Side-effect-free: Format never allocates on the managed heap.
func Format(h *heap.Heap, ref heap.Ref, maxLen int) string {
	e, ok := resolve(h, ref)
	if !ok {
		return truncate("<invalid exception ref>", maxLen)
	}
	switch e.Header().Tag {
	case format.TagExceptionInternal:
		return truncate(formatInternal(h, e), maxLen)
	case format.TagExceptionNameLookupFailed:
		name := printBox(h, e.name)
		return truncate(fmt.Sprintf("name lookup failed: %q is not bound", name), maxLen)
	case format.TagExceptionNotOperative:
		return truncate(fmt.Sprintf("function %s is not operative", printBox(h, e.fn)), maxLen)
	default:
		return truncate("<unknown exception>", maxLen)
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// formatInternal substitutes each "%v"-style placeholder in e.message with
// the printed form of the corresponding boxed argument, in order. Unlike
// fmt.Sprintf, this never reflects into Go types: every argument is a
// value.Box printed via the standard box printer (printBox), so the
// template's placeholders are purely positional markers, not Go verbs.
func formatInternal(h *heap.Heap, e *Exception) string {
	var b strings.Builder
	argIdx := 0
	msg := e.message
	for i := 0; i < len(msg); i++ {
		if msg[i] == '%' && i+1 < len(msg) && msg[i+1] == 'v' {
			if argIdx < len(e.args) {
				b.WriteString(printBox(h, e.args[argIdx]))
				argIdx++
			}
			i++
			continue
		}
		b.WriteByte(msg[i])
	}
	return b.String()
}

// printBox is the standard box printer this module refers to: every
// exception argument and every diagnostic render through this single
// function so formatting stays consistent across the three variants.
func printBox(h *heap.Heap, b value.Box) string {
	switch value.Classify(b) {
	case value.KindUndefined:
		return "undefined"
	case value.KindBoolean:
		v, _ := value.Bool(b)
		if v {
			return "true"
		}
		return "false"
	case value.KindInteger:
		iv, _ := value.Int64(b)
		return fmt.Sprintf("%d", iv)
	case value.KindPointer:
		ref, ok := value.Pointer(b)
		if !ok || ref.IsNil() {
			return "null"
		}
		hdr, err := refHeader(h, ref)
		if err != nil {
			return "#<unresolved>"
		}
		if hdr.Tag == format.TagString {
			s, err := strtab.Read(h, ref)
			if err == nil {
				return s
			}
		}
		return fmt.Sprintf("#<%s>", hdr.Tag)
	default:
		return "#<invalid>"
	}
}

func refHeader(h *heap.Heap, ref heap.Ref) (format.Header, error) {
	slab, ok := h.SlabOf(ref)
	if !ok {
		return format.Header{}, heap.ErrBadRef
	}
	if obj, ok := slab.Head(ref); ok {
		return obj.Header(), nil
	}
	return slab.TailHeader(ref)
}

// FormatValue renders a plain (non-exception) Box through the same
// standard box printer every exception variant's message uses, bounded to
// maxLen. Exposed for callers outside this package (runtime's driver-facing
// result formatter, this module: "the driver formats it") that need to print a
// successful evaluation's Value result with the same conventions as an
// exception's arguments, rather than reimplementing printBox.
func FormatValue(h *heap.Heap, b value.Box, maxLen int) string {
	return truncate(printBox(h, b), maxLen)
}

// Object returns the receiver object of a name-lookup-failed exception.
func Object(h *heap.Heap, ref heap.Ref) value.Box {
	e, ok := resolve(h, ref)
	if !ok {
		return value.Undefined
	}
	return e.object
}

// Name returns the unbound name Box of a name-lookup-failed exception.
func Name(h *heap.Heap, ref heap.Ref) value.Box {
	e, ok := resolve(h, ref)
	if !ok {
		return value.Undefined
	}
	return e.name
}

// Function returns the offending function Box of a not-operative
// exception.
func Function(h *heap.Heap, ref heap.Ref) value.Box {
	e, ok := resolve(h, ref)
	if !ok {
		return value.Undefined
	}
	return e.fn
}
