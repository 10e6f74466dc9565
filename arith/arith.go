// Package arith implements numeric arithmetic over boxed values: Add/Sub/Mul
// attempt a 32-bit overflow-checked integer form first, promoting to a
// boxed float64 on overflow; Div returns an integer only when evenly
// divisible, follows IEEE-754 signed-infinity semantics on division by
// zero, and 0/0 is NaN; Mod is integer-only for non-negative operands,
// floating fmod otherwise; Neg promotes on INT_MIN.
//
// Overflow is detected by widening both int32 operands to int64, computing
// the exact result there and range-checking it against int32, rather than
// by hand-rolled sign-bit comparisons. A third-party big-integer/decimal
// library would be the wrong fit here: overflow always promotes straight to
// float64, never to an arbitrary-precision integer, so nothing beyond the
// standard math package is needed.
package arith

import (
	"math"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/value"
)

// operand is a decoded numeric operand: either an exact int32 (still
// representable in value.Box's Integer encoding, which is wider than
// int32, but this package's inputs are always produced by prior int32-or-
// promoted arithmetic, so the 32-bit range is the contract boundary) or a
// float64 read back from a boxed Double.
type operand struct {
	isInt bool
	i     int32
	f     float64
}

// decode reads b as a numeric operand: an Integer Box (must fit int32) or
// a pointer to a boxed Double. ok is false for anything else (this module
// scenario 5: "1 + true" must not decode as numeric).
func decode(h *heap.Heap, b value.Box) (operand, bool) {
	switch value.Classify(b) {
	case value.KindInteger:
		iv, ok := value.Int64(b)
		if !ok || iv < math.MinInt32 || iv > math.MaxInt32 {
			return operand{}, false
		}
		return operand{isInt: true, i: int32(iv)}, true
	case value.KindPointer:
		ref, ok := value.Pointer(b)
		if !ok {
			return operand{}, false
		}
		f, err := ReadDouble(h, ref)
		if err != nil {
			return operand{}, false
		}
		return operand{isInt: false, f: f}, true
	default:
		return operand{}, false
	}
}

func (o operand) asFloat() float64 {
	if o.isInt {
		return float64(o.i)
	}
	return o.f
}

// boxInt constructs an Integer Box from an int32 result (always within
// value.Box's far larger 56-bit range).
func boxInt(v int32) value.Box {
	b, _ := value.FromInt64(int64(v))
	return b
}

func boxFloat(ctx heap.AllocContext, f float64) (value.Box, error) {
	ref, err := NewDouble(ctx, f)
	if err != nil {
		return 0, err
	}
	return value.FromPointer(ref), nil
}

// ErrNotNumeric is returned when an operand is neither an Integer Box nor
// a boxed Double.
var ErrNotNumeric = errNotNumeric{}

type errNotNumeric struct{}

func (errNotNumeric) Error() string { return "arith: operand is not numeric" }

// Add implements this Add: int32-checked first, float64 on
// overflow or if either operand is already a Double.
func Add(ctx heap.AllocContext, lhs, rhs value.Box) (value.Box, error) {
	l, ok := decode(ctx.Heap(), lhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	r, ok := decode(ctx.Heap(), rhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	if l.isInt && r.isInt {
		sum := int64(l.i) + int64(r.i)
		if sum >= math.MinInt32 && sum <= math.MaxInt32 {
			return boxInt(int32(sum)), nil
		}
		return boxFloat(ctx, float64(sum))
	}
	return boxFloat(ctx, l.asFloat()+r.asFloat())
}

// Sub implements this Sub.
func Sub(ctx heap.AllocContext, lhs, rhs value.Box) (value.Box, error) {
	l, ok := decode(ctx.Heap(), lhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	r, ok := decode(ctx.Heap(), rhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	if l.isInt && r.isInt {
		diff := int64(l.i) - int64(r.i)
		if diff >= math.MinInt32 && diff <= math.MaxInt32 {
			return boxInt(int32(diff)), nil
		}
		return boxFloat(ctx, float64(diff))
	}
	return boxFloat(ctx, l.asFloat()-r.asFloat())
}

// Mul implements this Mul.
func Mul(ctx heap.AllocContext, lhs, rhs value.Box) (value.Box, error) {
	l, ok := decode(ctx.Heap(), lhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	r, ok := decode(ctx.Heap(), rhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	if l.isInt && r.isInt {
		product := int64(l.i) * int64(r.i)
		if product >= math.MinInt32 && product <= math.MaxInt32 {
			return boxInt(int32(product)), nil
		}
		return boxFloat(ctx, float64(product))
	}
	return boxFloat(ctx, l.asFloat()*r.asFloat())
}

// Div implements this Div: integer result only when the dividend
// is evenly divisible by a non-zero divisor; otherwise promotes. Division
// by zero follows IEEE-754 signed-infinity semantics; 0/0 is NaN.
func Div(ctx heap.AllocContext, lhs, rhs value.Box) (value.Box, error) {
	l, ok := decode(ctx.Heap(), lhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	r, ok := decode(ctx.Heap(), rhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	if l.isInt && r.isInt {
		if r.i == 0 {
			switch {
			case l.i > 0:
				return boxFloat(ctx, math.Inf(1))
			case l.i < 0:
				return boxFloat(ctx, math.Inf(-1))
			default:
				return boxFloat(ctx, math.NaN())
			}
		}
		if l.i%r.i == 0 {
			return boxInt(l.i / r.i), nil
		}
		return boxFloat(ctx, float64(l.i)/float64(r.i))
	}
	return boxFloat(ctx, l.asFloat()/r.asFloat())
}

// Mod implements this Mod: integer when both operands are
// non-negative, floating fmod otherwise.
func Mod(ctx heap.AllocContext, lhs, rhs value.Box) (value.Box, error) {
	l, ok := decode(ctx.Heap(), lhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	r, ok := decode(ctx.Heap(), rhs)
	if !ok {
		return 0, ErrNotNumeric
	}
	if l.isInt && r.isInt && l.i >= 0 && r.i >= 0 {
		if r.i == 0 {
			return boxFloat(ctx, math.NaN())
		}
		return boxInt(l.i % r.i), nil
	}
	return boxFloat(ctx, math.Mod(l.asFloat(), r.asFloat()))
}

// Neg implements this Neg: promotes on INT_MIN, since -INT32_MIN
// overflows int32.
func Neg(ctx heap.AllocContext, v value.Box) (value.Box, error) {
	o, ok := decode(ctx.Heap(), v)
	if !ok {
		return 0, ErrNotNumeric
	}
	if o.isInt {
		if o.i == math.MinInt32 {
			return boxFloat(ctx, -float64(o.i))
		}
		return boxInt(-o.i), nil
	}
	return boxFloat(ctx, -o.f)
}
