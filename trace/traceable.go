package trace

import "github.com/wisplang/wisp/value"

// Visitor is called once per pointer-typed field a Traceable object holds.
// Scanning visitors (mark-phase) only read the returned value's identity;
// updating visitors (copying-collector relocation) return a replacement
// Box that the Traceable must store back into the same field.
type Visitor func(field value.Box) value.Box

// Traceable is implemented by every concrete heap type that can hold
// pointer-typed fields (objects, scopes, frames, functions, lookup state,
// ...). Trace calls v once per field and stores the (possibly rewritten)
// result back, in the style of walkSubkeysFast/walkValuesFast
// pair: one method walks the object's own layout and hands each reference
// to the caller instead of the caller groping at private fields.
type Traceable interface {
	Trace(v Visitor)
}
