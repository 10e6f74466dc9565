package format

import "fmt"

// Tag is the closed enumeration of heap formats. Every managed allocation's
// header names exactly one Tag, and that Tag is the single source of truth
// driving both what the header describes and how the tracer dispatches
// Scan/Update (see the trace package). Keep this list and table (table.go)
// in sync: an exhaustiveness test iterates every Tag and asserts table has
// a row for it.
type Tag uint8

const (
	TagInvalid Tag = iota

	// Strings and interning.
	TagString

	// Boxed floating-point, for arithmetic promotion: Box has
	// no inline float encoding, so an overflowed/non-exact numeric result
	// is a heap-allocated leaf holding a float64, exactly the way String
	// holds a leaf byte payload.
	TagDouble

	// Property system.
	TagPropertyDict

	// Objects and scopes.
	TagPlainObject
	TagCallScope
	TagBlockScope
	TagModuleScope
	TagGlobalScope

	// Frames.
	TagFrameTerminal
	TagFrameEntry
	TagFrameSyntaxNameLookup
	TagFrameInvokeSyntax
	TagFrameFile
	TagFrameBlock
	TagFrameVar
	TagFrameCallExpr
	TagFrameInvokeApplicative
	TagFrameInvokeOperative
	TagFrameNativeCallResume

	// Arrays / collections.
	TagBoxArray
	TagOperandList

	// Packed syntax tree.
	TagPackedTree

	// Lookup engine.
	TagLookupSeenSet
	TagLookupNode
	TagLookupState

	// Misc VM objects.
	TagFunction

	// Exceptions.
	TagExceptionInternal
	TagExceptionNameLookupFailed
	TagExceptionNotOperative

	TagSourceFile

	// tagCount is not a real format; it bounds the enum for table sizing.
	tagCount
)

// String renders a Tag for diagnostics.
func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("format.Tag(%d)", uint8(t))
}

// Valid reports whether t is a known, non-placeholder format.
func (t Tag) Valid() bool {
	return t > TagInvalid && t < tagCount
}

var tagNames = [...]string{
	TagInvalid:                   "Invalid",
	TagString:                    "String",
	TagDouble:                    "Double",
	TagPropertyDict:              "PropertyDict",
	TagPlainObject:               "PlainObject",
	TagCallScope:                 "CallScope",
	TagBlockScope:                "BlockScope",
	TagModuleScope:               "ModuleScope",
	TagGlobalScope:               "GlobalScope",
	TagFrameTerminal:             "FrameTerminal",
	TagFrameEntry:                "FrameEntry",
	TagFrameSyntaxNameLookup:     "FrameSyntaxNameLookup",
	TagFrameInvokeSyntax:         "FrameInvokeSyntax",
	TagFrameFile:                 "FrameFile",
	TagFrameBlock:                "FrameBlock",
	TagFrameVar:                  "FrameVar",
	TagFrameCallExpr:             "FrameCallExpr",
	TagFrameInvokeApplicative:    "FrameInvokeApplicative",
	TagFrameInvokeOperative:      "FrameInvokeOperative",
	TagFrameNativeCallResume:     "FrameNativeCallResume",
	TagBoxArray:                  "BoxArray",
	TagOperandList:               "OperandList",
	TagPackedTree:                "PackedTree",
	TagLookupSeenSet:             "LookupSeenSet",
	TagLookupNode:                "LookupNode",
	TagLookupState:               "LookupState",
	TagFunction:                  "Function",
	TagExceptionInternal:         "ExceptionInternal",
	TagExceptionNameLookupFailed: "ExceptionNameLookupFailed",
	TagExceptionNotOperative:     "ExceptionNotOperative",
	TagSourceFile:                "SourceFile",
}

// IsFrame reports whether t names one of the frame variants in this module.
func (t Tag) IsFrame() bool {
	return t >= TagFrameTerminal && t <= TagFrameNativeCallResume
}

// IsException reports whether t names one of the exception variants.
func (t Tag) IsException() bool {
	return t >= TagExceptionInternal && t <= TagExceptionNotOperative
}

// IsScope reports whether t names one of the scope variants (this
// "object and scope" share the same layout).
func (t Tag) IsScope() bool {
	return t >= TagCallScope && t <= TagGlobalScope
}

// TagCount is the number of entries table must cover.
const TagCount = int(tagCount)
