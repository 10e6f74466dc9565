package format

// Info describes the static properties of one heap format that the
// allocator and tracer both need without importing the packages that
// define the Go type itself (that would be a cycle: trace depends on
// format, and the concrete types depend on trace).
type Info struct {
	Tag    Tag
	Name   string
	IsLeaf bool // true => Scan/Update are no-ops for this format
}

// table is the macro-expanded format list's Go equivalent: one
// row per Tag, defining both the header tag space and the IsLeaf flag the
// trace package consults before walking an object. Leaf formats never hold
// pointer fields.
var table = [TagCount]Info{
	TagString:                    {TagString, "String", true},
	TagDouble:                    {TagDouble, "Double", true},
	TagPropertyDict:              {TagPropertyDict, "PropertyDict", false},
	TagPlainObject:               {TagPlainObject, "PlainObject", false},
	TagCallScope:                 {TagCallScope, "CallScope", false},
	TagBlockScope:                {TagBlockScope, "BlockScope", false},
	TagModuleScope:               {TagModuleScope, "ModuleScope", false},
	TagGlobalScope:               {TagGlobalScope, "GlobalScope", false},
	TagFrameTerminal:             {TagFrameTerminal, "FrameTerminal", false},
	TagFrameEntry:                {TagFrameEntry, "FrameEntry", false},
	TagFrameSyntaxNameLookup:     {TagFrameSyntaxNameLookup, "FrameSyntaxNameLookup", false},
	TagFrameInvokeSyntax:         {TagFrameInvokeSyntax, "FrameInvokeSyntax", false},
	TagFrameFile:                 {TagFrameFile, "FrameFile", false},
	TagFrameBlock:                {TagFrameBlock, "FrameBlock", false},
	TagFrameVar:                  {TagFrameVar, "FrameVar", false},
	TagFrameCallExpr:             {TagFrameCallExpr, "FrameCallExpr", false},
	TagFrameInvokeApplicative:    {TagFrameInvokeApplicative, "FrameInvokeApplicative", false},
	TagFrameInvokeOperative:      {TagFrameInvokeOperative, "FrameInvokeOperative", false},
	TagFrameNativeCallResume:     {TagFrameNativeCallResume, "FrameNativeCallResume", false},
	TagBoxArray:                  {TagBoxArray, "BoxArray", false},
	TagOperandList:               {TagOperandList, "OperandList", false},
	TagPackedTree:                {TagPackedTree, "PackedTree", true},
	TagLookupSeenSet:             {TagLookupSeenSet, "LookupSeenSet", false},
	TagLookupNode:                {TagLookupNode, "LookupNode", false},
	TagLookupState:               {TagLookupState, "LookupState", false},
	TagFunction:                  {TagFunction, "Function", false},
	TagExceptionInternal:         {TagExceptionInternal, "ExceptionInternal", false},
	TagExceptionNameLookupFailed: {TagExceptionNameLookupFailed, "ExceptionNameLookupFailed", false},
	TagExceptionNotOperative:     {TagExceptionNotOperative, "ExceptionNotOperative", false},
	TagSourceFile:                {TagSourceFile, "SourceFile", true},
}

// Lookup returns the static Info for a format tag.
func Lookup(t Tag) (Info, bool) {
	if !t.Valid() {
		return Info{}, false
	}
	info := table[t]
	if info.Tag == TagInvalid {
		return Info{}, false
	}
	return info, true
}

// IsLeaf reports whether t's format never holds traceable pointer fields.
func IsLeaf(t Tag) bool {
	info, ok := Lookup(t)
	return ok && info.IsLeaf
}

// All returns every registered format, skipping the TagInvalid placeholder.
func All() []Info {
	out := make([]Info, 0, TagCount-1)
	for _, info := range table {
		if info.Tag != TagInvalid {
			out = append(out, info)
		}
	}
	return out
}
