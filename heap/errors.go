package heap

import "errors"

// Sentinel errors, grounded on hive/alloc/errors.go's per-package error
// variable style (one var block, one sentence each, wrapped with fmt.Errorf
// at call sites that need more context).
var (
	// ErrNoSpace indicates that no free slot/card span large enough was
	// found and growth failed; the caller translates this into an error
	// or a GC trigger.
	ErrNoSpace = errors.New("heap: no space for allocation")

	// ErrBadRef indicates an invalid or out-of-bounds heap reference.
	ErrBadRef = errors.New("heap: bad reference")

	// ErrGrowFail indicates that adding another slab to a generation failed.
	ErrGrowFail = errors.New("heap: grow failed")

	// ErrNotFree indicates an attempt to free a slot that is not currently
	// allocated.
	ErrNotFree = errors.New("heap: expected allocated slot")

	// ErrNeedSmall indicates the requested payload size is invalid (must
	// be > 0 and fit in the format.Header's payload field).
	ErrNeedSmall = errors.New("heap: invalid allocation size")
)
