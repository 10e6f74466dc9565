// Package strtab implements the managed String heap format and an
// interned string table: an open-addressed hash whose keys are either
// live string objects or transient query tuples (length + pointer +
// code-unit width).
//
// Grounded on three sources:
//   - The string heap format's length-prefixed payload layout is grounded
//     on hive/walker/core.go's subkey-list convention
//     ([sig][count][entries...]): a String's tail payload is
//     [codeUnitCount(4 bytes LE)][content], read with the same
//     internal/buf little-endian accessors used for its own
//     list headers.
//   - The probing/tombstone discipline (open addressing, a dedicated
//     "deleted" marker distinct from "truly empty, stop probing") is
//     grounded on Go's own runtime hash map (other_examples' copy of
//     src/runtime/map.go): its tophash array's emptyOne ("this cell is
//     empty") vs emptyRest ("empty, and nothing past this index in the
//     bucket is occupied either") distinction is the same shape as this
//     package's stateTombstone vs stateEmpty.
//   - The hash function itself generalizes hive/subkeys/hash.go's
//     multiplicative rolling hash discipline (one accumulator, one
//     multiplier, no allocation) to FNV-1a, the standard non-cryptographic
//     string hash for an intern table; a random per-process spoiler
//     (golang.org/x/sys/unix.Getrandom, falling back to crypto/rand) is
//     folded into the seed so adversarial input can't force worst-case
//     probe chains, the same threat Go's own map addresses with its
//     random hash seed.
package strtab
