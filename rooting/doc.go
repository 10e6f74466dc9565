// Package rooting implements the thread-local root chain: the set of
// rooted locations a collector must treat as live, and the borrow types
// (handle, mutable handle, array handle) that give Go call sites a safe
// way to hold a heap pointer across an allocation.
//
// Grounded on two patterns generalized to a new purpose:
//   - The LIFO link/unlink discipline is grounded on hive/dirty/dirty.go's
//     Tracker, whose Add/Reset pair bounds a dirty-range list to exactly the
//     lifetime of one commit; here the same push-then-guaranteed-pop
//     discipline bounds a StackRoot to exactly one lexical scope, enforced
//     with Go's defer rather than an explicit commit/rollback call.
//   - The buffer-pool reuse pattern from internal/edit/pool.go (a
//     sync.Pool of growable slices, reset-and-reuse rather than
//     allocate-and-free) is generalized into Chain's backing slice: the
//     chain itself is reused across StackRoot push/pop pairs instead of
//     allocating a fresh chain node per root.
package rooting
