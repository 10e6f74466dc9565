// Package trace provides the garbage collector's pointer-field visitor
// protocol: a uniform way to enumerate and, during a copying/compacting
// collection, rewrite every Box-typed pointer field a heap object holds,
// without the collector needing a type switch over every concrete format.
//
// Objects are walked through their own Trace method (the Traceable
// interface); internal/format's Tag-keyed table supplies only the IsLeaf
// flag, consulted first: leaf formats (String, PackedTree, SourceFile) skip tracing
// entirely, since they carry no further object references to walk.
package trace
