// Package alloc provides the buffer allocators sample reads draw from.
//
// Readers never call make directly for payload buffers; they go through an
// [Allocator]. [Heap] is the default. [Counting] wraps another allocator and
// records every request, which lets tests and metrics see exactly how large
// the buffers behind a read were.
package alloc
