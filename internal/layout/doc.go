// Package layout implements the slab kernels that move array bytes.
//
// Payloads are stored densely in row-major order over their on-disk shape.
// Two kernels extract a [slab.Plan] from such a payload:
//
//   - [ReadSlice] streams only the addressed byte ranges from an
//     io.ReaderAt straight into the destination, so the full sample is
//     never materialized.
//
//   - [CopySlice] copies the addressed region out of a payload that is
//     already in memory into a smaller destination buffer.
//
// # Multi-dimensional Copying
//
// Both kernels walk the outer dimensions recursively:
//
//  1. For each position in the current dimension, calculate the source and
//     destination offsets from the per-dimension strides
//  2. Recurse to the next dimension until reaching the innermost run
//  3. At the innermost run, perform one contiguous read or copy
//
// Trailing dimensions that the plan covers completely are folded into the
// innermost run, so a slab of whole rows costs one read per row block
// instead of one per element row.
package layout
