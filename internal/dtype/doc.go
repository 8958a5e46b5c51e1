// Package dtype maps .npy type codes to element types and Go types.
//
// The .npy header names its element type with a descriptor such as "<f4":
// a byte-order character followed by a two-character type code. This package
// only deals with the type code; byte-order validation happens in the header
// parser.
//
// # Type Mapping
//
// The registry is a closed table:
//
//	Code | Kind    | Size | Go Type
//	-----|---------|------|---------
//	i4   | Int32   | 4    | int32
//	i8   | Int64   | 8    | int64
//	f4   | Float32 | 4    | float32
//	f8   | Float64 | 8    | float64
//
// Any other code resolves to an unrecognized element type of size zero
// instead of failing. Callers that compute payload sizes as
// size*elements will therefore see zero bytes for such files.
//
// # Views
//
// Use [View] to reinterpret little-endian payload bytes as a typed slice
// without copying:
//
//	vals, err := dtype.View[float32](dtype.Float32, raw)
//
// # Key Functions
//
//   - [Resolve]: Returns the element type for a type code
//   - [View]: Reinterprets bytes as a typed slice
//   - [Copy]: Decodes bytes into a freshly allocated typed slice
package dtype
