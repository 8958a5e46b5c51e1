// Package npyerr defines the error taxonomy shared by the .npy decoding packages.
//
// Every failure raised while parsing a header or planning a slab wraps exactly
// one of these sentinels, so callers can classify errors with errors.Is no
// matter which layer produced them.
package npyerr

import "errors"

var (
	// ErrRead is returned when the stream yields fewer bytes than requested.
	ErrRead = errors.New("short read")

	// ErrFormat is returned for a missing magic token, a misaligned header
	// length, a corrupted or unparseable header, or a slab whose
	// dimensionality does not match the sample.
	ErrFormat = errors.New("invalid npy format")

	// ErrUnsupported is returned for valid but unsupported files, such as
	// big-endian payloads.
	ErrUnsupported = errors.New("unsupported npy feature")

	// ErrBounds is returned when a slab does not fit inside the sample.
	ErrBounds = errors.New("slab out of bounds")
)
