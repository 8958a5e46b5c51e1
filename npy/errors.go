// Package npy reads NumPy .npy arrays, whole or as rectangular slabs.
package npy

import "github.com/robert-malhotra/go-npy/internal/npyerr"

// Errors returned by header parsing, slab planning and sample reads. Test
// for them with errors.Is.
var (
	ErrRead        = npyerr.ErrRead
	ErrFormat      = npyerr.ErrFormat
	ErrUnsupported = npyerr.ErrUnsupported
	ErrBounds      = npyerr.ErrBounds
)
