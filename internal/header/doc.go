// Package header parses the preamble and text header of .npy files.
//
// # File Layout
//
// A .npy file starts with a fixed preamble followed by an ASCII header and
// the raw payload:
//
//	offset 0..5    magic: 0x93 'N' 'U' 'M' 'P' 'Y'
//	offset 6..7    format version (major, minor)
//	offset 8..9    little-endian uint16 header length H
//	offset 10..    H bytes of header text
//	offset 10+H    payload
//
// The header text is a Python dictionary literal:
//
//	{'descr': '<f4', 'fortran_order': False, 'shape': (3, 4), }
//
// padded with spaces and a newline so that 10+H is a multiple of 16.
//
// # Validation
//
// [Parse] checks, in order: that the magic token appears within the first 10
// bytes, that the header length is 16-byte aligned, that the header text
// contains a dictionary marker and matches the expected key order, and that
// the descriptor is little-endian or byte-order agnostic. Big-endian
// descriptors ('>') are rejected.
//
// The parsed shape is kept in the order written in the file. For
// fortran-ordered arrays that is the reverse of the logical row-major order;
// callers that address the array logically must reverse their coordinates
// (see the slab package).
//
// # Errors
//
// All failures wrap one of the npyerr sentinels:
//
//   - npyerr.ErrRead: the file is shorter than the header claims
//   - npyerr.ErrFormat: missing magic, misaligned length, corrupted header text
//   - npyerr.ErrUnsupported: big-endian payloads, too many dimensions
package header
