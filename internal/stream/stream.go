// Package stream provides the file-handle abstraction samples are read through.
//
// A Stream is a positioned byte source with three ways of getting at the
// payload: sequential Read, random-access ReadAt, and Get, which hands out a
// view of the next n bytes together with ownership of whatever backs it.
// Memory-mapped and in-memory streams return true zero-copy views; the plain
// file stream has to allocate and read.
package stream

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-npy/internal/alloc"
	"github.com/robert-malhotra/go-npy/internal/npyerr"
)

// Stream is an open sample file.
type Stream interface {
	io.Reader
	io.ReaderAt

	// SeekTo moves to an absolute offset.
	SeekTo(offset int64) error

	// Pos returns the current offset.
	Pos() int64

	// Size returns the total size of the stream in bytes.
	Size() int64

	// Get returns the next n bytes and advances past them. The release
	// func hands back the storage behind the view; the view must not be
	// used after it has been called. Release is never nil.
	Get(n int64) (view []byte, release func(), err error)

	// Path returns the path the stream was opened from.
	Path() string

	Close() error
}

// Options configures how files are opened.
type Options struct {
	// ReadAhead is the buffered read-ahead window in bytes. It is a hint;
	// zero disables buffering.
	ReadAhead int

	// UseMmap maps the file into memory so Get can return zero-copy views.
	// Ignored on platforms without mmap support.
	UseMmap bool

	// Allocator backs the buffers Get has to allocate. Defaults to the heap.
	Allocator alloc.Allocator
}

// Opener opens the stream for a resolved sample path.
type Opener func(path string, opts Options) (Stream, error)

// Open opens path with the given options.
func Open(path string, opts Options) (Stream, error) {
	if opts.UseMmap && mmapSupported {
		s, err := openMmap(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := openFile(path, opts.ReadAhead, opts.Allocator)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func noRelease() {}

// shortRead builds the error for a read that came up short.
func shortRead(path string, want, got int64, off int64) error {
	return fmt.Errorf("%w: %s: wanted %d bytes at offset %d, got %d", npyerr.ErrRead, path, want, off, got)
}

// checkGet validates a Get request against the remaining bytes.
func checkGet(s Stream, n int64) error {
	if n < 0 {
		return fmt.Errorf("negative view length %d", n)
	}
	if remaining := s.Size() - s.Pos(); n > remaining {
		return shortRead(s.Path(), n, max(remaining, 0), s.Pos())
	}
	return nil
}
