// Package binary provides positioned, exact-length reads for .npy decoding.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-npy/internal/npyerr"
)

// Reader reads little-endian fields from an io.ReaderAt while tracking its
// own position. Every read is exact: a short read fails with npyerr.ErrRead.
type Reader struct {
	r   io.ReaderAt
	pos int64
}

// NewReader creates a reader positioned at offset 0.
func NewReader(r io.ReaderAt) *Reader {
	return &Reader{r: r}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// SeekTo moves the reader to an absolute offset.
func (r *Reader) SeekTo(offset int64) {
	r.pos = offset
}

// ReadFull fills buf from the current position and advances past it.
func (r *Reader) ReadFull(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := r.r.ReadAt(buf, r.pos)
	if n < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: wanted %d bytes at offset %d, got %d", npyerr.ErrRead, len(buf), r.pos, n)
		}
		return fmt.Errorf("%w: %v", npyerr.ErrRead, err)
	}
	r.pos += int64(n)
	return nil
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}
