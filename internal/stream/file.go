package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/robert-malhotra/go-npy/internal/alloc"
)

// fileStream reads through an *os.File with an optional read-ahead buffer.
type fileStream struct {
	path string
	f    *os.File
	br   *bufio.Reader // nil when read-ahead is disabled
	pos  int64
	size int64
	buf  alloc.Allocator
}

func openFile(path string, readAhead int, a alloc.Allocator) (*fileStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if a == nil {
		a = alloc.Heap{}
	}
	s := &fileStream{path: path, f: f, size: info.Size(), buf: a}
	if readAhead > 0 {
		s.br = bufio.NewReaderSize(f, readAhead)
	}
	return s, nil
}

func (s *fileStream) Read(p []byte) (int, error) {
	var n int
	var err error
	if s.br != nil {
		n, err = s.br.Read(p)
	} else {
		n, err = s.f.Read(p)
	}
	s.pos += int64(n)
	return n, err
}

func (s *fileStream) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileStream) SeekTo(offset int64) error {
	if offset == s.pos {
		return nil
	}
	if _, err := s.f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking %s to %d: %w", s.path, offset, err)
	}
	if s.br != nil {
		s.br.Reset(s.f)
	}
	s.pos = offset
	return nil
}

func (s *fileStream) Pos() int64   { return s.pos }
func (s *fileStream) Size() int64  { return s.size }
func (s *fileStream) Path() string { return s.path }

// Get cannot share the file's storage, so it reads into a fresh buffer whose
// ownership passes to the caller.
func (s *fileStream) Get(n int64) ([]byte, func(), error) {
	if err := checkGet(s, n); err != nil {
		return nil, noRelease, err
	}
	buf := alloc.Tagged(s.buf, int(n), "stream")
	start := s.pos
	got, err := io.ReadFull(s, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, noRelease, shortRead(s.path, n, int64(got), start)
		}
		return nil, noRelease, err
	}
	return buf, noRelease, nil
}

func (s *fileStream) Close() error {
	return s.f.Close()
}
