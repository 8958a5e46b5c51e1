//go:build unix

package stream

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

const mmapSupported = true

// mmapStream serves reads from a read-only mapping of the whole file.
// The mapping outlives Close while views handed out by Get are still held.
type mmapStream struct {
	path string
	data []byte
	pos  int64

	mu     sync.Mutex
	views  int
	closed bool
}

func openMmap(path string) (*mmapStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	// The descriptor is not needed once the mapping exists.
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	s := &mmapStream{path: path}
	if info.Size() == 0 {
		return s, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	s.data = data
	return s, nil
}

func (s *mmapStream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *mmapStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *mmapStream) SeekTo(offset int64) error {
	s.pos = offset
	return nil
}

func (s *mmapStream) Pos() int64   { return s.pos }
func (s *mmapStream) Size() int64  { return int64(len(s.data)) }
func (s *mmapStream) Path() string { return s.path }

func (s *mmapStream) Get(n int64) ([]byte, func(), error) {
	if err := checkGet(s, n); err != nil {
		return nil, noRelease, err
	}
	view := s.data[s.pos : s.pos+n : s.pos+n]
	s.pos += n

	s.mu.Lock()
	s.views++
	s.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.views--
			s.unmapLocked()
		})
	}
	return view, release, nil
}

func (s *mmapStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.unmapLocked()
}

// unmapLocked drops the mapping once the stream is closed and no views remain.
func (s *mmapStream) unmapLocked() error {
	if !s.closed || s.views > 0 || s.data == nil {
		return nil
	}
	data := s.data
	s.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap %s: %w", s.path, err)
	}
	return nil
}
