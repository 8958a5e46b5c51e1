package stream

import (
	"io"
)

// memStream serves reads from a byte slice. Get returns sub-slices of it.
type memStream struct {
	name string
	data []byte
	pos  int64
}

// FromBytes returns a stream over data. The name is reported by Path.
func FromBytes(name string, data []byte) Stream {
	return &memStream{name: name, data: data}
}

func (s *memStream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *memStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *memStream) SeekTo(offset int64) error {
	s.pos = offset
	return nil
}

func (s *memStream) Pos() int64   { return s.pos }
func (s *memStream) Size() int64  { return int64(len(s.data)) }
func (s *memStream) Path() string { return s.name }

func (s *memStream) Get(n int64) ([]byte, func(), error) {
	if err := checkGet(s, n); err != nil {
		return nil, noRelease, err
	}
	view := s.data[s.pos : s.pos+n : s.pos+n]
	s.pos += n
	return view, noRelease, nil
}

func (s *memStream) Close() error { return nil }
