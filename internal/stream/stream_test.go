package stream

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-npy/internal/alloc"
	"github.com/robert-malhotra/go-npy/internal/npyerr"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

// exercise runs the behaviour every Stream implementation must share.
func exercise(t *testing.T, s Stream, data []byte) {
	t.Helper()
	assert.Equal(t, int64(len(data)), s.Size())
	assert.Equal(t, int64(0), s.Pos())

	head := make([]byte, 4)
	_, err := io.ReadFull(s, head)
	require.NoError(t, err)
	assert.Equal(t, data[:4], head)
	assert.Equal(t, int64(4), s.Pos())

	at := make([]byte, 3)
	_, err = s.ReadAt(at, 10)
	require.NoError(t, err)
	assert.Equal(t, data[10:13], at)
	assert.Equal(t, int64(4), s.Pos(), "ReadAt must not move the position")

	require.NoError(t, s.SeekTo(8))
	view, release, err := s.Get(8)
	require.NoError(t, err)
	require.NotNil(t, release)
	assert.Equal(t, data[8:16], view)
	assert.Equal(t, int64(16), s.Pos())
	release()

	_, _, err = s.Get(int64(len(data)))
	assert.ErrorIs(t, err, npyerr.ErrRead)
}

func TestMemoryStream(t *testing.T) {
	data := payload(64)
	s := FromBytes("mem", data)
	defer s.Close()

	assert.Equal(t, "mem", s.Path())
	exercise(t, s, data)

	// Views alias the backing slice.
	require.NoError(t, s.SeekTo(0))
	view, _, err := s.Get(1)
	require.NoError(t, err)
	view[0] = 0xAA
	assert.Equal(t, byte(0xAA), data[0])
}

func TestFileStream(t *testing.T) {
	data := payload(64)
	path := writeTemp(t, data)

	for _, readAhead := range []int{0, 16, 1 << 20} {
		s, err := Open(path, Options{ReadAhead: readAhead})
		require.NoError(t, err)
		assert.Equal(t, path, s.Path())
		exercise(t, s, data)
		require.NoError(t, s.Close())
	}
}

func TestFileStreamSeekResetsReadAhead(t *testing.T) {
	data := payload(64)
	s, err := Open(writeTemp(t, data), Options{ReadAhead: 32})
	require.NoError(t, err)
	defer s.Close()

	one := make([]byte, 1)
	_, err = s.Read(one)
	require.NoError(t, err)

	require.NoError(t, s.SeekTo(40))
	_, err = io.ReadFull(s, one)
	require.NoError(t, err)
	assert.Equal(t, byte(40), one[0])
}

func TestMmapStream(t *testing.T) {
	if !mmapSupported {
		t.Skip("mmap not supported on this platform")
	}
	data := payload(4096)
	s, err := Open(writeTemp(t, data), Options{UseMmap: true})
	require.NoError(t, err)
	exercise(t, s, data)
	require.NoError(t, s.Close())
}

func TestMmapViewOutlivesClose(t *testing.T) {
	if !mmapSupported {
		t.Skip("mmap not supported on this platform")
	}
	data := payload(256)
	s, err := Open(writeTemp(t, data), Options{UseMmap: true})
	require.NoError(t, err)

	require.NoError(t, s.SeekTo(128))
	view, release, err := s.Get(128)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// The mapping stays valid until the view is released.
	assert.Equal(t, data[128:], view)
	release()
	release() // idempotent
}

func TestMmapEmptyFile(t *testing.T) {
	if !mmapSupported {
		t.Skip("mmap not supported on this platform")
	}
	s, err := Open(writeTemp(t, nil), Options{UseMmap: true})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, int64(0), s.Size())

	_, err = s.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.npy"), Options{})
	assert.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileStreamGetUsesAllocator(t *testing.T) {
	counter := alloc.NewCounting()
	s, err := Open(writeTemp(t, payload(32)), Options{Allocator: counter})
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Get(20)
	require.NoError(t, err)
	assert.Equal(t, []alloc.Allocation{{Size: 20, Tag: "stream"}}, counter.Allocations())
}
