package npy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-npy/internal/testutil/npyfile"
)

// recordingReader returns empty samples and remembers what it was asked for.
type recordingReader struct {
	names []string
	fail  map[string]bool
}

func (r *recordingReader) ReadSample(name string) (*Sample, error) {
	r.names = append(r.names, name)
	if r.fail[name] {
		return nil, errors.New("boom")
	}
	return &Sample{SourceInfo: name}, nil
}

func drain(t *testing.T, l *Loader, n int) []string {
	t.Helper()
	var got []string
	for i := 0; i < n; i++ {
		s, err := l.Next()
		require.NoError(t, err)
		got = append(got, s.SourceInfo)
	}
	return got
}

func TestLoaderWrapsAround(t *testing.T) {
	var wraps []int
	l, err := NewLoader(&recordingReader{}, []string{"a", "b", "c"},
		WithSharder(SharderFunc(func(epoch int) { wraps = append(wraps, epoch) })))
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())

	assert.Equal(t, []string{"a", "b", "c", "a", "b"}, drain(t, l, 5))
	assert.Equal(t, 1, l.Epoch())
	assert.Equal(t, 2, l.Index())
	assert.Equal(t, []int{1}, wraps)

	drain(t, l, 1)
	assert.Equal(t, []int{1, 2}, wraps)
	assert.Equal(t, 0, l.Index())
}

func TestLoaderCursorAdvancesOnError(t *testing.T) {
	rr := &recordingReader{fail: map[string]bool{"b": true}}
	l, err := NewLoader(rr, []string{"a", "b", "c"})
	require.NoError(t, err)

	_, err = l.Next()
	require.NoError(t, err)
	_, err = l.Next()
	require.Error(t, err)
	assert.Equal(t, "c", l.Peek())
}

func TestLoaderShards(t *testing.T) {
	names := []string{"0", "1", "2", "3", "4", "5", "6"}
	var all []string
	for id := 0; id < 3; id++ {
		l, err := NewLoader(&recordingReader{}, names, WithShard(id, 3))
		require.NoError(t, err)
		gotID, num := l.Shard()
		assert.Equal(t, id, gotID)
		assert.Equal(t, 3, num)
		all = append(all, l.Names()...)
	}
	assert.Equal(t, names, all, "partitions are contiguous and cover every name once")

	l, err := NewLoader(&recordingReader{}, names, WithShard(1, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "2", "3"}, drain(t, l, 4))
}

func TestShardBounds(t *testing.T) {
	tests := []struct {
		n, id, num int
		start, end int
	}{
		{10, 0, 1, 0, 10},
		{10, 0, 3, 0, 3},
		{10, 1, 3, 3, 6},
		{10, 2, 3, 6, 10},
		{2, 0, 4, 0, 0},
		{5, 3, 3, 0, 0},
		{5, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		start, end := ShardBounds(tt.n, tt.id, tt.num)
		assert.Equal(t, tt.start, start, "%+v", tt)
		assert.Equal(t, tt.end, end, "%+v", tt)
	}
}

func TestLoaderEmptyShard(t *testing.T) {
	_, err := NewLoader(&recordingReader{}, nil)
	assert.ErrorIs(t, err, ErrEmptyShard)

	// Shard 1 of 2 over one name is [0, 1); shard 0 is the empty one.
	_, err = NewLoader(&recordingReader{}, []string{"a"}, WithShard(0, 2))
	assert.ErrorIs(t, err, ErrEmptyShard)

	_, err = NewLoader(nil, []string{"a"})
	assert.Error(t, err)
}

func TestLoaderShuffleAfterEpoch(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	l1, err := NewLoader(&recordingReader{}, names, WithShuffleAfterEpoch(42))
	require.NoError(t, err)
	l2, err := NewLoader(&recordingReader{}, names, WithShuffleAfterEpoch(42))
	require.NoError(t, err)

	first := drain(t, l1, len(names))
	assert.Equal(t, names, first, "first epoch keeps list order")

	second := drain(t, l1, len(names))
	assert.ElementsMatch(t, names, second)
	drain(t, l2, len(names))
	assert.Equal(t, second, drain(t, l2, len(names)), "same seed, same order")

	l1.Reset()
	assert.Equal(t, 0, l1.Epoch())
	assert.Equal(t, names, l1.Names())
}

func TestLoaderOverReader(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "a.npy", "<i8", false, []int64{1}, npyfile.Int64s(7))
	writeSample(t, dir, "b.npy", "<i8", false, []int64{1}, npyfile.Int64s(8))

	l, err := NewLoader(NewReader(dir, WithCache(NewMemoryCache("b.npy"))), []string{"a.npy", "b.npy"})
	require.NoError(t, err)

	s, err := l.Next()
	require.NoError(t, err)
	vals, err := s.Array.Int64s()
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, vals)

	s, err = l.Next()
	require.NoError(t, err)
	assert.True(t, s.Skip)
	assert.Equal(t, 1, l.Epoch())
}
