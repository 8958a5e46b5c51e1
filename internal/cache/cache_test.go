package cache

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNone(t *testing.T) {
	assert.False(t, None.ShouldSkip("a.npy"))
}

func TestFunc(t *testing.T) {
	p := Func(func(name string) bool { return name == "hit.npy" })
	assert.True(t, p.ShouldSkip("hit.npy"))
	assert.False(t, p.ShouldSkip("miss.npy"))
}

func TestMemory(t *testing.T) {
	m := NewMemory("a.npy")
	assert.True(t, m.ShouldSkip("a.npy"))
	assert.False(t, m.ShouldSkip("b.npy"))

	require.NoError(t, m.Mark("b.npy"))
	assert.True(t, m.ShouldSkip("b.npy"))
	assert.Equal(t, 2, m.Len())
}

func TestPebble(t *testing.T) {
	dir := t.TempDir()
	run := ksuid.New()

	p, err := OpenPebble(dir, run)
	require.NoError(t, err)

	assert.False(t, p.ShouldSkip("x/0.npy"))
	require.NoError(t, p.Mark("x/0.npy"))
	assert.True(t, p.ShouldSkip("x/0.npy"))

	owner, ok, err := p.Owner("x/0.npy")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, run, owner)

	require.NoError(t, p.Mark("x/1.npy"))
	require.NoError(t, p.Forget("x/1.npy"))
	assert.False(t, p.ShouldSkip("x/1.npy"))
	require.NoError(t, p.Close())

	// Entries survive reopening under a different run.
	p, err = OpenPebble(dir, ksuid.New())
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, p.ShouldSkip("x/0.npy"))
	owner, _, err = p.Owner("x/0.npy")
	require.NoError(t, err)
	assert.Equal(t, run, owner)
}
