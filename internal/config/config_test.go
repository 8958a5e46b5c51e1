package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "*.npy", cfg.Pattern)
	assert.True(t, cfg.Read.CopyMode)
	assert.Equal(t, 1, cfg.Shard.Count)
	assert.Nil(t, cfg.Shard.ShuffleSeed)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := `
root: /data/train
read:
  copy_mode: false
  mmap: true
slab:
  anchor: [0, 4]
  extent: [2, 8]
shard:
  id: 1
  count: 4
  shuffle_seed: 7
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/train", cfg.Root)
	assert.False(t, cfg.Read.CopyMode)
	assert.True(t, cfg.Read.Mmap)
	assert.Equal(t, 64<<10, cfg.Read.ReadAhead, "unset fields keep defaults")
	assert.Equal(t, []int64{0, 4}, cfg.Slab.Anchor)
	assert.Equal(t, []int64{2, 8}, cfg.Slab.Extent)
	assert.Equal(t, 1, cfg.Shard.ID)
	assert.Equal(t, 4, cfg.Shard.Count)
	require.NotNil(t, cfg.Shard.ShuffleSeed)
	assert.Equal(t, int64(7), *cfg.Shard.ShuffleSeed)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "*.npy", cfg.Pattern)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	content := `
root = "/data/val"
pattern = "*_x.npy"

[read]
copy_mode = true
read_ahead = 0

[cache]
dir = "/tmp/cache"

[metrics]
addr = ":9100"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/val", cfg.Root)
	assert.Equal(t, "*_x.npy", cfg.Pattern)
	assert.Equal(t, 0, cfg.Read.ReadAhead)
	assert.Equal(t, "/tmp/cache", cfg.Cache.Dir)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("root: [unterminated"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[shard]\nid = 3\ncount = 2\n"), 0o644))
	_, err = Load(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shard id 3")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty root", func(c *Config) { c.Root = "" }, "root is required"},
		{"negative read-ahead", func(c *Config) { c.Read.ReadAhead = -1 }, "read_ahead"},
		{"slab rank mismatch", func(c *Config) { c.Slab.Anchor = []int64{0}; c.Slab.Extent = []int64{1, 1} }, "anchor has 1 dims"},
		{"slab too deep", func(c *Config) { c.Slab.Anchor = make([]int64, 8); c.Slab.Extent = make([]int64, 8) }, "at most 7"},
		{"negative anchor", func(c *Config) { c.Slab.Anchor = []int64{-1}; c.Slab.Extent = []int64{1} }, "anchor[0]"},
		{"zero shards", func(c *Config) { c.Shard.Count = 0 }, "shard count"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	seed := int64(3)
	cfg := Default()
	cfg.Root = "/data"
	cfg.Shard = Shard{ID: 0, Count: 2, ShuffleSeed: &seed}

	for _, name := range []string{"out.yaml", "out.toml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(cfg, path))
		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, got, name)
	}
}
