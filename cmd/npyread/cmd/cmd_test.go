package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robert-malhotra/go-npy/internal/cache"
	"github.com/robert-malhotra/go-npy/internal/config"
	"github.com/robert-malhotra/go-npy/internal/testutil/npyfile"
	"github.com/robert-malhotra/go-npy/npy"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := npyfile.Write(t, dir, "a.npy", npyfile.Encode("<f4", true, []int64{3, 4}, make([]byte, 48)))

	out, err := execute(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Descr:       <f4")
	assert.Contains(t, out, "Order:       fortran")
	assert.Contains(t, out, "Shape:       [3 4]")
	assert.Contains(t, out, "Payload:     48 bytes")

	_, err = execute(t, "inspect", filepath.Join(dir, "missing.npy"))
	assert.Error(t, err)
}

func TestReadCommand(t *testing.T) {
	dir := t.TempDir()
	npyfile.Write(t, dir, "a.npy", npyfile.Encode("<i4", false, []int64{3, 3}, npyfile.Int32Range(9)))
	npyfile.Write(t, dir, "b.npy", npyfile.Encode("<i4", false, []int64{3, 3}, npyfile.Int32Range(9)))
	cacheDir := filepath.Join(t.TempDir(), "cache")

	out, err := execute(t, "read", "--root", dir, "--anchor", "1,1", "--extent", "2,2",
		"--cache-dir", cacheDir, "--mark-cached")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "a.npy\tint32\tshape=[2 2]\t16 bytes\ttranspose:false")

	out, err = execute(t, "read", "--root", dir, "--cache-dir", cacheDir, "a.npy")
	require.NoError(t, err)
	assert.Contains(t, out, "a.npy\tskipped (cached)")
}

func TestApplyReadFlagsValidates(t *testing.T) {
	c := config.Default()
	require.NoError(t, readCmd.Flags().Set("shard-id", "5"))
	require.NoError(t, readCmd.Flags().Set("shards", "2"))
	t.Cleanup(func() {
		_ = readCmd.Flags().Set("shard-id", "0")
		_ = readCmd.Flags().Set("shards", "1")
	})

	err := applyReadFlags(readCmd, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shard id 5")
}

func TestReaderOptionsFromConfig(t *testing.T) {
	dir := t.TempDir()
	npyfile.Write(t, dir, "m.npy", npyfile.Encode("<i4", true, []int64{2, 3}, npyfile.Int32Range(6)))

	c := config.Default()
	c.Read.CopyMode = false
	c.Slab.Anchor = []int64{1, 0}
	c.Slab.Extent = []int64{2, 2}

	r := npy.NewReader(dir, append(readerOptions(c), npy.WithCache(cache.None))...)
	assert.Equal(t, npy.ShareMode, r.Mode())
	s, err := r.ReadSample("m.npy")
	require.NoError(t, err)
	vals, err := s.Array.Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 4, 5}, vals)
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := npy.NewMetrics(reg)
	require.NoError(t, err)
	m.RecordSkip("copy")

	srv := httptest.NewServer(newMetricsRouter("/metrics", reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `npy_reader_samples_total{mode="copy",outcome="skipped"} 1`)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}
