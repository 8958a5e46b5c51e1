package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-npy/internal/cache"
	"github.com/robert-malhotra/go-npy/internal/config"
	"github.com/robert-malhotra/go-npy/npy"
)

// readCmd reads samples through a loader, the way a training job would.
var readCmd = &cobra.Command{
	Use:   "read [name...]",
	Short: "Read samples whole or as slabs",
	Long: `Read samples relative to --root through a sharded loader.

Sample names come from the arguments, from --file-list, or from walking
--root for files matching --pattern, in that order.

Examples:
  npyread read --root ./data --count 100
  npyread read --root ./data --anchor 0,0 --extent 16,16 --share --mmap
  npyread read --root ./data --shard-id 1 --shards 4 --cache-dir ./cache --mark-cached
  npyread read -c run.yaml --metrics-addr :9100 --hold`,
	RunE: runRead,
}

func init() {
	f := readCmd.Flags()
	f.String("root", ".", "Directory sample names are relative to")
	f.String("file-list", "", "File with one sample name per line")
	f.String("pattern", "*.npy", "Glob for discovered sample files")
	f.Bool("share", false, "Share-mode reads (views of stream storage)")
	f.Bool("mmap", false, "Memory-map sample files")
	f.Int("read-ahead", 64<<10, "Read-ahead window in bytes, 0 disables buffering")
	f.Int64Slice("anchor", nil, "Slab anchor in logical order")
	f.Int64Slice("extent", nil, "Slab extent in logical order")
	f.Int("shard-id", 0, "Partition to read")
	f.Int("shards", 1, "Number of partitions")
	f.Int64("shuffle-seed", 0, "Reshuffle the shard with this seed after each epoch")
	f.String("cache-dir", "", "Pebble index of samples cached downstream")
	f.Bool("mark-cached", false, "Record every sample read in the cache index")
	f.String("metrics-addr", "", "Serve prometheus metrics on this address")
	f.IntP("count", "n", 0, "Samples to read, 0 reads one epoch")
	f.Bool("hold", false, "Keep serving metrics after reading until interrupted")
	rootCmd.AddCommand(readCmd)
}

// applyReadFlags overrides configuration values with flags set on the command line.
func applyReadFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && f.Changed(name) {
			err = apply()
		}
	}
	set("root", func() (e error) { c.Root, e = f.GetString("root"); return })
	set("file-list", func() (e error) { c.FileList, e = f.GetString("file-list"); return })
	set("pattern", func() (e error) { c.Pattern, e = f.GetString("pattern"); return })
	set("share", func() error {
		share, e := f.GetBool("share")
		c.Read.CopyMode = !share
		return e
	})
	set("mmap", func() (e error) { c.Read.Mmap, e = f.GetBool("mmap"); return })
	set("read-ahead", func() (e error) { c.Read.ReadAhead, e = f.GetInt("read-ahead"); return })
	set("anchor", func() (e error) { c.Slab.Anchor, e = f.GetInt64Slice("anchor"); return })
	set("extent", func() (e error) { c.Slab.Extent, e = f.GetInt64Slice("extent"); return })
	set("shard-id", func() (e error) { c.Shard.ID, e = f.GetInt("shard-id"); return })
	set("shards", func() (e error) { c.Shard.Count, e = f.GetInt("shards"); return })
	set("shuffle-seed", func() error {
		seed, e := f.GetInt64("shuffle-seed")
		c.Shard.ShuffleSeed = &seed
		return e
	})
	set("cache-dir", func() (e error) { c.Cache.Dir, e = f.GetString("cache-dir"); return })
	set("metrics-addr", func() (e error) { c.Metrics.Addr, e = f.GetString("metrics-addr"); return })
	if err != nil {
		return err
	}
	return c.Validate()
}

// sampleNames resolves the list of samples to read.
func sampleNames(args []string, c *config.Config) ([]string, error) {
	switch {
	case len(args) > 0:
		return args, nil
	case c.FileList != "":
		return npy.ReadFileList(c.FileList)
	default:
		return npy.Discover(c.Root, c.Pattern)
	}
}

func readerOptions(c *config.Config) []npy.Option {
	opts := []npy.Option{
		npy.WithMmap(c.Read.Mmap),
		npy.WithReadAhead(c.Read.ReadAhead),
	}
	if c.Read.CopyMode {
		opts = append(opts, npy.WithCopyMode())
	} else {
		opts = append(opts, npy.WithShareMode())
	}
	if len(c.Slab.Anchor) > 0 {
		opts = append(opts, npy.WithSlab(c.Slab.Anchor, c.Slab.Extent))
	}
	return opts
}

func loaderOptions(c *config.Config) []npy.LoaderOption {
	opts := []npy.LoaderOption{npy.WithShard(c.Shard.ID, c.Shard.Count)}
	if c.Shard.ShuffleSeed != nil {
		opts = append(opts, npy.WithShuffleAfterEpoch(*c.Shard.ShuffleSeed))
	}
	return opts
}

func runRead(cmd *cobra.Command, args []string) error {
	if err := applyReadFlags(cmd, cfg); err != nil {
		return err
	}
	count, _ := cmd.Flags().GetInt("count")
	markCached, _ := cmd.Flags().GetBool("mark-cached")
	hold, _ := cmd.Flags().GetBool("hold")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := ksuid.New()
	runLog := log.With(zap.Stringer("run", runID))

	names, err := sampleNames(args, cfg)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no samples found under %s", cfg.Root)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := npy.NewMetrics(reg)
	if err != nil {
		return err
	}

	opts := append(readerOptions(cfg), npy.WithMetrics(m), npy.WithLogger(runLog))
	var index *cache.Pebble
	if cfg.Cache.Dir != "" {
		index, err = cache.OpenPebble(cfg.Cache.Dir, runID)
		if err != nil {
			return err
		}
		defer index.Close()
		opts = append(opts, npy.WithCache(index))
	}

	if cfg.Metrics.Addr != "" {
		srv := newMetricsServer(cfg.Metrics.Addr, cfg.Metrics.Path, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				runLog.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer shutdown(srv, runLog)
		runLog.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr), zap.String("path", cfg.Metrics.Path))
	}

	reader := npy.NewReader(cfg.Root, opts...)
	loader, err := npy.NewLoader(reader, names,
		append(loaderOptions(cfg), npy.WithLoaderMetrics(m), npy.WithLoaderLogger(runLog))...)
	if err != nil {
		return err
	}
	if count <= 0 {
		count = loader.Len()
	}

	runLog.Info("reading samples",
		zap.Int("samples", count),
		zap.Int("shard_len", loader.Len()),
		zap.Stringer("mode", reader.Mode()))

	out := cmd.OutOrStdout()
	failed := 0
	for i := 0; i < count && ctx.Err() == nil; i++ {
		s, err := loader.Next()
		if err != nil {
			cmd.PrintErrf("%v\n", err)
			failed++
			continue
		}
		printSample(out, s)
		if markCached && index != nil && !s.Skip {
			if err := index.Mark(s.SourceInfo); err != nil {
				return err
			}
		}
		s.Array.Release()
	}

	if hold && cfg.Metrics.Addr != "" {
		runLog.Info("holding for metrics scrapes, interrupt to exit")
		<-ctx.Done()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d samples failed", failed, count)
	}
	return nil
}

func printSample(w io.Writer, s *npy.Sample) {
	if s.Skip {
		fmt.Fprintf(w, "%s\tskipped (cached)\n", s.SourceInfo)
		return
	}
	fmt.Fprintf(w, "%s\t%s\tshape=%v\t%d bytes\t%s\n",
		s.SourceInfo, s.Array.Type(), s.Array.Shape(), s.Array.NBytes(), s.Meta)
}

func shutdown(srv *http.Server, l *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Warn("metrics server shutdown", zap.Error(err))
	}
}
