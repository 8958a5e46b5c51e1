package npy

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-npy/internal/alloc"
	"github.com/robert-malhotra/go-npy/internal/cache"
	"github.com/robert-malhotra/go-npy/internal/metrics"
	"github.com/robert-malhotra/go-npy/internal/slab"
	"github.com/robert-malhotra/go-npy/internal/stream"
)

// Allocator hands out the buffers samples are decoded into.
type Allocator = alloc.Allocator

// Cache reports whether a sample is already held downstream and can be
// skipped.
type Cache = cache.Predicate

// CacheFunc adapts a function to a Cache.
type CacheFunc = cache.Func

// NewMemoryCache returns an in-process cache holding names.
func NewMemoryCache(names ...string) *cache.Memory {
	return cache.NewMemory(names...)
}

// Stream is an open sample file.
type Stream = stream.Stream

// StreamOptions configures how sample files are opened.
type StreamOptions = stream.Options

// Opener opens the stream for a resolved sample path.
type Opener = stream.Opener

// Metrics holds the prometheus collectors samples are counted in.
type Metrics = metrics.Metrics

// NewMetrics registers sample collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	return metrics.New(reg)
}

// Mode selects how payload bytes reach the caller.
type Mode uint8

const (
	// CopyMode reads into buffers the reader allocates.
	CopyMode Mode = iota
	// ShareMode takes a view of the stream's storage and, for full reads,
	// hands it to the caller without copying.
	ShareMode
)

func (m Mode) String() string {
	if m == ShareMode {
		return "share"
	}
	return "copy"
}

// Option configures a Reader.
type Option func(*readerOptions)

type readerOptions struct {
	mode      Mode
	readAhead int
	mmap      bool
	slab      *slab.Request
	allocator alloc.Allocator
	cache     cache.Predicate
	opener    stream.Opener
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func defaultReaderOptions() *readerOptions {
	return &readerOptions{
		mode:      CopyMode,
		allocator: alloc.Heap{},
		cache:     cache.None,
		opener:    stream.Open,
	}
}

// WithCopyMode reads payloads into reader-allocated buffers. This is the
// default.
func WithCopyMode() Option {
	return func(o *readerOptions) { o.mode = CopyMode }
}

// WithShareMode hands out views of the stream's storage where possible.
func WithShareMode() Option {
	return func(o *readerOptions) { o.mode = ShareMode }
}

// WithMode sets the read mode.
func WithMode(m Mode) Option {
	return func(o *readerOptions) { o.mode = m }
}

// WithMmap opens files memory-mapped, so share mode is zero-copy.
func WithMmap(enabled bool) Option {
	return func(o *readerOptions) { o.mmap = enabled }
}

// WithReadAhead sets the buffered read-ahead window in bytes.
func WithReadAhead(n int) Option {
	return func(o *readerOptions) {
		if n >= 0 {
			o.readAhead = n
		}
	}
}

// WithSlab restricts every read to the box starting at anchor with the given
// extent, both in logical order. Empty slices read whole samples.
func WithSlab(anchor, extent []int64) Option {
	return func(o *readerOptions) { o.slab = slab.NewRequest(anchor, extent) }
}

// WithAllocator sets the allocator payload buffers come from.
func WithAllocator(a Allocator) Option {
	return func(o *readerOptions) {
		if a != nil {
			o.allocator = a
		}
	}
}

// WithCache sets the predicate consulted before every read.
func WithCache(c Cache) Option {
	return func(o *readerOptions) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithOpener replaces the function sample files are opened with.
func WithOpener(open Opener) Option {
	return func(o *readerOptions) {
		if open != nil {
			o.opener = open
		}
	}
}

// WithLogger sets the logger for this reader instead of the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *readerOptions) { o.logger = l }
}

// WithMetrics counts reads in m.
func WithMetrics(m *Metrics) Option {
	return func(o *readerOptions) { o.metrics = m }
}

// Sharder is told when a loader wraps around to the start of its shard.
type Sharder interface {
	OnWrap(epoch int)
}

// SharderFunc adapts a function to a Sharder.
type SharderFunc func(epoch int)

func (f SharderFunc) OnWrap(epoch int) { f(epoch) }

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	shardID   int
	numShards int
	shuffle   bool
	seed      int64
	sharder   Sharder
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func defaultLoaderOptions() *loaderOptions {
	return &loaderOptions{numShards: 1}
}

// WithShard restricts the loader to partition id of num contiguous
// partitions. Invalid values are ignored.
func WithShard(id, num int) LoaderOption {
	return func(o *loaderOptions) {
		if num >= 1 && id >= 0 && id < num {
			o.shardID, o.numShards = id, num
		}
	}
}

// WithShuffleAfterEpoch reshuffles the shard with a seeded source each time
// the loader wraps.
func WithShuffleAfterEpoch(seed int64) LoaderOption {
	return func(o *loaderOptions) {
		o.shuffle = true
		o.seed = seed
	}
}

// WithSharder notifies s on every wrap.
func WithSharder(s Sharder) LoaderOption {
	return func(o *loaderOptions) { o.sharder = s }
}

// WithLoaderLogger sets the logger for this loader.
func WithLoaderLogger(l *zap.Logger) LoaderOption {
	return func(o *loaderOptions) { o.logger = l }
}

// WithLoaderMetrics counts epoch wraps in m.
func WithLoaderMetrics(m *Metrics) LoaderOption {
	return func(o *loaderOptions) { o.metrics = m }
}
