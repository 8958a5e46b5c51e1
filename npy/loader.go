package npy

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-npy/internal/metrics"
)

// ErrEmptyShard is returned when a loader's partition holds no samples.
var ErrEmptyShard = errors.New("shard holds no samples")

// Loader walks a list of sample names in order, reading each through a
// SampleReader and wrapping around at the end of its shard. A Loader is not
// safe for concurrent use; run one per shard instead.
type Loader struct {
	reader  SampleReader
	names   []string // this shard's partition in list order
	order   []string // current iteration order
	cursor  int
	epoch   int
	shardID int
	shards  int
	shuffle bool
	seed    int64
	rng     *rand.Rand
	sharder Sharder
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewLoader returns a loader over names. With WithShard only the
// contiguous partition [id*n/num, (id+1)*n/num) is visited.
func NewLoader(reader SampleReader, names []string, opts ...LoaderOption) (*Loader, error) {
	if reader == nil {
		return nil, errors.New("nil sample reader")
	}
	o := defaultLoaderOptions()
	for _, opt := range opts {
		opt(o)
	}

	start, end := ShardBounds(len(names), o.shardID, o.numShards)
	if start == end {
		return nil, fmt.Errorf("%w: shard %d of %d over %d names", ErrEmptyShard, o.shardID, o.numShards, len(names))
	}

	log := o.logger
	if log == nil {
		log = Logger()
	}
	l := &Loader{
		reader:  reader,
		names:   slices.Clone(names[start:end]),
		shardID: o.shardID,
		shards:  o.numShards,
		shuffle: o.shuffle,
		seed:    o.seed,
		sharder: o.sharder,
		log:     log.With(zap.Int("shard", o.shardID), zap.Int("shards", o.numShards)),
		metrics: o.metrics,
	}
	l.Reset()
	return l, nil
}

// ShardBounds returns the half-open index range of partition id out of num
// over n items.
func ShardBounds(n, id, num int) (start, end int) {
	if num < 1 || id < 0 || id >= num {
		return 0, 0
	}
	return id * n / num, (id + 1) * n / num
}

// Next reads the sample under the cursor and advances it, wrapping to the
// start of the shard after the last sample. The cursor advances even when
// the read fails.
func (l *Loader) Next() (*Sample, error) {
	name := l.order[l.cursor]
	l.cursor++
	if l.cursor >= len(l.order) {
		l.wrap()
	}
	return l.reader.ReadSample(name)
}

// Peek returns the name Next will read.
func (l *Loader) Peek() string {
	return l.order[l.cursor]
}

func (l *Loader) wrap() {
	l.cursor = 0
	l.epoch++
	if l.shuffle {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	l.log.Debug("wrapped shard", zap.Int("epoch", l.epoch), zap.Bool("shuffled", l.shuffle))
	l.metrics.RecordWrap()
	if l.sharder != nil {
		l.sharder.OnWrap(l.epoch)
	}
}

// Epoch returns how many times the loader has wrapped.
func (l *Loader) Epoch() int { return l.epoch }

// Index returns the cursor position within the shard.
func (l *Loader) Index() int { return l.cursor }

// Len returns the number of samples in the shard.
func (l *Loader) Len() int { return len(l.names) }

// Shard returns the partition id and count.
func (l *Loader) Shard() (id, num int) { return l.shardID, l.shards }

// Names returns the shard's samples in current iteration order.
func (l *Loader) Names() []string { return slices.Clone(l.order) }

// Reset rewinds to the first sample of epoch zero in list order.
func (l *Loader) Reset() {
	l.order = slices.Clone(l.names)
	l.cursor = 0
	l.epoch = 0
	l.rng = rand.New(rand.NewSource(l.seed))
}
