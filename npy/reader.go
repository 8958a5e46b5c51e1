package npy

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-npy/internal/alloc"
	"github.com/robert-malhotra/go-npy/internal/dtype"
	"github.com/robert-malhotra/go-npy/internal/header"
	"github.com/robert-malhotra/go-npy/internal/layout"
	"github.com/robert-malhotra/go-npy/internal/npyerr"
	"github.com/robert-malhotra/go-npy/internal/slab"
	"github.com/robert-malhotra/go-npy/internal/stream"
)

// Sample is the result of reading one named sample.
type Sample struct {
	// Array holds the payload: the whole array in on-disk shape, or the
	// slab with its extent as shape.
	Array *Array

	// Header is the parsed header. Nil for skipped samples.
	Header *Header

	// Path is the resolved file path, empty when the sample was skipped.
	Path string

	// SourceInfo is the sample name as requested.
	SourceInfo string

	// Skip is set when the cache predicate claimed the sample.
	Skip bool

	// Meta is "transpose:true" for column-major files and
	// "transpose:false" otherwise.
	Meta string
}

// Transposed reports whether the sample was stored column-major.
func (s *Sample) Transposed() bool {
	return s.Meta == metaTranspose
}

const (
	metaTranspose   = "transpose:true"
	metaNoTranspose = "transpose:false"
)

// SampleReader reads named samples.
type SampleReader interface {
	ReadSample(name string) (*Sample, error)
}

// Reader reads .npy samples relative to a root directory.
type Reader struct {
	root string
	opts *readerOptions
	log  *zap.Logger
}

var _ SampleReader = (*Reader)(nil)

// NewReader returns a Reader for samples under root.
func NewReader(root string, opts ...Option) *Reader {
	o := defaultReaderOptions()
	for _, opt := range opts {
		opt(o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}
	return &Reader{
		root: root,
		opts: o,
		log:  log.With(zap.String("root", root), zap.Stringer("mode", o.mode)),
	}
}

// Root returns the directory sample names are resolved against.
func (r *Reader) Root() string { return r.root }

// Mode returns the read mode.
func (r *Reader) Mode() Mode { return r.opts.mode }

// ReadSample reads the sample called name. A sample the cache claims is
// returned empty with Skip set and no file is opened.
func (r *Reader) ReadSample(name string) (*Sample, error) {
	mode := r.opts.mode.String()

	if r.opts.cache.ShouldSkip(name) {
		r.log.Debug("skipping cached sample", zap.String("sample", name))
		r.opts.metrics.RecordSkip(mode)
		return &Sample{
			Array:      newArray([]byte{}, dtype.Byte, []int64{0}, nil),
			SourceInfo: name,
			Skip:       true,
		}, nil
	}

	start := time.Now()
	path := filepath.Join(r.root, name)
	s, err := r.read(path)
	if err != nil {
		r.log.Debug("sample read failed", zap.String("sample", name), zap.Error(err))
		r.opts.metrics.RecordError(mode)
		return nil, fmt.Errorf("reading sample %s: %w", path, err)
	}
	s.SourceInfo = name

	r.log.Debug("read sample",
		zap.String("sample", name),
		zap.Stringer("type", s.Header.Type),
		zap.Int64s("shape", s.Array.shape),
		zap.Int("bytes", s.Array.NBytes()),
		zap.String("meta", s.Meta))
	r.opts.metrics.RecordRead(mode, int64(s.Array.NBytes()), time.Since(start))
	return s, nil
}

func (r *Reader) read(path string) (*Sample, error) {
	st, err := r.opts.opener(path, stream.Options{
		ReadAhead: r.opts.readAhead,
		UseMmap:   r.opts.mmap,
		Allocator: r.opts.allocator,
	})
	if err != nil {
		return nil, err
	}
	defer st.Close()

	h, err := header.Parse(st)
	if err != nil {
		return nil, err
	}

	var arr *Array
	if r.opts.slab.Empty() {
		arr, err = r.readFull(st, h)
	} else {
		arr, err = r.readSlab(st, h)
	}
	if err != nil {
		return nil, err
	}

	meta := metaNoTranspose
	if h.Transposed() {
		meta = metaTranspose
	}
	return &Sample{Array: arr, Header: h, Path: path, Meta: meta}, nil
}

// readFull reads the whole payload. st is positioned at the payload.
func (r *Reader) readFull(st stream.Stream, h *header.Header) (*Array, error) {
	n := h.NBytes()
	if r.opts.mode == ShareMode {
		view, release, err := st.Get(n)
		if err != nil {
			return nil, err
		}
		return newArray(view, h.Type, h.Shape, release), nil
	}

	if remaining := st.Size() - st.Pos(); n > remaining {
		return nil, fmt.Errorf("%w: header claims %d payload bytes, file holds %d", npyerr.ErrRead, n, max(remaining, 0))
	}
	buf := alloc.Tagged(r.opts.allocator, int(n), "full")
	if got, err := io.ReadFull(st, buf); err != nil {
		return nil, fmt.Errorf("%w: wanted %d payload bytes, got %d: %v", npyerr.ErrRead, n, got, err)
	}
	return newArray(buf, h.Type, h.Shape, nil), nil
}

// readSlab reads the configured slab. In copy mode only the slab is read from
// the stream; in share mode the whole payload is viewed and the slab copied
// out of it.
func (r *Reader) readSlab(st stream.Stream, h *header.Header) (*Array, error) {
	plan, err := slab.NewPlan(r.opts.slab, h.Shape, h.Transposed())
	if err != nil {
		return nil, err
	}
	elemSize := int64(h.Type.Size)
	size := layout.SliceSize(plan, elemSize)

	if r.opts.mode == ShareMode {
		view, release, err := st.Get(h.NBytes())
		if err != nil {
			return nil, err
		}
		defer release()
		buf := alloc.Tagged(r.opts.allocator, int(size), "slab")
		if err := layout.CopySlice(buf, view, plan, elemSize); err != nil {
			return nil, err
		}
		return newArray(buf, h.Type, plan.Extent, nil), nil
	}

	if remaining := st.Size() - h.DataOffset; size > remaining {
		return nil, fmt.Errorf("%w: slab needs %d bytes, file holds %d payload bytes", npyerr.ErrRead, size, max(remaining, 0))
	}
	buf := alloc.Tagged(r.opts.allocator, int(size), "slab")
	if err := layout.ReadSlice(st, h.DataOffset, plan, elemSize, buf); err != nil {
		return nil, err
	}
	return newArray(buf, h.Type, plan.Extent, nil), nil
}
