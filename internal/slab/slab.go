// Package slab validates rectangular sub-array requests against a sample.
//
// Requests are written in logical (row-major) dimension order. For
// fortran-ordered samples the on-disk dimension order is reversed, so [Plan]
// reverses the request before checking it against the on-disk shape. The
// resulting [Plan] is expressed entirely in on-disk coordinates.
package slab

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-npy/internal/npyerr"
)

// Request is a slab in logical coordinates. It is never modified after
// construction.
type Request struct {
	anchor []int64
	extent []int64
}

// NewRequest copies anchor and extent into a Request.
func NewRequest(anchor, extent []int64) *Request {
	return &Request{anchor: slices.Clone(anchor), extent: slices.Clone(extent)}
}

// Anchor returns a copy of the per-dimension start offsets.
func (r *Request) Anchor() []int64 { return slices.Clone(r.anchor) }

// Extent returns a copy of the per-dimension lengths.
func (r *Request) Extent() []int64 { return slices.Clone(r.extent) }

// Empty reports whether the request selects the whole sample.
func (r *Request) Empty() bool {
	return r == nil || len(r.anchor) == 0 || len(r.extent) == 0
}

func (r *Request) String() string {
	if r.Empty() {
		return "all"
	}
	return fmt.Sprintf("anchor=%v extent=%v", r.anchor, r.extent)
}

// Plan is a validated slab in on-disk coordinates.
type Plan struct {
	Anchor []int64
	Extent []int64
	Shape  []int64 // on-disk shape of the whole sample
}

// NumElements returns the number of elements covered by the plan.
func (p *Plan) NumElements() int64 {
	n := int64(1)
	for _, e := range p.Extent {
		n *= e
	}
	return n
}

// Full reports whether the plan covers the entire sample.
func (p *Plan) Full() bool {
	for i := range p.Shape {
		if p.Anchor[i] != 0 || p.Extent[i] != p.Shape[i] {
			return false
		}
	}
	return true
}

// NewPlan maps req onto a sample with the given on-disk shape. When transposed
// is true the sample is stored in Fortran order and the request is reversed
// first.
func NewPlan(req *Request, shape []int64, transposed bool) (*Plan, error) {
	if req.Empty() {
		return nil, fmt.Errorf("%w: empty slab request", npyerr.ErrFormat)
	}
	anchor := slices.Clone(req.anchor)
	extent := slices.Clone(req.extent)
	if transposed {
		slices.Reverse(anchor)
		slices.Reverse(extent)
	}

	ndims := len(shape)
	if len(anchor) != ndims || len(extent) != ndims {
		return nil, fmt.Errorf("%w: slab anchor (%d dims) and extent (%d dims) must match the sample (%d dims)",
			npyerr.ErrFormat, len(anchor), len(extent), ndims)
	}

	for i := 0; i < ndims; i++ {
		if anchor[i] < 0 || extent[i] < 0 || anchor[i] > shape[i] || extent[i] > shape[i]-anchor[i] {
			return nil, fmt.Errorf("%w: dimension %d: anchor=%d + extent=%d > size=%d",
				npyerr.ErrBounds, i, anchor[i], extent[i], shape[i])
		}
	}

	return &Plan{Anchor: anchor, Extent: extent, Shape: slices.Clone(shape)}, nil
}
