package layout

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-npy/internal/binary"
	"github.com/robert-malhotra/go-npy/internal/slab"
)

// Strides returns the byte stride of each dimension for a dense row-major
// array of the given shape.
func Strides(shape []int64, elemSize int64) []int64 {
	ndims := len(shape)
	if ndims == 0 {
		return nil
	}
	strides := make([]int64, ndims)
	strides[ndims-1] = elemSize
	for d := ndims - 2; d >= 0; d-- {
		strides[d] = strides[d+1] * shape[d+1]
	}
	return strides
}

// SliceSize returns the number of bytes a plan selects.
func SliceSize(plan *slab.Plan, elemSize int64) int64 {
	return plan.NumElements() * elemSize
}

// run describes how a plan decomposes into contiguous byte runs.
type run struct {
	inner    int   // innermost dimension iterated explicitly
	runBytes int64 // bytes copied per run
	src      []int64
	dst      []int64
}

func newRun(plan *slab.Plan, elemSize int64) run {
	ndims := len(plan.Shape)
	inner := ndims - 1
	// Fold trailing dimensions the plan covers completely.
	for inner > 0 && plan.Anchor[inner] == 0 && plan.Extent[inner] == plan.Shape[inner] {
		inner--
	}
	src := Strides(plan.Shape, elemSize)
	dst := Strides(plan.Extent, elemSize)
	return run{
		inner:    inner,
		runBytes: plan.Extent[inner] * src[inner],
		src:      src,
		dst:      dst,
	}
}

func checkPlan(plan *slab.Plan, elemSize int64) error {
	if plan == nil || len(plan.Shape) == 0 {
		return fmt.Errorf("cannot slice a zero-dimensional array")
	}
	if elemSize < 0 {
		return fmt.Errorf("invalid element size %d", elemSize)
	}
	return nil
}

// ReadSlice reads the bytes addressed by plan from r, where the payload starts
// at base, into dst. dst must hold at least SliceSize(plan, elemSize) bytes.
func ReadSlice(r io.ReaderAt, base int64, plan *slab.Plan, elemSize int64, dst []byte) error {
	if err := checkPlan(plan, elemSize); err != nil {
		return err
	}
	want := SliceSize(plan, elemSize)
	if int64(len(dst)) < want {
		return fmt.Errorf("destination holds %d bytes, slice needs %d", len(dst), want)
	}
	if want == 0 {
		return nil
	}

	rn := newRun(plan, elemSize)
	br := binary.NewReader(r)
	return readRecursive(br, dst[:want], plan, rn, base, 0, 0)
}

func readRecursive(br *binary.Reader, dst []byte, plan *slab.Plan, rn run, srcOffset, dstOffset int64, dim int) error {
	if dim == rn.inner {
		srcStart := srcOffset + plan.Anchor[dim]*rn.src[dim]
		br.SeekTo(srcStart)
		if err := br.ReadFull(dst[dstOffset : dstOffset+rn.runBytes]); err != nil {
			return fmt.Errorf("reading slab run at offset %d: %w", srcStart, err)
		}
		return nil
	}

	for i := int64(0); i < plan.Extent[dim]; i++ {
		err := readRecursive(br, dst, plan, rn,
			srcOffset+(plan.Anchor[dim]+i)*rn.src[dim],
			dstOffset+i*rn.dst[dim],
			dim+1)
		if err != nil {
			return err
		}
	}
	return nil
}

// CopySlice copies the region addressed by plan out of src, a dense payload
// over plan.Shape, into dst.
func CopySlice(dst, src []byte, plan *slab.Plan, elemSize int64) error {
	if err := checkPlan(plan, elemSize); err != nil {
		return err
	}
	full := elemSize
	for _, d := range plan.Shape {
		full *= d
	}
	if int64(len(src)) < full {
		return fmt.Errorf("source holds %d bytes, shape %v needs %d", len(src), plan.Shape, full)
	}
	want := SliceSize(plan, elemSize)
	if int64(len(dst)) < want {
		return fmt.Errorf("destination holds %d bytes, slice needs %d", len(dst), want)
	}
	if want == 0 {
		return nil
	}

	copyRecursive(dst, src, plan, newRun(plan, elemSize), 0, 0, 0)
	return nil
}

func copyRecursive(dst, src []byte, plan *slab.Plan, rn run, srcOffset, dstOffset int64, dim int) {
	if dim == rn.inner {
		srcStart := srcOffset + plan.Anchor[dim]*rn.src[dim]
		copy(dst[dstOffset:dstOffset+rn.runBytes], src[srcStart:srcStart+rn.runBytes])
		return
	}

	for i := int64(0); i < plan.Extent[dim]; i++ {
		copyRecursive(dst, src, plan, rn,
			srcOffset+(plan.Anchor[dim]+i)*rn.src[dim],
			dstOffset+i*rn.dst[dim],
			dim+1)
	}
}
