package npy

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-npy/internal/dtype"
)

// Array is a decoded, typed and shaped buffer. The caller owns it.
type Array struct {
	data    []byte
	dtype   dtype.ElementType
	shape   []int64
	release func()
}

func newArray(data []byte, et dtype.ElementType, shape []int64, release func()) *Array {
	return &Array{data: data, dtype: et, shape: slices.Clone(shape), release: release}
}

// Bytes returns the raw little-endian payload. It aliases the array.
func (a *Array) Bytes() []byte { return a.data }

// Type returns the element type.
func (a *Array) Type() ElementType { return a.dtype }

// Shape returns a copy of the dimensions.
func (a *Array) Shape() []int64 { return slices.Clone(a.shape) }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// NumElements returns the number of elements implied by the shape.
func (a *Array) NumElements() int64 {
	n := int64(1)
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// NBytes returns the payload length in bytes.
func (a *Array) NBytes() int { return len(a.data) }

// Shared reports whether the payload came from a share-mode read and is
// backed by stream storage that Release hands back.
func (a *Array) Shared() bool { return a.release != nil }

// Release hands back storage shared with the source file. The array must
// not be used afterwards. Calling it on an owned array only drops the payload.
func (a *Array) Release() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
	a.data = nil
}

func (a *Array) String() string {
	return fmt.Sprintf("Array(%s, shape=%v)", a.dtype, a.shape)
}

// Values returns the payload as []T, aliasing it when possible and copying
// otherwise. T must match the element type.
func Values[T dtype.Numeric](a *Array) ([]T, error) {
	if vals, err := dtype.View[T](a.dtype, a.data); err == nil {
		return vals, nil
	}
	return dtype.Copy[T](a.dtype, a.data)
}

// Float32s returns the payload of an f4 array.
func (a *Array) Float32s() ([]float32, error) { return Values[float32](a) }

// Float64s returns the payload of an f8 array.
func (a *Array) Float64s() ([]float64, error) { return Values[float64](a) }

// Int32s returns the payload of an i4 array.
func (a *Array) Int32s() ([]int32, error) { return Values[int32](a) }

// Int64s returns the payload of an i8 array.
func (a *Array) Int64s() ([]int64, error) { return Values[int64](a) }
