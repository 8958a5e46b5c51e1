package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// Numeric is the set of Go types an element type can be viewed as.
type Numeric interface {
	~uint8 | ~int32 | ~int64 | ~float32 | ~float64
}

var nativeLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// canView checks that T has the same kind and size as the element type.
func canView[T Numeric](et ElementType) bool {
	var zero T
	goType, err := et.GoType()
	if err != nil {
		return false
	}
	return reflect.TypeOf(zero).Kind() == goType.Kind() && int(unsafe.Sizeof(zero)) == et.Size
}

// View reinterprets little-endian payload bytes as a []T without copying.
// The returned slice aliases data. It fails when T does not match the element
// type, when len(data) is not a multiple of the element size, when data is
// not aligned for T, or on big-endian hosts; use [Copy] in those cases.
func View[T Numeric](et ElementType, data []byte) ([]T, error) {
	if !canView[T](et) {
		var zero T
		return nil, fmt.Errorf("cannot view %s as %T", et, zero)
	}
	if len(data)%et.Size != 0 {
		return nil, fmt.Errorf("payload of %d bytes is not a multiple of element size %d", len(data), et.Size)
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	if !nativeLittleEndian {
		return nil, fmt.Errorf("zero-copy view requires a little-endian host")
	}
	ptr := unsafe.Pointer(unsafe.SliceData(data))
	if uintptr(ptr)%uintptr(et.Size) != 0 {
		return nil, fmt.Errorf("payload is not %d-byte aligned", et.Size)
	}
	return unsafe.Slice((*T)(ptr), len(data)/et.Size), nil
}

// Copy decodes little-endian payload bytes into a new []T.
func Copy[T Numeric](et ElementType, data []byte) ([]T, error) {
	if !canView[T](et) {
		var zero T
		return nil, fmt.Errorf("cannot convert %s to %T", et, zero)
	}
	n := len(data) / et.Size
	out := make([]T, n)
	for i := 0; i < n; i++ {
		elem := data[i*et.Size : (i+1)*et.Size]
		switch et.Kind {
		case KindUint8:
			out[i] = T(elem[0])
		case KindInt32:
			out[i] = T(int32(binary.LittleEndian.Uint32(elem)))
		case KindInt64:
			out[i] = T(int64(binary.LittleEndian.Uint64(elem)))
		case KindFloat32:
			out[i] = T(math.Float32frombits(binary.LittleEndian.Uint32(elem)))
		case KindFloat64:
			out[i] = T(math.Float64frombits(binary.LittleEndian.Uint64(elem)))
		}
	}
	return out, nil
}
