package dtype

import (
	"fmt"
	"reflect"
)

// Kind is the numeric kind of an element type.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindUint8
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
)

func (k Kind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// ElementType describes one array element.
type ElementType struct {
	Code string // type code as written in the header, e.g. "f4"
	Kind Kind
	Size int // bytes per element; 0 for unrecognized codes
}

var (
	Int32   = ElementType{Code: "i4", Kind: KindInt32, Size: 4}
	Int64   = ElementType{Code: "i8", Kind: KindInt64, Size: 8}
	Float32 = ElementType{Code: "f4", Kind: KindFloat32, Size: 4}
	Float64 = ElementType{Code: "f8", Kind: KindFloat64, Size: 8}

	// Byte is the element type of placeholder buffers for skipped samples.
	// It is not reachable through Resolve.
	Byte = ElementType{Code: "u1", Kind: KindUint8, Size: 1}
)

var registry = map[string]ElementType{
	Int32.Code:   Int32,
	Int64.Code:   Int64,
	Float32.Code: Float32,
	Float64.Code: Float64,
}

// Resolve returns the element type for a two-character type code.
// Unknown codes yield an unrecognized type of size zero; no error is raised.
func Resolve(code string) ElementType {
	if et, ok := registry[code]; ok {
		return et
	}
	return ElementType{Code: code, Kind: KindUnknown, Size: 0}
}

// Codes returns the recognized type codes.
func Codes() []string {
	return []string{Int32.Code, Int64.Code, Float32.Code, Float64.Code}
}

// IsRecognized reports whether the type came from the registry table.
func (et ElementType) IsRecognized() bool {
	return et.Kind != KindUnknown
}

func (et ElementType) String() string {
	if !et.IsRecognized() {
		return fmt.Sprintf("unknown(%q)", et.Code)
	}
	return et.Kind.String()
}

// GoType returns the Go reflect.Type for the element type.
func (et ElementType) GoType() (reflect.Type, error) {
	switch et.Kind {
	case KindUint8:
		return reflect.TypeOf(uint8(0)), nil
	case KindInt32:
		return reflect.TypeOf(int32(0)), nil
	case KindInt64:
		return reflect.TypeOf(int64(0)), nil
	case KindFloat32:
		return reflect.TypeOf(float32(0)), nil
	case KindFloat64:
		return reflect.TypeOf(float64(0)), nil
	default:
		return nil, fmt.Errorf("no Go type for element type %s", et)
	}
}
