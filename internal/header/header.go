package header

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-npy/internal/binary"
	"github.com/robert-malhotra/go-npy/internal/dtype"
	"github.com/robert-malhotra/go-npy/internal/npyerr"
	"github.com/robert-malhotra/go-npy/internal/stream"
)

// Magic is the token identifying a .npy file.
var Magic = []byte("NUMPY")

const (
	// PreambleSize is the number of bytes read before the header text:
	// 6 magic + 1 major version + 1 minor version + 2 length bytes.
	PreambleSize = 6 + 1 + 1 + 2

	// Alignment is the boundary the preamble plus header text must fill.
	Alignment = 16

	// MaxDims is the largest supported number of dimensions.
	MaxDims = 7
)

// Order is the storage order of the payload.
type Order uint8

const (
	RowMajor    Order = iota // C order: on-disk dims match logical dims
	ColumnMajor              // Fortran order: on-disk dims are reversed
)

func (o Order) String() string {
	if o == ColumnMajor {
		return "fortran"
	}
	return "C"
}

// Header is the parsed description of a .npy file.
type Header struct {
	// Version is the format version from the preamble (major, minor).
	Version [2]byte

	// HeaderLen is the length of the header text in bytes.
	HeaderLen uint16

	// Descr is the raw descriptor string, e.g. "<f4".
	Descr string

	// Type is resolved from the descriptor's type code. It may be
	// unrecognized, in which case its size is zero.
	Type dtype.ElementType

	// Order is the storage order ("fortran_order" in the header).
	Order Order

	// Shape holds the dimensions as written in the file. A scalar is [1].
	Shape []int64

	// DataOffset is the absolute offset of the first payload byte.
	DataOffset int64
}

// NumElements returns the number of elements in the array.
func (h *Header) NumElements() int64 {
	n := int64(1)
	for _, d := range h.Shape {
		n *= d
	}
	return n
}

// NBytes returns the payload size in bytes.
func (h *Header) NBytes() int64 {
	return int64(h.Type.Size) * h.NumElements()
}

// Transposed reports whether the payload is stored in Fortran order.
func (h *Header) Transposed() bool {
	return h.Order == ColumnMajor
}

// Parse reads the header from s, which must be positioned at the start of the
// file. On success s is left positioned at DataOffset.
func Parse(s stream.Stream) (*Header, error) {
	r := binary.NewReader(s)

	preamble, err := r.ReadBytes(PreambleSize)
	if err != nil {
		return nil, fmt.Errorf("reading preamble: %w", err)
	}
	// The token may sit anywhere in the preamble.
	if !bytes.Contains(preamble, Magic) {
		return nil, fmt.Errorf("%w: magic token not found", npyerr.ErrFormat)
	}

	headerLen, err := r.At(8).ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading header length: %w", err)
	}
	if !validLength(headerLen) {
		return nil, fmt.Errorf("%w: header length %d is not %d-byte aligned", npyerr.ErrFormat, headerLen, Alignment)
	}

	r.SeekTo(PreambleSize)
	raw, err := r.ReadBytes(int(headerLen))
	if err != nil {
		return nil, fmt.Errorf("reading header text: %w", err)
	}
	text := string(raw)
	if !strings.Contains(text, "{") {
		return nil, fmt.Errorf("%w: header is corrupted", npyerr.ErrFormat)
	}

	fields, ok := extract(text)
	if !ok {
		return nil, fmt.Errorf("%w: cannot parse header %q", npyerr.ErrFormat, strings.TrimSpace(text))
	}

	h := &Header{
		Version:    [2]byte{preamble[6], preamble[7]},
		HeaderLen:  headerLen,
		Descr:      fields.descr,
		DataOffset: int64(PreambleSize) + int64(headerLen),
	}

	if fields.descr == "" {
		return nil, fmt.Errorf("%w: empty descr", npyerr.ErrFormat)
	}
	switch fields.descr[0] {
	case '<', '|', '=':
	default:
		return nil, fmt.Errorf("%w: byte order %q in descr %q (big endian files are not supported)",
			npyerr.ErrUnsupported, fields.descr[0], fields.descr)
	}
	h.Type = dtype.Resolve(fields.descr[1:])

	if fields.fortranOrder == "False" {
		h.Order = RowMajor
	} else {
		h.Order = ColumnMajor
	}

	h.Shape, err = parseShape(fields.shape)
	if err != nil {
		return nil, err
	}
	if _, ok := payloadSize(h.Shape, int64(h.Type.Size)); !ok {
		return nil, fmt.Errorf("%w: shape %v of %s overflows the payload size", npyerr.ErrFormat, h.Shape, h.Type)
	}

	if err := s.SeekTo(h.DataOffset); err != nil {
		return nil, fmt.Errorf("seeking to payload: %w", err)
	}
	return h, nil
}

// payloadSize returns the byte size of a dense array of the given shape, or
// false when the element count or the byte size overflows int64.
func payloadSize(shape []int64, elemSize int64) (int64, bool) {
	n := int64(1)
	for _, d := range shape {
		if d != 0 && n > math.MaxInt64/d {
			return 0, false
		}
		n *= d
	}
	if elemSize != 0 && n > math.MaxInt64/elemSize {
		return 0, false
	}
	return n * elemSize, true
}

// validLength reports whether the preamble plus a header of length h ends on
// an alignment boundary.
func validLength(h uint16) bool {
	return (int(h)+PreambleSize)%Alignment == 0
}

// parseShape parses the body of the shape tuple, e.g. "3, 4" or "5,".
func parseShape(body string) ([]int64, error) {
	tokens := splitCommas(body)
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	// "(5,)" leaves a trailing empty token.
	if len(tokens) > 1 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	// "()" is a scalar.
	if len(tokens) == 1 && tokens[0] == "" {
		return []int64{1}, nil
	}
	if len(tokens) > MaxDims {
		return nil, fmt.Errorf("%w: %d dimensions (max %d)", npyerr.ErrUnsupported, len(tokens), MaxDims)
	}

	shape := make([]int64, len(tokens))
	for i, tok := range tokens {
		d, err := strconv.ParseInt(tok, 10, 64)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: invalid dimension %q in shape (%s)", npyerr.ErrFormat, tok, body)
		}
		shape[i] = d
	}
	return shape, nil
}

// splitCommas splits on runs of commas, so "1,,2" yields ["1", "2"].
func splitCommas(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for i, p := range parts {
		if p == "" && i > 0 && i < len(parts)-1 {
			continue
		}
		out = append(out, p)
	}
	return out
}
