package npy

import (
	"fmt"

	"github.com/robert-malhotra/go-npy/internal/dtype"
	"github.com/robert-malhotra/go-npy/internal/header"
	"github.com/robert-malhotra/go-npy/internal/stream"
)

// Header describes a parsed .npy file.
type Header = header.Header

// Order is the payload storage order.
type Order = header.Order

const (
	RowMajor    = header.RowMajor
	ColumnMajor = header.ColumnMajor
)

// ElementType describes one array element.
type ElementType = dtype.ElementType

// ResolveType returns the element type for a .npy type code such as "f4".
// Unknown codes resolve to a zero-sized type.
func ResolveType(code string) ElementType {
	return dtype.Resolve(code)
}

// Stat parses the header of the .npy file at path without reading its payload.
func Stat(path string) (*Header, error) {
	s, err := stream.Open(path, stream.Options{})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	h, err := header.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parsing header of %s: %w", path, err)
	}
	return h, nil
}

// ParseHeader parses the header of an open stream positioned at its start and
// leaves it positioned at the payload.
func ParseHeader(s Stream) (*Header, error) {
	return header.Parse(s)
}
