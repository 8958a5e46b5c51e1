// Package npyfile builds .npy fixtures for tests.
package npyfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Magic is the canonical 6-byte preamble token.
var Magic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

// Raw assembles a file from header text exactly as given, with no padding.
func Raw(text string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(text)))
	buf.WriteString(text)
	buf.Write(payload)
	return buf.Bytes()
}

// Dict renders the header dictionary the way numpy does.
func Dict(descr string, fortran bool, shape ...int64) string {
	order := "False"
	if fortran {
		order = "True"
	}
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprint(d)
	}
	body := strings.Join(dims, ", ")
	if len(shape) == 1 {
		body += ","
	}
	return fmt.Sprintf("{'descr': '%s', 'fortran_order': %s, 'shape': (%s), }", descr, order, body)
}

// Pad pads header text with spaces and a newline so that the preamble plus
// text fills a multiple of 16 bytes.
func Pad(text string) string {
	total := 10 + len(text) + 1
	if rem := total % 16; rem != 0 {
		text += strings.Repeat(" ", 16-rem)
	}
	return text + "\n"
}

// Encode builds a complete, well-formed file.
func Encode(descr string, fortran bool, shape []int64, payload []byte) []byte {
	return Raw(Pad(Dict(descr, fortran, shape...)), payload)
}

// Float32s encodes values as little-endian float32.
func Float32s(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Int64s encodes values as little-endian int64.
func Int64s(vals ...int64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
	}
	return out
}

// Int32Range encodes 0..n-1 as little-endian int32.
func Int32Range(n int) []byte {
	out := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(int32(i)))
	}
	return out
}

// Write stores data under dir/name, creating parent directories.
func Write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
