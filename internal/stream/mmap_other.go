//go:build !unix

package stream

import "errors"

const mmapSupported = false

func openMmap(path string) (Stream, error) {
	return nil, errors.New("mmap is not supported on this platform")
}
