package npy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	l := zap.NewExample()
	SetLogger(l)
	assert.Same(t, l, Logger())

	SetLogger(nil)
	assert.NotNil(t, Logger())
}
