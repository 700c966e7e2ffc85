package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetLevelUnrecognizedFallsBackToInfo(t *testing.T) {
	defer SetLevel("info")

	SetLevel("not-a-real-level")
	assert.True(t, L().Core().Enabled(zap.InfoLevel))
	assert.False(t, L().Core().Enabled(zap.DebugLevel))
}

func TestSetLevelDebugEnablesDebug(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.True(t, L().Core().Enabled(zap.DebugLevel))
}

func TestNamedScopesLogger(t *testing.T) {
	child := Named("merge")
	assert.NotNil(t, child)
}

func TestSetLoggerReplacesPackageLogger(t *testing.T) {
	defer SetLevel("info")

	nop := zap.NewNop()
	SetLogger(nop)
	assert.Same(t, nop, L())
}
