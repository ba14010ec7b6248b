package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitIsIdempotent(t *testing.T) {
	require.NoError(t, Init(zapcore.DebugLevel, zap.String("service", "triply")))
	first := Log

	require.NoError(t, Init(zapcore.ErrorLevel))
	assert.Same(t, first, Log)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
}
