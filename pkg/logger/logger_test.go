package logger

import (
	"testing"

	"homebudget/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New(config.LoggerConfig{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(config.LoggerConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = New(config.LoggerConfig{Level: "loud"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel), "unknown levels fall back to info")
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestGlobalLogger(t *testing.T) {
	assert.NotNil(t, Get())

	require.NoError(t, Init(config.LoggerConfig{Level: "error"}))
	first := Get()
	require.NoError(t, Init(config.LoggerConfig{Level: "debug"}))
	assert.Same(t, first, Get(), "Init runs once")
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
}
