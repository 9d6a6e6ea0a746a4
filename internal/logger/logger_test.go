package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"streaming-db/internal/config"
)

func TestNewLevels(t *testing.T) {
	log, err := New(config.Log{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	log, err = New(config.Log{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))
	assert.False(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = New(config.Log{Level: "loud"})
	assert.Error(t, err)
}

func TestWithInvocation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := WithInvocation(zap.New(core), "abc-123", "addGenre", "sqlite")

	log.Info("done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc-123", fields["invocation_id"])
	assert.Equal(t, "addGenre", fields["command"])
	assert.Equal(t, "sqlite", fields["driver"])
}
