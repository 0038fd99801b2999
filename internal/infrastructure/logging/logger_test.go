package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewPicksEncodingByEnv(t *testing.T) {
	dev, err := New("development")
	require.NoError(t, err)
	require.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod, err := New("production")
	require.NoError(t, err)
	require.False(t, prod.Core().Enabled(zapcore.DebugLevel))
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	WithRequestID(zap.New(core), "req-1").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	require.NotNil(t, WithRequestID(nil, "x"))
}
