package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestFromContext_FallsBackToGlobal verifies the global logger is returned for bare contexts.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithKV_AttachesFields checks that fields added to the context end up in log entries.
func TestWithKV_AttachesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "facade")
	ctx = WithKV(ctx, "tag", 5)
	InfoKV(ctx, "Alert scheduled", "delay_seconds", 10)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "facade", entries[0].LoggerName)
	require.Equal(t, int64(5), entries[0].ContextMap()["tag"])
	require.Equal(t, int64(10), entries[0].ContextMap()["delay_seconds"])
}
