package alarm

import (
	"context"

	"github.com/oshokin/local-notification/internal/logger"
)

// cronLogger routes robfig/cron logs to the context logger.
type cronLogger struct {
	ctx context.Context //nolint:containedctx // cron.Logger has no context parameter.
}

// Info logs cron bookkeeping at debug level.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	logger.DebugKV(l.ctx, "cron: "+msg, keysAndValues...)
}

// Error logs cron failures, including recovered job panics.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.ErrorKV(l.ctx, "cron: "+msg, append(keysAndValues, "error", err)...)
}
