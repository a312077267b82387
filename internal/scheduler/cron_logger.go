package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
)

// cronLogger routes cron's own diagnostics into the context logger.
type cronLogger struct {
	ctx context.Context
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug(l.ctx, "cron: "+msg, kvAttrs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	attrs := append(kvAttrs(keysAndValues), slog.Any("err", errs.Loggable(err)))
	logging.Error(l.ctx, "cron: "+msg, attrs...)
}

func kvAttrs(keysAndValues []interface{}) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		attrs = append(attrs, slog.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return attrs
}
