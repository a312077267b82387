package parlapi

import (
	"context"
	"fmt"
	"strings"

	"parlmonitor/internal/bootstrap/logging"
)

// restyLogger routes resty's own messages into slog.
type restyLogger struct {
	ctx context.Context
}

func (l restyLogger) Errorf(format string, v ...any) {
	logging.Error(l.ctx, restyMessage(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	logging.Warn(l.ctx, restyMessage(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	logging.Debug(l.ctx, restyMessage(format, v...))
}

func restyMessage(format string, v ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
