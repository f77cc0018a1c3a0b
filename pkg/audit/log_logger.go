package audit

import (
	"context"

	"github.com/platinummonkey/cadmdt/pkg/observability"
)

// LogLogger writes events as structured log lines
type LogLogger struct {
	logger *observability.Logger
}

// NewLogLogger creates an audit logger on top of logger
func NewLogLogger(logger *observability.Logger) *LogLogger {
	return &LogLogger{logger: logger.WithField("audit", true)}
}

func (l *LogLogger) Log(_ context.Context, event *Event) error {
	entry := l.logger.WithFields(event.Fields())
	if event.Message != "" {
		entry.Warn(event.Message)
	} else {
		entry.Warn("Access denied")
	}
	return nil
}

func (l *LogLogger) Close() error {
	return nil
}
