package engine

import (
	"context"
	"log/slog"
)

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

// OnEvent implements the Observer interface.
// Errors and coercion fallbacks are logged at WARN, everything else at DEBUG.
func (lo *LoggingObserver) OnEvent(event Event) {
	level := slog.LevelDebug
	if event.Type == EventError || event.Type == EventFallback {
		level = slog.LevelWarn
	}
	lo.logger.Log(context.Background(), level, "pipeline_lifecycle",
		"event", event.Type,
		"request_id", event.RequestID,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}
