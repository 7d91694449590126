package httpclient

import (
	"log/slog"
)

// CallEvent records metadata about a single backend call.
type CallEvent struct {
	Method    string
	Path      string
	RequestID string
	Status    int
	LatencyMs int64
	Err       error
}

// Observer receives an event after every call, successful or not.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(e CallEvent) {
	attrs := []any{
		"method", e.Method,
		"path", e.Path,
		"request_id", e.RequestID,
		"status", e.Status,
		"latency_ms", e.LatencyMs,
	}
	if e.Err != nil {
		o.logger.Warn("backend call failed", append(attrs, "error", e.Err)...)
		return
	}
	o.logger.Info("backend call", attrs...)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
