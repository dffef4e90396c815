package provider

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single provider invocation.
type CallEvent struct {
	Service   string
	Operation string
	LatencyMs int64
	Units     int
	Success   bool
	ErrorKind ErrorKind
}

// Observer receives events about provider calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// LogObserver writes provider call events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"service", event.Service,
		"operation", event.Operation,
		"latency_ms", event.LatencyMs,
		"units", event.Units,
		"success", event.Success,
	}
	if !event.Success {
		attrs = append(attrs, "error_kind", string(event.ErrorKind))
		o.logger.Error("provider_call", attrs...)
		return
	}
	o.logger.Info("provider_call", attrs...)
}
