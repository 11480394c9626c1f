package event

import (
	"log/slog"
	"time"
)

// LatencyHandler measures how long an event waited between publication and delivery.
type LatencyHandler struct {
	log              *slog.Logger
	latencyThreshold time.Duration
	now              func() time.Time
}

func NewLatencyHandler(log *slog.Logger, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, latencyThreshold: latencyThreshold, now: time.Now}
}

// Handle returns the lead time of e. Events without a publication time are ignored.
func (h *LatencyHandler) Handle(e Event, delivered int) time.Duration {
	if e.CreatedAt.IsZero() {
		return 0
	}
	leadTime := h.now().Sub(e.CreatedAt)

	h.log.Debug("telemetry: delivery latency",
		"event", e.Name,
		"recipients", len(e.Recipients),
		"delivered", delivered,
		"lead_time_ms", leadTime.Milliseconds(),
	)

	if h.latencyThreshold > 0 && leadTime > h.latencyThreshold {
		h.log.Warn("high latency detected", "event", e.Name, "lead_time", leadTime)
	}
	return leadTime
}
