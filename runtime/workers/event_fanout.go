package workers

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain/event"
	"log/slog"
)

// EventFanout drains the event queue and hands every event to the deliverer.
//
// A single instance reads the queue, so events published in order for one
// conversation reach each connection in that same order.
// Delivery is best-effort: no retries, no durability.
type EventFanout struct {
	log       *slog.Logger
	events    <-chan event.Event
	deliverer contract.EventDeliverer
	latency   *event.LatencyHandler
}

// NewEventFanout builds the fanout worker. latency may be nil.
func NewEventFanout(log *slog.Logger, events <-chan event.Event, deliverer contract.EventDeliverer,
	latency *event.LatencyHandler) *EventFanout {
	return &EventFanout{log: log, events: events, deliverer: deliverer, latency: latency}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event queue closed, stopping fanout")
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

// Fanout delivers one event and records how many connections got it.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	delivered := w.deliverer.Deliver(ctx, evt)
	if w.latency != nil {
		w.latency.Handle(evt, delivered)
		return
	}
	w.log.Debug("Event fanned out", "event", evt.Name, "recipients", len(evt.Recipients), "delivered", delivered)
}
