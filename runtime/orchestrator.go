// Package runtime handles live connections, event queuing and delivery.
// It orchestrates the realtime side without containing business rules.
package runtime

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain/event"
	"dm-lab/runtime/workers"
	"log/slog"
	"sync"
	"time"
)

// Orchestrator owns the event queue shared by every publisher and the workers draining it.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	hub            *Hub
	events         chan event.Event
	metricInterval time.Duration
	latency        time.Duration
	health         *workers.HealthMonitoringWorker
	started        bool
}

// NewOrchestrator sizes the event queue. Deliveries slower than latencyThreshold are reported.
func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, hub *Hub,
	bufferSize int, metricInterval, latencyThreshold time.Duration) *Orchestrator {
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		hub:            hub,
		events:         make(chan event.Event, bufferSize),
		metricInterval: metricInterval,
		latency:        latencyThreshold,
	}
}

// Publish enqueues the event without blocking. A full queue drops the event:
// the mutation it describes is already durable and readable over REST.
func (o *Orchestrator) Publish(evt event.Event) {
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}
	select {
	case o.events <- evt:
	default:
		o.log.Warn("Event queue full, dropping event", "event", evt.Name, "recipients", evt.Recipients)
	}
}

// QueueLength reports how many events wait for delivery.
func (o *Orchestrator) QueueLength() int {
	return len(o.events)
}

// Health returns the last health sample, once the orchestrator has started.
func (o *Orchestrator) Health() (workers.HealthSnapshot, bool) {
	o.mu.Lock()
	health := o.health
	o.mu.Unlock()
	if health == nil {
		return workers.HealthSnapshot{}, false
	}
	return health.Latest()
}

// Start registers the fanout and health workers and runs the supervisor until ctx is done or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	fanout := workers.NewEventFanout(o.log, o.events, o.hub, event.NewLatencyHandler(o.log, o.latency))
	health := workers.NewHealthMonitoringWorker(o.log, o.hub, o.QueueLength, o.metricInterval)

	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		o.log.Warn("Orchestrator already started")
		return
	}
	o.started = true
	o.health = health
	o.supervisor.Add(fanout, health)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
}

// Stop signals every supervised worker to exit.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
