package workers

import (
	"context"
	"dm-lab/contract"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthSnapshot is the last sample taken by the health worker.
type HealthSnapshot struct {
	Status      string    `json:"status"`
	CPUPercent  float64   `json:"cpuPercent"`
	RSSBytes    uint64    `json:"rssBytes"`
	Connections int       `json:"connections"`
	Channels    int       `json:"channels"`
	QueueLength int       `json:"queueLength"`
	SampledAt   time.Time `json:"sampledAt"`
}

// HealthMonitoringWorker periodically samples the server process and the live connection registry.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	stats          contract.StatsProvider
	queueLength    func() int
	metricInterval time.Duration

	mu     sync.RWMutex
	latest HealthSnapshot
}

func NewHealthMonitoringWorker(log *slog.Logger, stats contract.StatsProvider,
	queueLength func() int, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		stats:          stats,
		queueLength:    queueLength,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			snapshot := w.Sample(proc)
			w.log.Info("Health",
				"status", snapshot.Status,
				"cpu", snapshot.CPUPercent,
				"rss", snapshot.RSSBytes,
				"connections", snapshot.Connections,
				"channels", snapshot.Channels,
				"queue", snapshot.QueueLength)
			w.publish(snapshot)
		}
	}
}

// Sample reads process and registry figures. Process errors leave the matching fields zeroed.
func (w *HealthMonitoringWorker) Sample(proc *process.Process) HealthSnapshot {
	stats := w.stats.Stats()
	snapshot := HealthSnapshot{
		Connections: stats.Connections,
		Channels:    stats.Channels,
		SampledAt:   time.Now().UTC(),
	}
	if w.queueLength != nil {
		snapshot.QueueLength = w.queueLength()
	}
	if status, err := proc.Status(); err == nil {
		snapshot.Status = status
	} else {
		w.log.Debug("Error while finding process status", "err", err)
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		snapshot.CPUPercent = cpu
	} else {
		w.log.Debug("Error while finding process cpu usage", "err", err)
	}
	if mem, err := proc.MemoryInfo(); err == nil {
		snapshot.RSSBytes = mem.RSS
	} else {
		w.log.Debug("Error while finding process ram usage", "err", err)
	}
	return snapshot
}

// Latest returns the most recent sample, if one was taken.
func (w *HealthMonitoringWorker) Latest() (HealthSnapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest, !w.latest.SampledAt.IsZero()
}

func (w *HealthMonitoringWorker) publish(snapshot HealthSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.latest = snapshot
}
