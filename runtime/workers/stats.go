package workers

import (
	"context"
	"log/slog"
	"mentorhub/contract"
	"mentorhub/observability"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsWorker periodically logs the relay counters together with the
// process health metrics (CPU, RAM). It is the only observer of the
// MonitoringManager; losing a tick loses nothing but a log line.
type StatsWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	registry   contract.ISessionRegistry
	interval   time.Duration
}

func NewStatsWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	registry contract.ISessionRegistry, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, monitoring: monitoring, registry: registry, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting relay stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitoring.Snapshot()
			w.log.Info("relay stats",
				"sessions_live", w.registry.SessionCount(),
				"messages_relayed", stats.MessagesRelayed,
				"messages_dropped", stats.MessagesDropped,
				"presence_events", stats.PresenceEvents,
				"call_signals", stats.CallSignals,
				"sessions_opened", stats.SessionsOpened,
				"sessions_closed", stats.SessionsClosed,
				"ram_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

// getSelfStats retrieves technical metrics (Memory and CPU) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
