package workers

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs process health (RSS, CPU) together with
// the realtime counters: live connections, routed messages, delivery
// failures, liveness terminations.
type TelemetryWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	metrics  *observability.Metrics
	interval time.Duration
}

func NewTelemetryWorker(
	log *slog.Logger,
	registry contract.IRegistry,
	metrics *observability.Metrics,
	interval time.Duration,
) *TelemetryWorker {
	return &TelemetryWorker{log: log, registry: registry, metrics: metrics, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			counters := w.metrics.Snapshot()
			w.log.Info("Telemetry",
				"live_connections", w.registry.Len(),
				"messages_routed", counters["messages_routed"],
				"messages_dropped", counters["messages_dropped"],
				"delivery_failures", counters["delivery_failures"],
				"liveness_terminations", counters["liveness_terminations"],
				"rss_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
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
