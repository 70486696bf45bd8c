package docbench

import (
	"context"
	"os"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

// HostMetricsOptions configures CollectHostMetrics.
type HostMetricsOptions struct {
	// SampleInterval is how often host system info is sampled. Zero
	// uses DefaultHostMetricsInterval.
	SampleInterval time.Duration
}

// DefaultHostMetricsInterval is the sampling cadence CollectHostMetrics
// falls back to when HostMetricsOptions.SampleInterval is unset.
const DefaultHostMetricsInterval = time.Second

// CollectHostMetrics runs until ctx is canceled, periodically logging
// host system info (CPU, memory, disk counters via grip's collector)
// and incrementing a "host_samples" counter on acc so a benchmark
// report can tell how much host telemetry backs a run. Intended to run
// in a background goroutine for the duration of Orchestrator.Run's
// measurement phase, giving DocBench operators a way to rule out host
// contention as the explanation for an anomalous latency breakdown.
//
// Grounded on CollectSysInfo (sysinfo.go) and metrics.CollectRuntime
// (metrics/metrics.go), merged into one sampler: both collected system
// info on a timer and flushed it to FTDC files, differing only in
// whether they also captured Go-runtime and process stats. Generalized
// from "write FTDC chunk files to disk" to "feed samples into the
// benchmark's own accumulator and structured log stream", since
// DocBench has no standing FTDC collector to hand samples to, and
// folded in metrics.populateRuntimeData's Go-runtime/process capture
// so one sampler covers both teacher components' scope.
func CollectHostMetrics(ctx context.Context, acc Accumulator, opts HostMetricsOptions) {
	interval := opts.SampleInterval
	if interval <= 0 {
		interval = DefaultHostMetricsInterval
	}

	pid := os.Getpid()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			grip.Debug(message.Fields{
				"op":      "host-metrics-sample",
				"system":  message.CollectSystemInfo(),
				"golang":  message.CollectGoStatsTotals(),
				"process": message.CollectProcessInfo(int32(pid)),
			})
			acc.IncrementCounter("host_samples")
		}
	}
}
