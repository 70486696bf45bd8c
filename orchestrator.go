package docbench

import (
	"context"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// AccumulatorFactory constructs a fresh Accumulator. Kept as an
// injected factory, rather than a direct dependency, so this root
// package never needs to import the accumulator subpackage (which
// itself imports this package for OverheadBreakdown/MetricsSummary) —
// avoiding an import cycle the way database/sql avoids importing any
// particular driver package.
type AccumulatorFactory func() Accumulator

// Orchestrator drives a single (adapter, workload, config) triple
// end-to-end: initialize, setup, warmup, measure, cleanup. It is
// single-threaded per (adapter, workload) pair; running several
// adapters against one workload is a sequential outer loop
// (RunAcrossAdapters), which preserves timing fidelity by avoiding
// cross-adapter cache and scheduling interference (§4.7).
//
// Grounded on metrics.CollectRuntime's (metrics/metrics.go) shape:
// validate options, build a collector, run a phase loop, log
// structured events at phase boundaries via grip.
type Orchestrator struct {
	Clock          Clock
	NewAccumulator AccumulatorFactory

	// CollectHostMetrics, when true, samples host system info in the
	// background for the duration of the measurement phase (see
	// CollectHostMetrics in hostmetrics.go). Off by default so tests
	// and short runs never pay for a ticker goroutine they don't need.
	CollectHostMetrics bool
	HostMetricsOptions HostMetricsOptions
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(clock Clock, newAccumulator AccumulatorFactory) *Orchestrator {
	return &Orchestrator{Clock: clock, NewAccumulator: newAccumulator}
}

// Run executes one (adapter, workload, config) triple and returns that
// adapter's AdapterResult. Connection/setup/capability/configuration
// failures are returned as errors for the caller to classify; see
// RunAcrossAdapters for the policy of continuing past a failed
// adapter.
func (o *Orchestrator) Run(ctx context.Context, adapter Adapter, workload Workload, cfg WorkloadConfig) (AdapterResult, error) {
	if vr := cfg.Validate(); !vr.Valid() {
		return AdapterResult{}, NewConfigurationError("invalid workload config: %v", vr.Messages())
	}

	if missing := adapter.Capabilities().Missing(workload.RequiredCapabilities()...); len(missing) > 0 {
		return AdapterResult{}, NewCapabilityError(workload.Name(), adapter.ID(), missing[0])
	}

	if err := workload.Initialize(cfg); err != nil {
		return AdapterResult{}, errors.Wrap(err, "problem initializing workload")
	}

	grip.Info(message.Fields{
		"op":       "setup",
		"workload": workload.Name(),
		"adapter":  adapter.ID(),
	})
	if err := workload.SetupData(ctx, adapter); err != nil {
		return AdapterResult{}, NewSetupError(err, "problem setting up data for workload %q on adapter %q", workload.Name(), adapter.ID())
	}

	if cfg.WarmupIterations > cfg.Iterations {
		grip.Warning(message.Fields{
			"op":       "warmup-exceeds-iterations",
			"workload": workload.Name(),
			"warmup":   cfg.WarmupIterations,
			"measure":  cfg.Iterations,
		})
	}

	warmupAcc := o.NewAccumulator()
	for i := 0; i < cfg.WarmupIterations; i++ {
		if err := workload.RunIteration(ctx, adapter, warmupAcc); err != nil {
			grip.Debug(message.Fields{
				"op":        "warmup-iteration-error",
				"workload":  workload.Name(),
				"adapter":   adapter.ID(),
				"iteration": i,
				"error":     err.Error(),
			})
		}
	}

	measureAcc := o.NewAccumulator()

	if o.CollectHostMetrics {
		hostCtx, cancelHost := context.WithCancel(ctx)
		defer cancelHost()
		go CollectHostMetrics(hostCtx, measureAcc, o.HostMetricsOptions)
	}

	measureStart := o.Clock.Start()
	successCount, errorCount := 0, 0
	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := workload.RunIteration(ctx, adapter, measureAcc); err != nil {
			errorCount++
			grip.Debug(message.Fields{
				"op":        "measurement-iteration-error",
				"workload":  workload.Name(),
				"adapter":   adapter.ID(),
				"iteration": i,
				"error":     err.Error(),
			})
			continue
		}
		successCount++
	}
	measureDuration := measureStart.Stop()

	if err := workload.Cleanup(ctx, adapter); err != nil {
		grip.Warning(message.Fields{
			"op":       "cleanup-error",
			"workload": workload.Name(),
			"adapter":  adapter.ID(),
			"error":    err.Error(),
		})
	}

	return AdapterResult{
		AdapterID:           adapter.ID(),
		AdapterDisplayName:  adapter.DisplayName(),
		Summary:             measureAcc.Summarize(),
		SuccessCount:        successCount,
		ErrorCount:          errorCount,
		MeasurementDuration: measureDuration,
	}, nil
}

// RunAcrossAdapters runs one workload against every adapter produced
// by adapterFactories, in sequence, using a fresh Workload instance per
// adapter (workload state — connections, generated documents — must
// not be shared across executions, per §5). A fatal error for one
// adapter is logged and that adapter is simply omitted from the
// aggregate's Adapters map; if every adapter fails the returned
// BenchmarkResult has an empty map, per §7.
func (o *Orchestrator) RunAcrossAdapters(ctx context.Context, adapterFactories map[string]AdapterFactory, newWorkload WorkloadFactory, cfg WorkloadConfig) BenchmarkResult {
	builder := NewBenchmarkResultBuilder(cfg.Name, cfg, time.Now())

	for id, factory := range adapterFactories {
		adapter := factory()
		workload := newWorkload()

		res, err := o.Run(ctx, adapter, workload, cfg)
		if err != nil {
			grip.Error(message.Fields{
				"op":       "adapter-run-failed",
				"workload": cfg.Name,
				"adapter":  id,
				"error":    err.Error(),
			})
			_ = adapter.Close()
			continue
		}
		builder.AddAdapterResult(res)
		_ = adapter.Close()
	}

	return builder.Finalize()
}
