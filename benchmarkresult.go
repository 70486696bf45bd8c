package docbench

import "time"

// AdapterResult is the per-adapter summary the orchestrator produces
// for one (adapter, workload) execution.
type AdapterResult struct {
	AdapterID          string
	AdapterDisplayName string
	Summary            MetricsSummary
	SuccessCount        int
	ErrorCount          int
	MeasurementDuration time.Duration
}

// BenchmarkResult is the per-workload handoff boundary to downstream
// reporters (§6): the workload name, the configuration used, the run's
// start/end instants and total duration, and one AdapterResult per
// adapter that completed (or attempted) this workload.
//
// Grounded on stat.Stats / MergeStats (stat.go) for the "builder
// produces an immutable summary struct with start/end/derived
// duration" shape.
type BenchmarkResult struct {
	WorkloadName string
	Config       WorkloadConfig
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
	Adapters     map[string]AdapterResult
}

// BenchmarkResultBuilder constructs a BenchmarkResult. Construction is
// exclusively through this builder; Finalize auto-fills EndedAt and
// Duration when they were not set explicitly.
type BenchmarkResultBuilder struct {
	r BenchmarkResult
}

// NewBenchmarkResultBuilder starts a builder for workloadName using
// cfg, recording startedAt as the run's start instant.
func NewBenchmarkResultBuilder(workloadName string, cfg WorkloadConfig, startedAt time.Time) *BenchmarkResultBuilder {
	return &BenchmarkResultBuilder{r: BenchmarkResult{
		WorkloadName: workloadName,
		Config:       cfg,
		StartedAt:    startedAt,
		Adapters:     make(map[string]AdapterResult),
	}}
}

// AddAdapterResult records one adapter's outcome.
func (b *BenchmarkResultBuilder) AddAdapterResult(res AdapterResult) *BenchmarkResultBuilder {
	b.r.Adapters[res.AdapterID] = res
	return b
}

// EndedAt sets an explicit end instant; if never called, Finalize
// derives one.
func (b *BenchmarkResultBuilder) EndedAt(t time.Time) *BenchmarkResultBuilder {
	b.r.EndedAt = t
	return b
}

// Finalize fills in EndedAt (now, if unset) and Duration (the gap
// between StartedAt and EndedAt, if unset), then returns the
// immutable result.
func (b *BenchmarkResultBuilder) Finalize() BenchmarkResult {
	if b.r.EndedAt.IsZero() {
		b.r.EndedAt = time.Now()
	}
	if b.r.Duration == 0 {
		b.r.Duration = b.r.EndedAt.Sub(b.r.StartedAt)
	}
	return b.r
}
