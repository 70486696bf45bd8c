package docbench

import "context"

// Workload is the five-method lifecycle every benchmark scenario
// implements: init → setup → (warmup/measure iterations) → cleanup.
type Workload interface {
	Name() string
	Description() string
	RequiredCapabilities() []Capability

	// Initialize binds configuration, seeds an internal RNG from
	// config.Seed (or a fresh seed if absent), chooses a per-run
	// collection name, and builds the document generator.
	Initialize(cfg WorkloadConfig) error

	// SetupData invokes adapter.SetupTestEnvironment, opens a
	// connection, generates DocumentCount documents, and inserts each
	// one via a dedicated setup accumulator whose metrics are
	// discarded by the caller.
	SetupData(ctx context.Context, adapter Adapter) error

	// RunIteration performs the workload-defining operation once,
	// recording at least one named timing into acc.
	RunIteration(ctx context.Context, adapter Adapter, acc Accumulator) error

	// Cleanup tears down the test environment and closes the
	// connection. Safe to call more than once.
	Cleanup(ctx context.Context, adapter Adapter) error
}

// WorkloadFactory constructs a fresh Workload instance.
type WorkloadFactory func() Workload
