package docbench

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docbench-project/docbench/accumulator"
)

type noopConnection struct{ id string }

func (c *noopConnection) ID() string                                { return c.id }
func (c *noopConnection) Valid() bool                                { return true }
func (c *noopConnection) RegisterTimingListener(TimingListener)      {}
func (c *noopConnection) MetricsSnapshot() MetricsSummary            { return MetricsSummary{} }
func (c *noopConnection) Unwrap() interface{}                        { return nil }
func (c *noopConnection) Close() error                               { return nil }

type lifecycleAdapter struct{}

func (lifecycleAdapter) ID() string                       { return "lifecycle" }
func (lifecycleAdapter) DisplayName() string               { return "Lifecycle Mock" }
func (lifecycleAdapter) Version() string                   { return "1.0.0" }
func (lifecycleAdapter) Capabilities() CapabilitySet        { return CapabilitySet{} }
func (lifecycleAdapter) Connect(context.Context, ConnectionConfig) (Connection, error) {
	return &noopConnection{id: "conn"}, nil
}
func (lifecycleAdapter) Execute(context.Context, Connection, Operation, Accumulator) (OperationResult, error) {
	return NewSuccessResult("op", OperationRead, time.Microsecond, OverheadBreakdown{}), nil
}
func (lifecycleAdapter) ExecuteBulk(context.Context, Connection, []Operation, Accumulator) (BulkResult, error) {
	return BulkResult{}, nil
}
func (lifecycleAdapter) OverheadBreakdown(OperationResult) OverheadBreakdown { return OverheadBreakdown{} }
func (lifecycleAdapter) SetupTestEnvironment(context.Context, Connection, TestEnvironmentDescriptor) error {
	return nil
}
func (lifecycleAdapter) TeardownTestEnvironment(context.Context, Connection) error { return nil }
func (lifecycleAdapter) ValidateConfig(ConnectionConfig) ValidationResult          { return ValidationResult{} }
func (lifecycleAdapter) Close() error                                             { return nil }

// lifecycleWorkload records every lifecycle call and always succeeds.
type lifecycleWorkload struct {
	setupCalls     int
	cleanupCalls   int
	iterationCalls int
}

func (w *lifecycleWorkload) Name() string                         { return "primary" }
func (w *lifecycleWorkload) Description() string                  { return "lifecycle fixture" }
func (w *lifecycleWorkload) RequiredCapabilities() []Capability    { return nil }
func (w *lifecycleWorkload) Initialize(WorkloadConfig) error       { return nil }
func (w *lifecycleWorkload) SetupData(ctx context.Context, adapter Adapter) error {
	w.setupCalls++
	conn, err := adapter.Connect(ctx, ConnectionConfig{})
	if err != nil {
		return err
	}
	return adapter.SetupTestEnvironment(ctx, conn, TestEnvironmentDescriptor{})
}
func (w *lifecycleWorkload) RunIteration(ctx context.Context, adapter Adapter, acc Accumulator) error {
	w.iterationCalls++
	acc.Record("primary", time.Microsecond)
	return nil
}
func (w *lifecycleWorkload) Cleanup(context.Context, Adapter) error {
	w.cleanupCalls++
	return nil
}

func TestOrchestratorLifecycle(t *testing.T) {
	workload := &lifecycleWorkload{}
	orch := NewOrchestrator(NewSystemClock(), func() Accumulator { return accumulator.New() })

	cfg := NewWorkloadConfig("primary")
	cfg.Iterations = 5
	cfg.WarmupIterations = 0

	result, err := orch.Run(context.Background(), lifecycleAdapter{}, workload, cfg)
	require.NoError(t, err)

	require.Equal(t, 1, workload.setupCalls)
	require.Equal(t, 1, workload.cleanupCalls)
	require.Equal(t, 5, workload.iterationCalls)
	require.Equal(t, 5, result.SuccessCount)
	require.Equal(t, 0, result.ErrorCount)
	require.Greater(t, result.MeasurementDuration, time.Duration(0))
	require.Equal(t, int64(5), result.Summary.Histograms["primary"].Count)
}

// faultyOnThirdWorkload fails exactly once, on its third RunIteration
// call, then succeeds for the rest — the adapter-failure-containment
// scenario.
type faultyOnThirdWorkload struct {
	calls        int
	cleanupCalls int
}

func (w *faultyOnThirdWorkload) Name() string                      { return "primary" }
func (w *faultyOnThirdWorkload) Description() string               { return "faulty fixture" }
func (w *faultyOnThirdWorkload) RequiredCapabilities() []Capability { return nil }
func (w *faultyOnThirdWorkload) Initialize(WorkloadConfig) error    { return nil }
func (w *faultyOnThirdWorkload) SetupData(context.Context, Adapter) error {
	return nil
}
func (w *faultyOnThirdWorkload) RunIteration(ctx context.Context, adapter Adapter, acc Accumulator) error {
	w.calls++
	if w.calls == 3 {
		return NewOperationError(nil, "op-3", OperationRead, "simulated fault")
	}
	acc.Record("primary", time.Microsecond)
	return nil
}
func (w *faultyOnThirdWorkload) Cleanup(context.Context, Adapter) error {
	w.cleanupCalls++
	return nil
}

func TestOrchestratorAdapterFailureContainment(t *testing.T) {
	workload := &faultyOnThirdWorkload{}
	orch := NewOrchestrator(NewSystemClock(), func() Accumulator { return accumulator.New() })

	cfg := NewWorkloadConfig("primary")
	cfg.Iterations = 5
	cfg.WarmupIterations = 0

	result, err := orch.Run(context.Background(), lifecycleAdapter{}, workload, cfg)
	require.NoError(t, err)

	require.Equal(t, 5, workload.calls)
	require.Equal(t, 1, workload.cleanupCalls)
	require.Equal(t, 4, result.SuccessCount)
	require.Equal(t, 1, result.ErrorCount)
}

func TestOrchestratorCapabilityMismatchFailsBeforeMeasurement(t *testing.T) {
	orch := NewOrchestrator(NewSystemClock(), func() Accumulator { return accumulator.New() })
	workload := &requiresCapabilityWorkload{}

	_, err := orch.Run(context.Background(), lifecycleAdapter{}, workload, NewWorkloadConfig("primary"))
	require.Error(t, err)
	require.True(t, IsKind(err, ErrorKindCapability))
}

type requiresCapabilityWorkload struct{ lifecycleWorkload }

func (requiresCapabilityWorkload) RequiredCapabilities() []Capability {
	return []Capability{CapabilityExplainPlan}
}

func TestRunAcrossAdaptersSkipsFailedAdapter(t *testing.T) {
	orch := NewOrchestrator(NewSystemClock(), func() Accumulator { return accumulator.New() })

	factories := map[string]AdapterFactory{
		"good": func() Adapter { return lifecycleAdapter{} },
		"bad":  func() Adapter { return failingSetupAdapter{} },
	}

	cfg := NewWorkloadConfig("primary")
	cfg.Iterations = 1
	cfg.WarmupIterations = 0

	result := orch.RunAcrossAdapters(context.Background(), factories, func() Workload { return &lifecycleWorkload{} }, cfg)

	_, hasGood := result.Adapters["good"]
	_, hasBad := result.Adapters["bad"]
	require.True(t, hasGood)
	require.False(t, hasBad)
}

type failingSetupAdapter struct{ lifecycleAdapter }

func (failingSetupAdapter) ID() string { return "bad" }
func (failingSetupAdapter) SetupTestEnvironment(context.Context, Connection, TestEnvironmentDescriptor) error {
	return fmt.Errorf("setup always fails")
}
