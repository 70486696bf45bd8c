package docbench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubAdapter struct{ id string }

func (s *stubAdapter) ID() string                       { return s.id }
func (s *stubAdapter) DisplayName() string               { return "stub" }
func (s *stubAdapter) Version() string                   { return "0.0.0" }
func (s *stubAdapter) Capabilities() CapabilitySet        { return CapabilitySet{} }
func (s *stubAdapter) Connect(context.Context, ConnectionConfig) (Connection, error) {
	return nil, nil
}
func (s *stubAdapter) Execute(context.Context, Connection, Operation, Accumulator) (OperationResult, error) {
	return OperationResult{}, nil
}
func (s *stubAdapter) ExecuteBulk(context.Context, Connection, []Operation, Accumulator) (BulkResult, error) {
	return BulkResult{}, nil
}
func (s *stubAdapter) OverheadBreakdown(OperationResult) OverheadBreakdown { return OverheadBreakdown{} }
func (s *stubAdapter) SetupTestEnvironment(context.Context, Connection, TestEnvironmentDescriptor) error {
	return nil
}
func (s *stubAdapter) TeardownTestEnvironment(context.Context, Connection) error { return nil }
func (s *stubAdapter) ValidateConfig(ConnectionConfig) ValidationResult          { return ValidationResult{} }
func (s *stubAdapter) Close() error                                             { return nil }

func TestAdapterRegistryRegisterAndCreate(t *testing.T) {
	RegisterAdapter("test-stub-adapter", "Stub", func() Adapter { return &stubAdapter{id: "test-stub-adapter"} })

	a, err := CreateAdapter("test-stub-adapter")
	require.NoError(t, err)
	require.Equal(t, "test-stub-adapter", a.ID())
	require.Contains(t, AvailableAdapters(), "test-stub-adapter")
}

func TestAdapterRegistryUnknownID(t *testing.T) {
	_, err := CreateAdapter("no-such-adapter-id")
	require.Error(t, err)
	require.True(t, IsKind(err, ErrorKindConfiguration))
}

type stubWorkload struct{}

func (stubWorkload) Name() string                                             { return "stub-workload" }
func (stubWorkload) Description() string                                      { return "a stub" }
func (stubWorkload) RequiredCapabilities() []Capability                       { return nil }
func (stubWorkload) Initialize(WorkloadConfig) error                         { return nil }
func (stubWorkload) SetupData(context.Context, Adapter) error                { return nil }
func (stubWorkload) RunIteration(context.Context, Adapter, Accumulator) error { return nil }
func (stubWorkload) Cleanup(context.Context, Adapter) error                  { return nil }

func TestWorkloadRegistryRegisterCreateAndDescribe(t *testing.T) {
	RegisterWorkload("test-stub-workload", "a stub workload", func() Workload { return stubWorkload{} })

	w, err := CreateWorkload("test-stub-workload")
	require.NoError(t, err)
	require.Equal(t, "stub-workload", w.Name())

	found := false
	for _, d := range DescribeWorkloads() {
		if d.ID == "test-stub-workload" {
			found = true
			require.Equal(t, "a stub workload", d.Description)
		}
	}
	require.True(t, found)
}
