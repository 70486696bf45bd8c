package docbench

import "context"

// ConnectionConfig is either a single opaque URI string or the tuple
// form (host, port, database, username, password, options). The URI
// form is pass-through; the tuple form defaults host to "localhost",
// database to "docbench", and port to 0 (adapter-chosen).
type ConnectionConfig struct {
	URI string

	Host     string
	Port     int
	Database string
	Username string
	Password string
	Options  map[string]string
}

// NewURIConnectionConfig builds the URI form.
func NewURIConnectionConfig(uri string) ConnectionConfig {
	return ConnectionConfig{URI: uri}
}

// NewTupleConnectionConfig builds the tuple form, applying the
// documented defaults for any zero-valued field.
func NewTupleConnectionConfig(host string, port int, database, username, password string, options map[string]string) ConnectionConfig {
	if host == "" {
		host = "localhost"
	}
	if database == "" {
		database = "docbench"
	}
	return ConnectionConfig{
		Host:     host,
		Port:     port,
		Database: database,
		Username: username,
		Password: password,
		Options:  options,
	}
}

// IndexDefinition names one index an adapter should build during
// SetupTestEnvironment.
type IndexDefinition struct {
	Name   string
	Fields []string
	Unique bool
}

// TestEnvironmentDescriptor describes the collection/table an
// adapter's SetupTestEnvironment should prepare.
type TestEnvironmentDescriptor struct {
	Name             string
	Indexes          []IndexDefinition
	DropExisting     bool
	InitialDocCount  int
	PlatformOptions  map[string]interface{}
}

// TimingListener is notified when a connection observes an I/O event.
// Adapters that support CapabilityClientTimingHooks invoke listeners
// registered on a connection from whatever goroutine the underlying
// driver fires its own callback on; the accumulator tolerates that
// (§5's "listener thread" ordering contract).
type TimingListener func(metric string, d interface{ Nanoseconds() int64 })

// Connection is an instrumented, owned, scoped resource returned by
// Adapter.Connect. Close must be idempotent.
type Connection interface {
	ID() string
	Valid() bool
	RegisterTimingListener(l TimingListener)
	MetricsSnapshot() MetricsSummary
	Unwrap() interface{}
	Close() error
}

// Adapter is the pluggable polymorphism point over a target document
// database. The engine never inspects the concrete adapter type; it
// only calls through this interface, the way the teacher's Collector
// interface (collector.go) is the only thing ftdc.Collect* callers
// see regardless of which concrete collector backs it.
type Adapter interface {
	ID() string
	DisplayName() string
	Version() string
	Capabilities() CapabilitySet

	Connect(ctx context.Context, cfg ConnectionConfig) (Connection, error)
	Execute(ctx context.Context, conn Connection, op Operation, acc Accumulator) (OperationResult, error)
	ExecuteBulk(ctx context.Context, conn Connection, ops []Operation, acc Accumulator) (BulkResult, error)
	OverheadBreakdown(result OperationResult) OverheadBreakdown

	SetupTestEnvironment(ctx context.Context, conn Connection, desc TestEnvironmentDescriptor) error
	TeardownTestEnvironment(ctx context.Context, conn Connection) error

	ValidateConfig(cfg ConnectionConfig) ValidationResult

	Close() error
}

// ExecuteBulkSequential is the default ExecuteBulk behavior: a
// sequential fan-out over Execute. Adapters that can measure a truly
// batched wire path call this from their own ExecuteBulk only as a
// fallback; adapters that cannot batch can use it directly as their
// entire ExecuteBulk implementation.
func ExecuteBulkSequential(ctx context.Context, a Adapter, conn Connection, ops []Operation, acc Accumulator) (BulkResult, error) {
	clock := NewSystemClock()
	start := clock.Start()
	results := make([]OperationResult, 0, len(ops))
	for _, op := range ops {
		res, err := a.Execute(ctx, conn, op, acc)
		if err != nil {
			return BulkResult{}, err
		}
		results = append(results, res)
	}
	return NewBulkResult(results, start.Stop()), nil
}
