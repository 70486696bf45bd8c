// Package scanadapter is a reference Adapter backed by an in-process
// map, used to exercise the sequential-scan traversal strategy: a
// projected Read walks the encoded document's top-level fields one by
// one via wireformat.ScanForField until it finds a field whose name
// equals the requested path, the way a collection scan without a
// usable index does. A dotted path is compared as a literal top-level
// name and is not descended into; when nothing matches, the walk runs
// to the end and the Read returns the full decoded document.
//
// Grounded on collector.go's registry-of-named-backends shape, adapted
// from "collector implementation wraps a byte buffer" to "adapter
// implementation wraps an in-memory document store"; self-registers
// via init() the way database/sql drivers register themselves.
package scanadapter

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/docbench-project/docbench"
	"github.com/docbench-project/docbench/wireformat"
)

const (
	// ID is the registry id this adapter registers itself under.
	ID          = "scan"
	displayName = "Sequential Scan (reference)"
	version     = "1.0.0"
)

func init() {
	docbench.RegisterAdapter(ID, displayName, func() docbench.Adapter { return New() })
}

type store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func newStore() *store { return &store{docs: make(map[string][]byte)} }

// Adapter is the sequential-scan reference implementation.
type Adapter struct {
	store *store
}

// New constructs a scan Adapter with an empty backing store.
func New() *Adapter {
	return &Adapter{store: newStore()}
}

func (a *Adapter) ID() string          { return ID }
func (a *Adapter) DisplayName() string { return displayName }
func (a *Adapter) Version() string     { return version }

// Capabilities advertises everything except explain-plan support: a
// linear scan has no plan to explain.
func (a *Adapter) Capabilities() docbench.CapabilitySet {
	return docbench.NewCapabilitySet(
		docbench.CapabilityPartialDocumentRetrieval,
		docbench.CapabilityNestedDocumentAccess,
		docbench.CapabilityServerTraversalTiming,
		docbench.CapabilityClientTimingHooks,
		docbench.CapabilityDeserializationMetrics,
	)
}

// connection wraps the adapter's shared store; DocBench's in-process
// reference adapters have no real socket to acquire, so Connect is
// effectively free, and connection-acquisition timing will read as
// near-zero for this adapter (by design — a real driver adapter is
// where that number gets interesting).
type connection struct {
	id        string
	store     *store
	mu        sync.Mutex
	listeners []docbench.TimingListener
	valid     bool
}

func (c *connection) ID() string   { return c.id }
func (c *connection) Valid() bool  { return c.valid }
func (c *connection) Unwrap() interface{} { return c.store }

func (c *connection) RegisterTimingListener(l docbench.TimingListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *connection) notify(metric string, d time.Duration) {
	c.mu.Lock()
	ls := append([]docbench.TimingListener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range ls {
		l(metric, d)
	}
}

func (c *connection) MetricsSnapshot() docbench.MetricsSummary {
	return docbench.MetricsSummary{}
}

func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	return nil
}

// Connect returns a connection over the adapter's shared store. cfg is
// accepted but unused beyond validation, since this reference adapter
// has no real endpoint to dial.
func (a *Adapter) Connect(ctx context.Context, cfg docbench.ConnectionConfig) (docbench.Connection, error) {
	if vr := a.ValidateConfig(cfg); !vr.Valid() {
		return nil, docbench.NewConnectionError(nil, "invalid connection config: %v", vr.Messages())
	}
	return &connection{id: "scan-conn", store: a.store, valid: true}, nil
}

// ValidateConfig accepts any configuration; the in-memory store has no
// endpoint-specific constraints to check.
func (a *Adapter) ValidateConfig(cfg docbench.ConnectionConfig) docbench.ValidationResult {
	return docbench.ValidationResult{}
}

func asConn(conn docbench.Connection) (*connection, error) {
	c, ok := conn.(*connection)
	if !ok || !c.valid {
		return nil, docbench.NewConnectionError(nil, "connection is not a valid scan adapter connection")
	}
	return c, nil
}

// Execute performs one operation and records timings into acc.
func (a *Adapter) Execute(ctx context.Context, conn docbench.Connection, op docbench.Operation, acc docbench.Accumulator) (docbench.OperationResult, error) {
	c, err := asConn(conn)
	if err != nil {
		return docbench.OperationResult{}, err
	}

	clock := docbench.NewSystemClock()
	total := clock.Start()

	var (
		breakdown docbench.OverheadBreakdown
		payload   interface{}
		opErr     error
	)

	switch op.Kind {
	case docbench.OperationInsert:
		breakdown, opErr = a.executeInsert(c, op)
	case docbench.OperationRead:
		breakdown, payload, opErr = a.executeRead(c, op)
	case docbench.OperationUpdate:
		breakdown, opErr = a.executeUpdate(c, op)
	case docbench.OperationDelete:
		breakdown, opErr = a.executeDelete(c, op)
	case docbench.OperationAggregate:
		breakdown, payload, opErr = a.executeAggregate(c, op)
	default:
		opErr = docbench.NewOperationError(nil, op.ID, op.Kind, "unsupported operation kind %q", op.Kind)
	}

	duration := total.Stop()

	if opErr != nil {
		acc.IncrementCounter("scan_operation_errors")
		return docbench.NewFailureResult(op.ID, op.Kind, duration, opErr), nil
	}

	bb := docbench.NewOverheadBreakdownBuilder().
		TotalLatency(duration).
		ConnectionAcquisition(breakdown.ConnectionAcquisition).
		ConnectionRelease(breakdown.ConnectionRelease).
		SerializationTime(breakdown.SerializationTime).
		WireTransmitTime(breakdown.WireTransmitTime).
		ServerExecutionTime(breakdown.ServerExecutionTime).
		ServerParseTime(breakdown.ServerParseTime).
		ServerTraversalTime(breakdown.ServerTraversalTime).
		ServerIndexTime(breakdown.ServerIndexTime).
		ServerFetchTime(breakdown.ServerFetchTime).
		WireReceiveTime(breakdown.WireReceiveTime).
		DeserializationTime(breakdown.DeserializationTime).
		ClientTraversalTime(breakdown.ClientTraversalTime).
		Build()

	acc.RecordBreakdown(bb)
	c.notify(docbench.MetricTotalLatency, duration)

	res := docbench.NewSuccessResult(op.ID, op.Kind, duration, bb).WithPayload(payload)
	return res, nil
}

func (a *Adapter) executeInsert(c *connection, op docbench.Operation) (docbench.OverheadBreakdown, error) {
	if op.Insert == nil {
		return docbench.OverheadBreakdown{}, docbench.NewOperationError(nil, op.ID, op.Kind, "insert operation missing payload")
	}
	doc := op.Insert.Document

	serializeStart := time.Now()
	buf := wireformat.Encode(doc.Keys(), doc.Get)
	serializeDur := time.Since(serializeStart)

	c.store.mu.Lock()
	c.store.docs[doc.ID] = buf
	c.store.mu.Unlock()

	return docbench.OverheadBreakdown{
		SerializationTime:   serializeDur,
		ServerExecutionTime: time.Microsecond,
	}, nil
}

func (a *Adapter) executeRead(c *connection, op docbench.Operation) (docbench.OverheadBreakdown, interface{}, error) {
	if op.Read == nil {
		return docbench.OverheadBreakdown{}, nil, docbench.NewOperationError(nil, op.ID, op.Kind, "read operation missing payload")
	}

	c.store.mu.RLock()
	buf, ok := c.store.docs[op.Read.Key]
	c.store.mu.RUnlock()
	if !ok {
		return docbench.OverheadBreakdown{}, nil, docbench.NewOperationError(nil, op.ID, op.Kind, "no document with key %q", op.Read.Key)
	}

	scanStart := time.Now()
	var found interface{}
	if len(op.Read.ProjectionPaths) > 0 {
		for _, p := range op.Read.ProjectionPaths {
			v, _, err := wireformat.ScanForField(buf, string(p))
			if err != nil {
				return docbench.OverheadBreakdown{}, nil, errors.Wrap(err, "scanning projected field")
			}
			found = v
		}
	}
	serverTraversal := time.Since(scanStart)

	deserializeStart := time.Now()
	keys, vals, err := wireformat.Decode(buf)
	if err != nil {
		return docbench.OverheadBreakdown{}, nil, errors.Wrap(err, "decoding document")
	}
	deserializeDur := time.Since(deserializeStart)

	doc := docbench.NewJsonDocument(op.Read.Key)
	for _, k := range keys {
		doc.Set(k, vals[k])
	}
	if found == nil {
		found = doc
	}

	return docbench.OverheadBreakdown{
		ServerTraversalTime: serverTraversal,
		ServerFetchTime:     time.Microsecond,
		DeserializationTime: deserializeDur,
	}, found, nil
}

func (a *Adapter) executeUpdate(c *connection, op docbench.Operation) (docbench.OverheadBreakdown, error) {
	if op.Update == nil {
		return docbench.OverheadBreakdown{}, docbench.NewOperationError(nil, op.ID, op.Kind, "update operation missing payload")
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	buf, ok := c.store.docs[op.Update.Key]
	if !ok {
		if !op.Update.Upsert {
			return docbench.OverheadBreakdown{}, docbench.NewOperationError(nil, op.ID, op.Kind, "no document with key %q", op.Update.Key)
		}
		doc := docbench.NewJsonDocument(op.Update.Key)
		_ = doc.SetPath(string(op.Update.Path), op.Update.Value)
		c.store.docs[op.Update.Key] = wireformat.Encode(doc.Keys(), doc.Get)
		return docbench.OverheadBreakdown{ServerExecutionTime: time.Microsecond}, nil
	}

	traversalStart := time.Now()
	keys, vals, err := wireformat.Decode(buf)
	if err != nil {
		return docbench.OverheadBreakdown{}, errors.Wrap(err, "decoding document for update")
	}
	traversalDur := time.Since(traversalStart)

	doc := docbench.NewJsonDocument(op.Update.Key)
	for _, k := range keys {
		doc.Set(k, vals[k])
	}
	if err := doc.SetPath(string(op.Update.Path), op.Update.Value); err != nil {
		return docbench.OverheadBreakdown{}, errors.Wrap(err, "setting path for update")
	}

	serializeStart := time.Now()
	c.store.docs[op.Update.Key] = wireformat.Encode(doc.Keys(), doc.Get)
	serializeDur := time.Since(serializeStart)

	return docbench.OverheadBreakdown{
		ServerTraversalTime: traversalDur,
		SerializationTime:   serializeDur,
	}, nil
}

func (a *Adapter) executeDelete(c *connection, op docbench.Operation) (docbench.OverheadBreakdown, error) {
	if op.Delete == nil {
		return docbench.OverheadBreakdown{}, docbench.NewOperationError(nil, op.ID, op.Kind, "delete operation missing payload")
	}
	c.store.mu.Lock()
	delete(c.store.docs, op.Delete.Key)
	c.store.mu.Unlock()
	return docbench.OverheadBreakdown{ServerExecutionTime: time.Microsecond}, nil
}

// executeAggregate applies a small, fixed vocabulary of pipeline
// stages ("count" is the only one this reference adapter understands)
// over every stored document; anything else is a silent no-op pass
// through the full document set. Real aggregation semantics are out of
// scope for a latency-decomposition harness (spec's Non-goals).
func (a *Adapter) executeAggregate(c *connection, op docbench.Operation) (docbench.OverheadBreakdown, interface{}, error) {
	if op.Aggregate == nil {
		return docbench.OverheadBreakdown{}, nil, docbench.NewOperationError(nil, op.ID, op.Kind, "aggregate operation missing payload")
	}

	traversalStart := time.Now()
	c.store.mu.RLock()
	count := len(c.store.docs)
	c.store.mu.RUnlock()
	traversalDur := time.Since(traversalStart)

	var payload interface{}
	for _, stage := range op.Aggregate.Pipeline {
		if stage == "count" {
			payload = count
		}
	}

	return docbench.OverheadBreakdown{ServerTraversalTime: traversalDur, ServerExecutionTime: time.Microsecond}, payload, nil
}

// ExecuteBulk falls back to the default sequential fan-out; this
// reference adapter has no batched wire path to measure separately.
func (a *Adapter) ExecuteBulk(ctx context.Context, conn docbench.Connection, ops []docbench.Operation, acc docbench.Accumulator) (docbench.BulkResult, error) {
	return docbench.ExecuteBulkSequential(ctx, a, conn, ops, acc)
}

// OverheadBreakdown returns the breakdown already attached to result by
// Execute, or a zero-valued one if the result carries none (a failed
// operation, per docbench.NewFailureResult).
func (a *Adapter) OverheadBreakdown(result docbench.OperationResult) docbench.OverheadBreakdown {
	if result.Breakdown != nil {
		return *result.Breakdown
	}
	return docbench.OverheadBreakdown{}
}

// SetupTestEnvironment clears the store when desc.DropExisting is set.
// It inserts no documents; desc.InitialDocCount is not used.
func (a *Adapter) SetupTestEnvironment(ctx context.Context, conn docbench.Connection, desc docbench.TestEnvironmentDescriptor) error {
	c, err := asConn(conn)
	if err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if desc.DropExisting {
		c.store.docs = make(map[string][]byte)
	}
	return nil
}

// TeardownTestEnvironment clears the shared store.
func (a *Adapter) TeardownTestEnvironment(ctx context.Context, conn docbench.Connection) error {
	c, err := asConn(conn)
	if err != nil {
		return err
	}
	c.store.mu.Lock()
	c.store.docs = make(map[string][]byte)
	c.store.mu.Unlock()
	return nil
}

// Close is a no-op: the store outlives any one connection.
func (a *Adapter) Close() error { return nil }

var (
	_ docbench.Adapter    = (*Adapter)(nil)
	_ docbench.Connection = (*connection)(nil)
)
