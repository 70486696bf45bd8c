// Package hashadapter is a reference Adapter backed by an in-process
// map, used to exercise the hash-indexed traversal strategy: every
// document is stored alongside a field-name-to-byte-offset index, so a
// projected Read jumps directly to the requested field's encoded
// record via wireformat.ReadFieldAt instead of scanning past every
// preceding field the way scanadapter does. The index holds top-level
// field names only: a dotted path is looked up as a literal top-level
// name, and when it is not in the index the Read returns the full
// decoded document.
//
// Grounded the same way as scanadapter (collector.go's
// registry-of-named-backends shape), differing only in the index it
// keeps alongside each stored document and in the capability set it
// advertises (it can also explain its own "plan": an index lookup).
package hashadapter

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
	ID          = "hash"
	displayName = "Hash-Indexed (reference)"
	version     = "1.0.0"
)

func init() {
	docbench.RegisterAdapter(ID, displayName, func() docbench.Adapter { return New() })
}

// indexedDoc is one stored document: its encoded body plus the
// top-level field offset index built alongside it.
type indexedDoc struct {
	body  []byte
	index map[string]int64
}

type store struct {
	mu   sync.RWMutex
	docs map[string]indexedDoc
}

func newStore() *store { return &store{docs: make(map[string]indexedDoc)} }

// Adapter is the hash-indexed reference implementation.
type Adapter struct {
	store *store
}

// New constructs a hash Adapter with an empty backing store.
func New() *Adapter {
	return &Adapter{store: newStore()}
}

func (a *Adapter) ID() string          { return ID }
func (a *Adapter) DisplayName() string { return displayName }
func (a *Adapter) Version() string     { return version }

// Capabilities advertises the full set: unlike scanadapter, an indexed
// lookup has a plan worth explaining.
func (a *Adapter) Capabilities() docbench.CapabilitySet {
	return docbench.NewCapabilitySet(
		docbench.CapabilityPartialDocumentRetrieval,
		docbench.CapabilityNestedDocumentAccess,
		docbench.CapabilityServerTraversalTiming,
		docbench.CapabilityExplainPlan,
		docbench.CapabilityClientTimingHooks,
		docbench.CapabilityDeserializationMetrics,
	)
}

type connection struct {
	id        string
	store     *store
	mu        sync.Mutex
	listeners []docbench.TimingListener
	valid     bool
}

func (c *connection) ID() string           { return c.id }
func (c *connection) Valid() bool          { return c.valid }
func (c *connection) Unwrap() interface{}  { return c.store }

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

// Connect returns a connection over the adapter's shared store.
func (a *Adapter) Connect(ctx context.Context, cfg docbench.ConnectionConfig) (docbench.Connection, error) {
	if vr := a.ValidateConfig(cfg); !vr.Valid() {
		return nil, docbench.NewConnectionError(nil, "invalid connection config: %v", vr.Messages())
	}
	return &connection{id: "hash-conn", store: a.store, valid: true}, nil
}

// ValidateConfig accepts any configuration.
func (a *Adapter) ValidateConfig(cfg docbench.ConnectionConfig) docbench.ValidationResult {
	return docbench.ValidationResult{}
}

func asConn(conn docbench.Connection) (*connection, error) {
	c, ok := conn.(*connection)
	if !ok || !c.valid {
		return nil, docbench.NewConnectionError(nil, "connection is not a valid hash adapter connection")
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
		acc.IncrementCounter("hash_operation_errors")
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

	indexStart := time.Now()
	body, index := wireformat.EncodeWithIndex(doc.Keys(), doc.Get)
	indexDur := time.Since(indexStart)

	c.store.mu.Lock()
	c.store.docs[doc.ID] = indexedDoc{body: body, index: index}
	c.store.mu.Unlock()

	return docbench.OverheadBreakdown{
		SerializationTime:   indexDur,
		ServerExecutionTime: time.Microsecond,
	}, nil
}

func (a *Adapter) executeRead(c *connection, op docbench.Operation) (docbench.OverheadBreakdown, interface{}, error) {
	if op.Read == nil {
		return docbench.OverheadBreakdown{}, nil, docbench.NewOperationError(nil, op.ID, op.Kind, "read operation missing payload")
	}

	c.store.mu.RLock()
	entry, ok := c.store.docs[op.Read.Key]
	c.store.mu.RUnlock()
	if !ok {
		return docbench.OverheadBreakdown{}, nil, docbench.NewOperationError(nil, op.ID, op.Kind, "no document with key %q", op.Read.Key)
	}

	indexStart := time.Now()
	var found interface{}
	for _, p := range op.Read.ProjectionPaths {
		off, ok := entry.index[string(p)]
		if !ok {
			continue
		}
		_, v, err := wireformat.ReadFieldAt(entry.body, off)
		if err != nil {
			return docbench.OverheadBreakdown{}, nil, errors.Wrap(err, "reading indexed field")
		}
		found = v
	}
	indexLookup := time.Since(indexStart)

	deserializeStart := time.Now()
	keys, vals, err := wireformat.Decode(entry.body)
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
		ServerIndexTime:     indexLookup,
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

	entry, ok := c.store.docs[op.Update.Key]
	if !ok {
		if !op.Update.Upsert {
			return docbench.OverheadBreakdown{}, docbench.NewOperationError(nil, op.ID, op.Kind, "no document with key %q", op.Update.Key)
		}
		doc := docbench.NewJsonDocument(op.Update.Key)
		_ = doc.SetPath(string(op.Update.Path), op.Update.Value)
		body, index := wireformat.EncodeWithIndex(doc.Keys(), doc.Get)
		c.store.docs[op.Update.Key] = indexedDoc{body: body, index: index}
		return docbench.OverheadBreakdown{ServerExecutionTime: time.Microsecond}, nil
	}

	traversalStart := time.Now()
	keys, vals, err := wireformat.Decode(entry.body)
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
	body, index := wireformat.EncodeWithIndex(doc.Keys(), doc.Get)
	serializeDur := time.Since(serializeStart)
	c.store.docs[op.Update.Key] = indexedDoc{body: body, index: index}

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

// executeAggregate mirrors scanadapter's minimal "count" stage support;
// see its comment for why aggregate semantics stop there.
func (a *Adapter) executeAggregate(c *connection, op docbench.Operation) (docbench.OverheadBreakdown, interface{}, error) {
	if op.Aggregate == nil {
		return docbench.OverheadBreakdown{}, nil, docbench.NewOperationError(nil, op.ID, op.Kind, "aggregate operation missing payload")
	}

	indexStart := time.Now()
	c.store.mu.RLock()
	count := len(c.store.docs)
	c.store.mu.RUnlock()
	indexDur := time.Since(indexStart)

	var payload interface{}
	for _, stage := range op.Aggregate.Pipeline {
		if stage == "count" {
			payload = count
		}
		if stage == "explain" && op.Aggregate.Explain {
			payload = "index scan over " + ID
		}
	}

	return docbench.OverheadBreakdown{ServerIndexTime: indexDur, ServerExecutionTime: time.Microsecond}, payload, nil
}

// ExecuteBulk falls back to the default sequential fan-out.
func (a *Adapter) ExecuteBulk(ctx context.Context, conn docbench.Connection, ops []docbench.Operation, acc docbench.Accumulator) (docbench.BulkResult, error) {
	return docbench.ExecuteBulkSequential(ctx, a, conn, ops, acc)
}

// OverheadBreakdown returns the breakdown already attached to result by
// Execute, or a zero-valued one for a failed operation.
func (a *Adapter) OverheadBreakdown(result docbench.OperationResult) docbench.OverheadBreakdown {
	if result.Breakdown != nil {
		return *result.Breakdown
	}
	return docbench.OverheadBreakdown{}
}

// SetupTestEnvironment clears the store when desc.DropExisting is set.
func (a *Adapter) SetupTestEnvironment(ctx context.Context, conn docbench.Connection, desc docbench.TestEnvironmentDescriptor) error {
	c, err := asConn(conn)
	if err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if desc.DropExisting {
		c.store.docs = make(map[string]indexedDoc)
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
	c.store.docs = make(map[string]indexedDoc)
	c.store.mu.Unlock()
	return nil
}

// Close is a no-op: the store outlives any one connection.
func (a *Adapter) Close() error { return nil }

var (
	_ docbench.Adapter    = (*Adapter)(nil)
	_ docbench.Connection = (*connection)(nil)
)
