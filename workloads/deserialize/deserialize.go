// Package deserialize implements the Deserialize built-in workload: it
// measures full-document retrieval and decoding cost against a
// size-targeted document shape, rather than the single-field
// projection traverse measures.
//
// Grounded the same way as workloads/traverse, differing only in how
// it configures the document generator (by target byte size rather
// than target path) and which projection it reads back (the full
// document, an empty projection list).
package deserialize

import (
	"context"
	"fmt"
	"time"

	"github.com/mongodb/grip"

	"github.com/docbench-project/docbench"
	"github.com/docbench-project/docbench/accumulator"
)

// ID is the registry id this workload registers itself under.
const ID = "deserialize"

func init() {
	docbench.RegisterWorkload(ID, "measures full-document retrieval and decoding cost", func() docbench.Workload {
		return New()
	})
}

// Workload is the Deserialize built-in.
type Workload struct {
	rng       docbench.Rng
	generator *docbench.DocumentGenerator

	collectionName string
	docCount       int

	docs []docbench.JsonDocument
	conn docbench.Connection
}

// New constructs an uninitialized Deserialize workload.
func New() *Workload { return &Workload{} }

func (w *Workload) Name() string        { return ID }
func (w *Workload) Description() string { return "measures full-document retrieval and decoding cost" }

func (w *Workload) RequiredCapabilities() []docbench.Capability {
	return []docbench.Capability{
		docbench.CapabilityDeserializationMetrics,
	}
}

// Initialize binds configuration, seeds the workload's own RNG, and
// builds a size-targeted document generator.
func (w *Workload) Initialize(cfg docbench.WorkloadConfig) error {
	var seed uint64
	if cfg.Seed != nil {
		seed = uint64(*cfg.Seed)
	} else {
		seed = uint64(time.Now().UnixNano())
	}
	w.rng = docbench.NewRng(seed)

	documentSizeBytes := cfg.ParamInt("documentSizeBytes", 5000)
	sizeTolerance := cfg.ParamFloat("sizeTolerance", 20)
	numericProb := cfg.ParamFloat("numericFieldProbability", 0.3)
	booleanProb := cfg.ParamFloat("booleanFieldProbability", 0.1)
	nestingDepth := cfg.ParamInt("nestingDepth", 3)
	fieldsPerLevel := cfg.ParamInt("fieldsPerLevel", 5)
	arrayFieldCount := cfg.ParamInt("arrayFieldCount", 2)
	w.docCount = cfg.ParamInt("documentCount", 100)

	w.generator = docbench.NewDocumentGenerator(docbench.DocumentGeneratorConfig{
		Rng:                     w.rng.Fork(),
		TargetByteSize:          documentSizeBytes,
		SizeTolerancePct:        sizeTolerance,
		NumericFieldProbability: numericProb,
		BooleanFieldProbability: booleanProb,
		NestingDepth:            nestingDepth,
		FieldsPerLevel:          fieldsPerLevel,
		ArrayFieldCount:         arrayFieldCount,
	})

	w.collectionName = fmt.Sprintf("bench_deserialize_%d", time.Now().UnixNano())
	w.docs = nil
	w.conn = nil
	return nil
}

// SetupData seeds documentCount documents (default 100) into a fresh
// test environment.
func (w *Workload) SetupData(ctx context.Context, adapter docbench.Adapter) error {
	conn, err := adapter.Connect(ctx, docbench.NewTupleConnectionConfig("", 0, "", "", "", nil))
	if err != nil {
		return err
	}

	desc := docbench.TestEnvironmentDescriptor{Name: w.collectionName, DropExisting: true, InitialDocCount: w.docCount}
	if err := adapter.SetupTestEnvironment(ctx, conn, desc); err != nil {
		_ = conn.Close()
		return err
	}

	setupAcc := accumulator.New()
	docs := w.generator.GenerateBatch(w.collectionName, w.docCount)
	for _, doc := range docs {
		if _, err := adapter.Execute(ctx, conn, docbench.NewInsertOperation(doc.ID, doc), setupAcc); err != nil {
			_ = conn.Close()
			return err
		}
	}

	w.docs = docs
	w.conn = conn
	return nil
}

// RunIteration picks a random setup document and reads it back in
// full, recording total duration to "deserialize" and, when the
// breakdown is present, its decode time to "deserialize_serialization".
func (w *Workload) RunIteration(ctx context.Context, adapter docbench.Adapter, acc docbench.Accumulator) error {
	if len(w.docs) == 0 {
		return docbench.NewOperationError(nil, "", docbench.OperationRead, "deserialize workload has no setup documents")
	}
	idx, _ := w.rng.NextIntBound(int32(len(w.docs)))
	doc := w.docs[idx]

	op := docbench.NewReadOperation(doc.ID, doc.ID, nil, docbench.ReadPrimary)
	res, err := adapter.Execute(ctx, w.conn, op, acc)
	if err != nil {
		return err
	}

	acc.Record("deserialize", res.Duration)
	if res.Breakdown != nil {
		acc.Record("deserialize_serialization", res.Breakdown.DeserializationTime)
	}
	if !res.Success {
		return docbench.NewOperationError(res.Err, doc.ID, docbench.OperationRead, "deserialize iteration failed")
	}
	return nil
}

// Cleanup tears down the test environment and closes the connection.
// Safe to call more than once.
func (w *Workload) Cleanup(ctx context.Context, adapter docbench.Adapter) error {
	if w.conn == nil {
		return nil
	}
	catcher := grip.NewBasicCatcher()
	catcher.Add(adapter.TeardownTestEnvironment(ctx, w.conn))
	catcher.Add(w.conn.Close())
	w.conn = nil
	return catcher.Resolve()
}

var _ docbench.Workload = (*Workload)(nil)
