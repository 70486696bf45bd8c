// Package traverse implements the Traverse built-in workload: it
// measures the cost of projecting a single deeply-nested field, the
// scenario the sequential-scan and hash-indexed reference adapters
// exist to contrast.
//
// Grounded on the five-method lifecycle in workload.go (this module's
// root package), itself generalized from metrics.CollectRuntime's
// phase-loop shape; the per-run collection-name idiom is grounded on
// the teacher's own "bench_<name>_<timestamp>" convention called for
// in spec.md §4.6.
package traverse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mongodb/grip"

	"github.com/docbench-project/docbench"
	"github.com/docbench-project/docbench/accumulator"
)

// ID is the registry id this workload registers itself under.
const ID = "traverse"

func init() {
	docbench.RegisterWorkload(ID, "measures the cost of projecting a single deeply-nested field", func() docbench.Workload {
		return New()
	})
}

const targetFieldValue = "traverse-target-value"

// Workload is the Traverse built-in.
type Workload struct {
	rng        docbench.Rng
	generator  *docbench.DocumentGenerator
	targetPath docbench.ProjectionPath

	collectionName string
	docCount       int

	docs []docbench.JsonDocument
	conn docbench.Connection
}

// New constructs an uninitialized Traverse workload.
func New() *Workload { return &Workload{} }

func (w *Workload) Name() string        { return ID }
func (w *Workload) Description() string { return "measures the cost of projecting a single deeply-nested field" }

func (w *Workload) RequiredCapabilities() []docbench.Capability {
	return []docbench.Capability{
		docbench.CapabilityPartialDocumentRetrieval,
		docbench.CapabilityNestedDocumentAccess,
	}
}

// defaultTargetPath derives "nested.nested.….target" with depth-1
// "nested" hops. Against the tree docbench.DocumentGenerator's
// buildNested attaches for the same depth, this lands one level above
// the deepest nested object.
func defaultTargetPath(depth int) string {
	if depth <= 1 {
		return "target"
	}
	return strings.Repeat("nested.", depth-1) + "target"
}

// Initialize binds configuration, seeds the workload's own RNG, and
// builds the document generator with a target field planted at
// targetPath (defaultTargetPath of nestingDepth unless configured).
func (w *Workload) Initialize(cfg docbench.WorkloadConfig) error {
	var seed uint64
	if cfg.Seed != nil {
		seed = uint64(*cfg.Seed)
	} else {
		seed = uint64(time.Now().UnixNano())
	}
	w.rng = docbench.NewRng(seed)

	nestingDepth := cfg.ParamInt("nestingDepth", 5)
	fieldsPerLevel := cfg.ParamInt("fieldsPerLevel", 10)
	fieldCount := cfg.ParamInt("fieldCount", 20)
	targetPath := cfg.ParamString("targetPath", defaultTargetPath(nestingDepth))
	w.targetPath = docbench.ProjectionPath(targetPath)
	w.docCount = cfg.ParamInt("documentCount", 100)

	w.generator = docbench.NewDocumentGenerator(docbench.DocumentGeneratorConfig{
		Rng:            w.rng.Fork(),
		FieldCount:     fieldCount,
		NestingDepth:   nestingDepth,
		FieldsPerLevel: fieldsPerLevel,
		TargetPath:     w.targetPath,
		TargetValue:    targetFieldValue,
	})

	w.collectionName = fmt.Sprintf("bench_traverse_%d", time.Now().UnixNano())
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

// RunIteration picks a random setup document and reads back the
// planted target path, recording to "traverse" and, on failure, also
// to "traverse_error".
func (w *Workload) RunIteration(ctx context.Context, adapter docbench.Adapter, acc docbench.Accumulator) error {
	if len(w.docs) == 0 {
		return docbench.NewOperationError(nil, "", docbench.OperationRead, "traverse workload has no setup documents")
	}
	idx, _ := w.rng.NextIntBound(int32(len(w.docs)))
	doc := w.docs[idx]

	op := docbench.NewReadOperation(doc.ID, doc.ID, []docbench.ProjectionPath{w.targetPath}, docbench.ReadPrimary)
	res, err := adapter.Execute(ctx, w.conn, op, acc)
	if err != nil {
		acc.Record("traverse_error", 0)
		return err
	}

	acc.Record("traverse", res.Duration)
	if !res.Success {
		acc.Record("traverse_error", res.Duration)
		return docbench.NewOperationError(res.Err, doc.ID, docbench.OperationRead, "traverse iteration failed")
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
