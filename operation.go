package docbench

import "strconv"

// OperationKind tags which of the five operation variants a value
// carries.
type OperationKind string

const (
	OperationInsert    OperationKind = "insert"
	OperationRead      OperationKind = "read"
	OperationUpdate    OperationKind = "update"
	OperationDelete    OperationKind = "delete"
	OperationAggregate OperationKind = "aggregate"
)

// ReadPreference tags which replica DocBench's hypothetical driver
// should prefer for a Read operation.
type ReadPreference string

const (
	ReadPrimary            ReadPreference = "primary"
	ReadPrimaryPreferred   ReadPreference = "primary_preferred"
	ReadSecondary          ReadPreference = "secondary"
	ReadSecondaryPreferred ReadPreference = "secondary_preferred"
	ReadNearest            ReadPreference = "nearest"
)

// ProjectionPath is dotted-notation path into a document, with
// optional bracketed array indices, e.g. "customer.addresses[1].zip".
type ProjectionPath string

// pathSegment is one parsed hop of a ProjectionPath or document path:
// a field name, optionally followed by an array index.
type pathSegment struct {
	field    string
	hasIndex bool
	index    int
}

// parsePath splits a dotted/indexed path into its segments. A
// malformed bracket expression is treated as a literal field-name
// character run, never a parse error — path access simply fails to
// resolve it, per §3's "returns absent on any broken link".
func parsePath(path string) []pathSegment {
	var segments []pathSegment
	for _, part := range splitDots(path) {
		segments = append(segments, parseSegment(part))
	}
	return segments
}

func splitDots(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	parts = append(parts, path[start:])
	return parts
}

func parseSegment(part string) pathSegment {
	open := -1
	for i := 0; i < len(part); i++ {
		if part[i] == '[' {
			open = i
			break
		}
	}
	if open < 0 || part[len(part)-1] != ']' {
		return pathSegment{field: part}
	}
	idxStr := part[open+1 : len(part)-1]
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return pathSegment{field: part}
	}
	return pathSegment{field: part[:open], hasIndex: true, index: idx}
}

// Operation is a tagged-variant request: exactly one of the payload
// fields matching Kind is populated. Constructors enforce that
// invariant; callers should not build an Operation by hand.
type Operation struct {
	ID   string
	Kind OperationKind

	Insert    *InsertPayload
	Read      *ReadPayload
	Update    *UpdatePayload
	Delete    *DeletePayload
	Aggregate *AggregatePayload
}

// InsertPayload carries the full document to insert.
type InsertPayload struct {
	Document JsonDocument
}

// ReadPayload carries a target key, an ordered list of projection
// paths (empty means the full document), and a read-preference tag.
type ReadPayload struct {
	Key             string
	ProjectionPaths []ProjectionPath
	Preference      ReadPreference
}

// UpdatePayload carries a target key, the dotted path to update, the
// new value, and an upsert flag.
type UpdatePayload struct {
	Key    string
	Path   ProjectionPath
	Value  interface{}
	Upsert bool
}

// DeletePayload carries the target key.
type DeletePayload struct {
	Key string
}

// AggregatePayload carries an ordered pipeline of opaque stage
// expressions and an explain flag.
type AggregatePayload struct {
	Pipeline []string
	Explain  bool
}

// NewInsertOperation builds an Insert operation.
func NewInsertOperation(id string, doc JsonDocument) Operation {
	return Operation{ID: id, Kind: OperationInsert, Insert: &InsertPayload{Document: doc}}
}

// NewReadOperation builds a Read operation. An empty projection list
// means "full document".
func NewReadOperation(id, key string, paths []ProjectionPath, pref ReadPreference) Operation {
	return Operation{ID: id, Kind: OperationRead, Read: &ReadPayload{Key: key, ProjectionPaths: paths, Preference: pref}}
}

// NewUpdateOperation builds an Update operation.
func NewUpdateOperation(id, key string, path ProjectionPath, value interface{}, upsert bool) Operation {
	return Operation{ID: id, Kind: OperationUpdate, Update: &UpdatePayload{Key: key, Path: path, Value: value, Upsert: upsert}}
}

// NewDeleteOperation builds a Delete operation.
func NewDeleteOperation(id, key string) Operation {
	return Operation{ID: id, Kind: OperationDelete, Delete: &DeletePayload{Key: key}}
}

// NewAggregateOperation builds an Aggregate operation.
func NewAggregateOperation(id string, pipeline []string, explain bool) Operation {
	return Operation{ID: id, Kind: OperationAggregate, Aggregate: &AggregatePayload{Pipeline: pipeline, Explain: explain}}
}
