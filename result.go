package docbench

import "time"

// OperationResult is the immutable outcome of a single adapter
// Execute call. Successful results SHOULD carry an OverheadBreakdown;
// its absence is a degraded-telemetry indicator, never a correctness
// bug (§3).
type OperationResult struct {
	OperationID string
	Kind        OperationKind
	Success     bool

	StartedAt *time.Time
	EndedAt   *time.Time
	Duration  time.Duration

	Payload  interface{}
	Err      error
	Breakdown *OverheadBreakdown

	Metadata map[string]interface{}
}

// NewSuccessResult builds a successful OperationResult.
func NewSuccessResult(id string, kind OperationKind, duration time.Duration, breakdown OverheadBreakdown) OperationResult {
	return OperationResult{
		OperationID: id,
		Kind:        kind,
		Success:     true,
		Duration:    duration,
		Breakdown:   &breakdown,
		Metadata:    map[string]interface{}{},
	}
}

// NewFailureResult builds a failed OperationResult. It does not carry
// a breakdown, matching the source implementation this engine was
// ported from (see DESIGN.md, Open Questions item 3).
func NewFailureResult(id string, kind OperationKind, duration time.Duration, err error) OperationResult {
	return OperationResult{
		OperationID: id,
		Kind:        kind,
		Success:     false,
		Duration:    duration,
		Err:         err,
		Metadata:    map[string]interface{}{},
	}
}

// WithWallClock attaches start/end wall-clock instants to a result,
// returning the updated value for chaining.
func (r OperationResult) WithWallClock(start, end time.Time) OperationResult {
	r.StartedAt = &start
	r.EndedAt = &end
	return r
}

// WithPayload attaches a result payload (e.g. the document a Read
// returned), returning the updated value for chaining.
func (r OperationResult) WithPayload(payload interface{}) OperationResult {
	r.Payload = payload
	return r
}

// BulkResult is the outcome of Adapter.ExecuteBulk: per-operation
// results in the same order as the input, plus aggregate counts.
type BulkResult struct {
	Results      []OperationResult
	SuccessCount int
	ErrorCount   int
	Duration     time.Duration
}

// NewBulkResult tallies success/error counts from the given results.
func NewBulkResult(results []OperationResult, duration time.Duration) BulkResult {
	br := BulkResult{Results: results, Duration: duration}
	for _, r := range results {
		if r.Success {
			br.SuccessCount++
		} else {
			br.ErrorCount++
		}
	}
	return br
}
