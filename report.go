package docbench

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// WriteResultsCSV exports a BenchmarkResult's per-adapter histogram
// summaries as CSV: one row per (adapter, metric) pair, columns for
// every HistogramSummary field. Adapters and metric names are sorted
// so output is stable across runs against the same accumulator data.
//
// Grounded on WriteCSV (csv.go), generalized from a single chunk
// stream's numeric columns to the fixed HistogramSummary schema
// produced by Accumulator.Summarize.
func WriteResultsCSV(w io.Writer, result BenchmarkResult) error {
	csvw := csv.NewWriter(w)
	header := []string{"adapter", "metric", "count", "mean_ns", "min_ns", "max_ns", "stddev_ns", "p50_ns", "p90_ns", "p95_ns", "p99_ns", "p999_ns"}
	if err := csvw.Write(header); err != nil {
		return errors.Wrap(err, "problem writing header")
	}

	for _, adapterID := range sortedAdapterIDs(result.Adapters) {
		ar := result.Adapters[adapterID]
		for _, metric := range sortedMetricNames(ar.Summary.Histograms) {
			h := ar.Summary.Histograms[metric]
			record := []string{
				adapterID,
				metric,
				strconv.FormatInt(h.Count, 10),
				strconv.FormatFloat(h.Mean, 'f', -1, 64),
				strconv.FormatInt(h.Min, 10),
				strconv.FormatInt(h.Max, 10),
				strconv.FormatFloat(h.StdDev, 'f', -1, 64),
				strconv.FormatInt(h.P50, 10),
				strconv.FormatInt(h.P90, 10),
				strconv.FormatInt(h.P95, 10),
				strconv.FormatInt(h.P99, 10),
				strconv.FormatInt(h.P999, 10),
			}
			if err := csvw.Write(record); err != nil {
				return errors.Wrapf(err, "problem writing row for adapter %s metric %s", adapterID, metric)
			}
		}
	}

	csvw.Flush()
	if err := csvw.Error(); err != nil {
		return errors.Wrap(err, "problem flushing csv data")
	}
	return nil
}

func sortedAdapterIDs(adapters map[string]AdapterResult) []string {
	out := make([]string, 0, len(adapters))
	for id := range adapters {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedMetricNames(histograms map[string]HistogramSummary) []string {
	out := make([]string, 0, len(histograms))
	for name := range histograms {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FormatSummaryLine renders one adapter's result as a single
// human-readable line, the shape cmd/docbench prints per adapter.
func FormatSummaryLine(adapterID string, ar AdapterResult) string {
	p50, p90, p99 := int64(0), int64(0), int64(0)
	if h, ok := ar.Summary.Histograms[MetricTotalLatency]; ok {
		p50, p90, p99 = h.P50, h.P90, h.P99
	}
	return fmt.Sprintf("%s: success=%d error=%d duration=%s p50=%dns p90=%dns p99=%dns",
		adapterID, ar.SuccessCount, ar.ErrorCount, ar.MeasurementDuration, p50, p90, p99)
}
