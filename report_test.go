package docbench

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleBenchmarkResult() BenchmarkResult {
	return BenchmarkResult{
		WorkloadName: "traverse",
		Adapters: map[string]AdapterResult{
			"scan": {
				AdapterID: "scan",
				Summary: MetricsSummary{
					Histograms: map[string]HistogramSummary{
						"traverse": {Count: 10, Mean: 100, Min: 50, Max: 200, StdDev: 5, P50: 95, P90: 150, P95: 170, P99: 190, P999: 199},
					},
				},
				SuccessCount:        10,
				MeasurementDuration: time.Millisecond,
			},
			"hash": {
				AdapterID: "hash",
				Summary: MetricsSummary{
					Histograms: map[string]HistogramSummary{
						"traverse": {Count: 10, Mean: 20, Min: 10, Max: 40, StdDev: 2, P50: 19, P90: 30, P95: 35, P99: 38, P999: 39},
					},
				},
				SuccessCount:        10,
				MeasurementDuration: time.Millisecond,
			},
		},
	}
}

func TestWriteResultsCSVHeaderAndRowCount(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResultsCSV(&buf, sampleBenchmarkResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "adapter,metric,count,mean_ns,min_ns,max_ns,stddev_ns,p50_ns,p90_ns,p95_ns,p99_ns,p999_ns", lines[0])
}

func TestWriteResultsCSVOrdersAdaptersAlphabetically(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResultsCSV(&buf, sampleBenchmarkResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.True(t, strings.HasPrefix(lines[1], "hash,"))
	require.True(t, strings.HasPrefix(lines[2], "scan,"))
}

func TestFormatSummaryLineIncludesTotalLatencyPercentiles(t *testing.T) {
	ar := AdapterResult{
		SuccessCount:        5,
		ErrorCount:          1,
		MeasurementDuration: 2 * time.Millisecond,
		Summary: MetricsSummary{
			Histograms: map[string]HistogramSummary{
				MetricTotalLatency: {P50: 100, P90: 200, P99: 300},
			},
		},
	}

	line := FormatSummaryLine("scan", ar)
	require.Contains(t, line, "scan:")
	require.Contains(t, line, "success=5")
	require.Contains(t, line, "error=1")
	require.Contains(t, line, "p50=100ns")
	require.Contains(t, line, "p99=300ns")
}
