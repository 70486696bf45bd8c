package docbench

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func histogramResult(metric string, p50 int64, stddev float64) AdapterResult {
	return AdapterResult{
		SuccessCount: 100,
		Summary: MetricsSummary{
			Histograms: map[string]HistogramSummary{
				metric: {P50: p50, StdDev: stddev},
			},
		},
	}
}

func TestProximalIdenticalResultsScoreOne(t *testing.T) {
	a := histogramResult("traverse", 100, 5)
	b := histogramResult("traverse", 100, 5)

	msg, score, ok := Proximal(a, b)
	require.Empty(t, msg)
	require.InDelta(t, 1.0, score, 0.01)
	require.True(t, ok)
}

func TestProximalDivergentResultsScoreLowAndFlagged(t *testing.T) {
	a := histogramResult("traverse", 100, 5)
	b := histogramResult("traverse", 1000, 50)

	_, score, ok := Proximal(a, b)
	require.Less(t, score, 1.0)
	require.False(t, ok)
}

func TestProximalSuccessCountMismatchPenalized(t *testing.T) {
	a := AdapterResult{SuccessCount: 100, Summary: MetricsSummary{Histograms: map[string]HistogramSummary{}}}
	b := AdapterResult{SuccessCount: 10, Summary: MetricsSummary{Histograms: map[string]HistogramSummary{}}}

	msg, _, ok := Proximal(a, b)
	require.Contains(t, msg, "success count not proximal")
	require.False(t, ok)
}

func TestProximalNoCommonMetricsYieldsZeroScore(t *testing.T) {
	a := histogramResult("only_a", 100, 5)
	b := histogramResult("only_b", 100, 5)

	_, score, ok := Proximal(a, b)
	require.Equal(t, 0.0, score)
	require.False(t, ok)
}
