package accumulator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docbench-project/docbench"
)

func TestRecordAndSummarizeBasicStats(t *testing.T) {
	a := New()
	for i := 1; i <= 100; i++ {
		a.Record("m", time.Duration(i)*time.Microsecond)
	}

	summary := a.Summarize()
	h := summary.Histograms["m"]
	require.Equal(t, int64(100), h.Count)
	require.InDelta(t, int64(1*time.Microsecond), h.Min, float64(time.Microsecond))
	require.InDelta(t, int64(100*time.Microsecond), h.Max, float64(time.Microsecond))
	require.InDelta(t, float64(50*time.Microsecond), h.Mean, float64(2*time.Microsecond))
}

func TestRecordClampsNegativeToZero(t *testing.T) {
	a := New()
	a.Record("m", -5*time.Second)

	h := a.Summarize().Histograms["m"]
	require.Equal(t, int64(0), h.Min)
}

func TestRecordSaturatesAboveOneHour(t *testing.T) {
	a := New()
	a.Record("m", 2*time.Hour)

	h := a.Summarize().Histograms["m"]
	require.Equal(t, int64(time.Hour), h.Max)
}

func TestResetClearsHistogramsAndCounters(t *testing.T) {
	a := New()
	a.Record("m", time.Millisecond)
	a.IncrementCounter("c")

	a.Reset()
	summary := a.Summarize()
	require.Empty(t, summary.Histograms)
	require.Empty(t, summary.Counters)
}

func TestCountersIncrementAndAdd(t *testing.T) {
	a := New()
	a.IncrementCounter("c")
	a.IncrementCounter("c")
	a.AddCounter("c", 3)

	require.Equal(t, int64(5), a.Counter("c"))
	require.Equal(t, int64(0), a.Counter("missing"))
}

func TestRecordBreakdownDispatchesFixedAndDerivedMetrics(t *testing.T) {
	a := New()
	b := docbench.NewOverheadBreakdownBuilder().
		TotalLatency(1000 * time.Microsecond).
		ServerTraversalTime(200 * time.Microsecond).
		ClientTraversalTime(25 * time.Microsecond).
		PlatformSpecific("driver_queue_time", 3*time.Microsecond).
		Build()

	a.RecordBreakdown(b)
	summary := a.Summarize()

	require.Equal(t, int64(1), summary.Histograms[docbench.MetricTotalLatency].Count)
	require.Equal(t, int64(1), summary.Histograms[docbench.MetricTraversalOverhead].Count)
	require.Equal(t, int64(225*int64(time.Microsecond)), summary.Histograms[docbench.MetricTraversalOverhead].Max)
	require.Equal(t, int64(1), summary.Histograms["driver_queue_time"].Count)
}

func TestTimeOperationRecordsElapsedAndReturnsResult(t *testing.T) {
	a := New()
	result := TimeOperation(a, "op", func() int {
		time.Sleep(time.Millisecond)
		return 42
	})

	require.Equal(t, 42, result)
	require.Equal(t, int64(1), a.Summarize().Histograms["op"].Count)
}

func TestConcurrentRecordsAcrossMetricsDoNotRace(t *testing.T) {
	a := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		metric := "metric"
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				a.Record(metric, time.Microsecond)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(800), a.Summarize().Histograms["metric"].Count)
}
