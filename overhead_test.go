package docbench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOverheadBreakdownDerivedMetrics(t *testing.T) {
	b := NewOverheadBreakdownBuilder().
		TotalLatency(100 * time.Millisecond).
		ConnectionAcquisition(5 * time.Millisecond).
		ConnectionRelease(3 * time.Millisecond).
		SerializationTime(10 * time.Millisecond).
		WireTransmitTime(8 * time.Millisecond).
		ServerExecutionTime(20 * time.Millisecond).
		ServerTraversalTime(15 * time.Millisecond).
		ServerFetchTime(12 * time.Millisecond).
		WireReceiveTime(7 * time.Millisecond).
		DeserializationTime(9 * time.Millisecond).
		ClientTraversalTime(11 * time.Millisecond).
		Build()

	require.Equal(t, 88*time.Millisecond, b.TotalOverhead())
	require.Equal(t, 26*time.Millisecond, b.TraversalOverhead())
	require.Equal(t, 15*time.Millisecond, b.NetworkOverhead())
	require.Equal(t, 19*time.Millisecond, b.SerializationOverhead())
	require.Equal(t, 8*time.Millisecond, b.ConnectionOverhead())
}

func TestOverheadBreakdownPercentagesZeroTotal(t *testing.T) {
	b := NewOverheadBreakdownBuilder().Build()
	require.Equal(t, float64(0), b.TotalOverheadPercentage())
	require.Equal(t, float64(0), b.TraversalPercentage())
}

func TestOverheadBreakdownNegativeClampedToZero(t *testing.T) {
	b := NewOverheadBreakdownBuilder().
		TotalLatency(-5 * time.Millisecond).
		ServerTraversalTime(-1 * time.Millisecond).
		Build()

	require.Equal(t, time.Duration(0), b.TotalLatency)
	require.Equal(t, time.Duration(0), b.ServerTraversalTime)
}

func TestOverheadBreakdownPlatformSpecificIsDefensivelyCopied(t *testing.T) {
	builder := NewOverheadBreakdownBuilder().PlatformSpecific("driver_queue_time", 4*time.Millisecond)
	built := builder.Build()

	builder.PlatformSpecific("driver_queue_time", 999*time.Millisecond)
	require.Equal(t, 4*time.Millisecond, built.PlatformSpecific()["driver_queue_time"])

	snapshot := built.PlatformSpecific()
	snapshot["driver_queue_time"] = 0
	require.Equal(t, 4*time.Millisecond, built.PlatformSpecific()["driver_queue_time"])
}

func TestBreakdownComponentsProtocolOrder(t *testing.T) {
	b := NewOverheadBreakdownBuilder().TotalLatency(time.Second).Build()
	components := BreakdownComponents(b)
	require.Equal(t, MetricTotalLatency, components[0].Name)
	require.Equal(t, MetricClientTraversalTime, components[len(components)-1].Name)
	require.Len(t, components, 13)
}
