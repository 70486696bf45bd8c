package docbench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMockClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	require.Equal(t, start, clock.Wall())
	require.Equal(t, int64(0), clock.NowNano())

	clock.Advance(5 * time.Second)
	require.Equal(t, start.Add(5*time.Second), clock.Wall())
	require.Equal(t, int64(5*time.Second), clock.NowNano())
}

func TestTimingContextStopIsIdempotent(t *testing.T) {
	clock := NewMockClock(time.Now())
	ctx := clock.Start()
	clock.Advance(10 * time.Millisecond)

	first := ctx.Stop()
	clock.Advance(time.Hour)
	second := ctx.Stop()

	require.Equal(t, 10*time.Millisecond, first)
	require.Equal(t, first, second)
}

func TestSystemClockSinceNeverNegative(t *testing.T) {
	clock := NewSystemClock()
	future := clock.NowNano() + int64(time.Hour)
	require.Equal(t, time.Duration(0), clock.Since(future))
}
