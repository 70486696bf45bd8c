package docbench

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docbench-project/docbench/accumulator"
)

func TestCollectHostMetricsIncrementsCounterUntilCanceled(t *testing.T) {
	acc := accumulator.New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		CollectHostMetrics(ctx, acc, HostMetricsOptions{SampleInterval: 5 * time.Millisecond})
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CollectHostMetrics did not return after context cancellation")
	}

	require.Greater(t, acc.Counter("host_samples"), int64(0))
}

func TestCollectHostMetricsDefaultsIntervalWhenUnset(t *testing.T) {
	acc := accumulator.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		CollectHostMetrics(ctx, acc, HostMetricsOptions{})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CollectHostMetrics did not return promptly after cancellation")
	}
}
