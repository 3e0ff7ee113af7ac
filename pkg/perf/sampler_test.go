package perf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampler_SampleNow(t *testing.T) {
	s, err := NewSampler(10 * time.Millisecond)
	require.NoError(t, err)

	// First observation only establishes the cpu-time baseline.
	first, err := s.SampleNow()
	require.NoError(t, err)
	assert.Zero(t, first.CPUPercent)
	assert.False(t, first.At.IsZero())

	time.Sleep(20 * time.Millisecond)
	second, err := s.SampleNow()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second.CPUPercent, 0.0)
	assert.LessOrEqual(t, second.CPUPercent, 100.0)
	assert.True(t, second.At.After(first.At))
	assert.Positive(t, second.RSSBytes)

	assert.Equal(t, second, s.Latest())
	assert.GreaterOrEqual(t, s.Peak().CPUPercent, 0.0)
}

func TestSampler_LatestBeforeFirstSample(t *testing.T) {
	s, err := NewSampler(time.Second)
	require.NoError(t, err)
	assert.Zero(t, s.Latest())
	assert.Zero(t, s.Peak())
}

func TestSampler_RunStopsOnCancel(t *testing.T) {
	s, err := NewSampler(5 * time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return !s.Latest().At.IsZero()
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop after cancellation")
	}
}
