package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronSchedulerStartStop(t *testing.T) {
	s := NewCronScheduler("@every 1h", time.UTC)

	var runs atomic.Int32
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))
	// starting twice is a no-op
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))

	require.NoError(t, s.Stop(context.Background()))
	// stopping the stopped scheduler is safe
	require.NoError(t, s.Stop(context.Background()))
	assert.Zero(t, runs.Load())
}

func TestCronSchedulerInvalidSpec(t *testing.T) {
	s := NewCronScheduler("not a cron spec", nil)
	err := s.Start(context.Background(), func(time.Time) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register cron job")
}

func TestCronSchedulerNilJob(t *testing.T) {
	s := NewCronScheduler("@every 1h", time.UTC)
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Stop(context.Background()))
}
