package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Sweep(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return 1, s.err
}

func TestNewScheduler(t *testing.T) {
	t.Run("invalid schedule", func(t *testing.T) {
		_, err := NewScheduler("every now and then", &countingSweeper{}, time.Second, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid reminder schedule")
	})

	t.Run("seconds field is rejected", func(t *testing.T) {
		_, err := NewScheduler("*/5 * * * * *", &countingSweeper{}, time.Second, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("start sweeps immediately", func(t *testing.T) {
		sweeper := &countingSweeper{}
		s, err := NewScheduler("0 0 1 1 *", sweeper, time.Second, zap.NewNop())
		require.NoError(t, err)

		s.Start()
		defer s.Stop()

		assert.Eventually(t, func() bool { return sweeper.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	})
}

func TestScheduler_runLogsErrors(t *testing.T) {
	sweeper := &countingSweeper{err: assert.AnError}
	s, err := NewScheduler("@hourly", sweeper, time.Second, zap.NewNop())
	require.NoError(t, err)

	s.run()
	assert.Equal(t, int32(1), sweeper.calls.Load())
}
