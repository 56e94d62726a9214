package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper performs one reminder sweep
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Scheduler runs the reminder sweep on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler creates a scheduler running sweeper on spec, a standard five-field cron expression
func NewScheduler(spec string, sweeper Sweeper, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper: sweeper,
		timeout: timeout,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the sweep once immediately, then on schedule
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started")
	go s.run()
	s.cron.Start()
}

// Stop waits for a running sweep to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("Reminder sweep failed", zap.Error(err))
		return
	}
	s.logger.Debug("Reminder sweep finished", zap.Int("enqueued", n))
}
