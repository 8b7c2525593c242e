package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const enqueueTimeout = 10 * time.Second

// SweepEnqueuer defines the interface for scheduling upload sweeps
type SweepEnqueuer interface {
	// EnqueueUploadSweep puts an upload sweep on the queue
	EnqueueUploadSweep(ctx context.Context) error
}

// Scheduler enqueues periodic maintenance tasks on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	enqueuer SweepEnqueuer
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler enqueuing a sweep on every tick of schedule.
// schedule accepts standard cron expressions and descriptors such as "@every 1h".
func NewScheduler(enqueuer SweepEnqueuer, schedule string, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		enqueuer: enqueuer,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.enqueueSweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule: %w", err)
	}
	return s, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop stops the scheduler and waits for a running enqueue to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) enqueueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	if err := s.enqueuer.EnqueueUploadSweep(ctx); err != nil {
		s.logger.Error("Failed to enqueue upload sweep", zap.Error(err))
		return
	}
	s.logger.Debug("Upload sweep enqueued")
}
