// Package server runs the engine's periodic jobs, each on its own ticker,
// until a termination signal arrives or the context is cancelled.
package server

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/game/engine"
)

// Job is a named periodic task, such as the stock price variation pass or
// the daily counter reset.
type Job struct {
	Name     string
	Interval time.Duration
	// Run performs one pass. A returned error is logged; the job keeps
	// ticking.
	Run func(ctx context.Context) error
}

// Scheduler owns the registered jobs and their tickers.
type Scheduler struct {
	logger *zap.Logger
	mu     sync.Mutex
	jobs   []Job
}

// NewScheduler creates a Scheduler.
//
// Precondition: logger must be non-nil.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
	}
}

// Add registers a job. Jobs added after Run has been called are ignored.
func (s *Scheduler) Add(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// Run starts every registered job and blocks until a termination signal
// (SIGINT or SIGTERM) or context cancellation, then waits for in-flight
// passes to finish.
//
// Postcondition: no job pass is running when this method returns.
func (s *Scheduler) Run(ctx context.Context) error {
	start := time.Now()

	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		if job.Name == "" || job.Run == nil {
			return engine.Configf("scheduler job must have a name and a run function")
		}
		if job.Interval <= 0 {
			return engine.Configf("job %s: interval must be positive", job.Name)
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.tick(ctx, job)
		}(job)
	}

	s.logger.Info("scheduler started",
		zap.Int("jobs", len(jobs)),
	)

	<-ctx.Done()
	s.logger.Info("scheduler shutting down")
	wg.Wait()

	s.logger.Info("scheduler stopped",
		zap.Duration("uptime", time.Since(start)),
	)
	return nil
}

// tick runs one job's loop until the context ends.
func (s *Scheduler) tick(ctx context.Context, job Job) {
	s.logger.Info("job scheduled",
		zap.String("job", job.Name),
		zap.Duration("interval", job.Interval),
	)
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			passStart := time.Now()
			if err := job.Run(ctx); err != nil {
				s.logger.Error("job pass failed",
					zap.String("job", job.Name),
					zap.Error(err),
					zap.Duration("elapsed", time.Since(passStart)),
				)
				continue
			}
			s.logger.Debug("job pass completed",
				zap.String("job", job.Name),
				zap.Duration("elapsed", time.Since(passStart)),
			)
		}
	}
}
