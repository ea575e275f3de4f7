// Package scheduler wires up the cron job that periodically kicks off a
// discovery pass.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// RunFunc executes one discovery pass.
type RunFunc func(ctx context.Context) error

// Scheduler wraps robfig/cron around a single recurring discovery pass.
// Overlapping ticks are skipped: a pass still in flight when the next tick
// fires wins, and the tick is dropped.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	run    RunFunc
	logger *slog.Logger

	// wg tracks the immediate startup pass, which runs outside cron's own
	// job accounting.
	wg sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// New creates a Scheduler for the given cron spec ("@daily", "@every 6h",
// or a five-field expression).
func New(spec string, run RunFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		spec:   spec,
		run:    run,
		logger: logger,
	}
}

// Start registers the pass and starts the scheduler. It also fires one pass
// immediately so a fresh daemon produces output without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runOnce(ctx)
	}()
	return nil
}

// Stop halts the cron loop and blocks until any in-flight pass finishes,
// including the immediate pass fired by Start.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous pass still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.run(ctx); err != nil {
		s.logger.Error("discovery pass failed", "error", err)
	}
}
