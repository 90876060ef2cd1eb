package usage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerConfig controls periodic pruning of stale usage rows.
type SchedulerConfig struct {
	// Schedule is a standard cron expression, e.g. "0 3 * * *" for
	// daily at 3 AM. Empty disables scheduled pruning.
	Schedule string

	// Retention is how long a session row is kept after it was last
	// seen. Rows older than this are deleted on each run.
	Retention time.Duration
}

// Scheduler prunes stale session rows from the store on a cron schedule.
type Scheduler struct {
	store   *Store
	config  SchedulerConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a pruning scheduler for the given store.
func NewScheduler(store *Store, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		store:  store,
		config: cfg,
		cron:   cron.New(),
		logger: slog.Default().With("component", "usage.scheduler"),
	}
}

// Start begins scheduled pruning. If no schedule is configured the
// scheduler does nothing. The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runPruning(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("usage pruning scheduler started",
		"schedule", s.config.Schedule,
		"retention", s.config.Retention,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runPruning(ctx context.Context) {
	cutoff := time.Now().Add(-s.config.Retention)

	deleted, err := s.store.Cleanup(ctx, cutoff)
	if err != nil {
		s.logger.Error("scheduled usage pruning failed",
			"error", err,
		)
		return
	}

	if deleted > 0 {
		s.logger.Info("scheduled usage pruning completed",
			"deleted_count", deleted,
		)
	} else {
		s.logger.Debug("scheduled usage pruning completed, no rows deleted")
	}
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("usage pruning scheduler stopped")
	}
}

// NextRun returns the next scheduled pruning time, if any.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
