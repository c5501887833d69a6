// Package scheduler runs the two recurring billing-cycle tasks: the
// hourly trial sweep and the first-of-month counter reset. Both are bulk
// conditional updates against user storage; failures are logged and left
// for the next scheduled run.
package scheduler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/contentforge/contentforge/internal/plan"
)

const (
	trialSweepSpec   = "0 * * * *"
	monthlyResetSpec = "0 0 1 * *"

	// taskTimeout bounds each sweep so a slow database cannot stack runs.
	taskTimeout = 5 * time.Minute
)

// Store is the slice of user storage the scheduler needs. Satisfied by
// user.Storage.
type Store interface {
	ExpireTrials(ctx context.Context, now time.Time, freeAllotment int) (int64, error)
	ResetPlanCounters(ctx context.Context, p plan.Plan, allotment int, now time.Time) (int64, error)
}

// Scheduler owns the cron timers. Both tasks run in-process; deployments
// with multiple instances should run exactly one scheduler.
type Scheduler struct {
	cron    *cron.Cron
	store   Store
	catalog *plan.Catalog
	log     *slog.Logger
}

func New(store Store, catalog *plan.Catalog, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		cron:    cron.New(),
		store:   store,
		catalog: catalog,
		log:     log,
	}
}

// Start registers both tasks and launches the timers.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(trialSweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		s.SweepTrials(ctx)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(monthlyResetSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		s.ResetCounters(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("billing scheduler started",
		slog.String("trial_sweep", trialSweepSpec),
		slog.String("monthly_reset", monthlyResetSpec))
	return nil
}

// Stop halts the timers and waits for any running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// SweepTrials moves every user with a lapsed trial onto the Free plan in
// one bulk update.
func (s *Scheduler) SweepTrials(ctx context.Context) {
	now := time.Now().UTC()
	affected, err := s.store.ExpireTrials(ctx, now, s.catalog.Allotment(plan.Free))
	if err != nil {
		s.log.ErrorContext(ctx, "trial sweep failed", slog.Any("error", err))
		return
	}
	s.log.InfoContext(ctx, "trial sweep complete", slog.Int64("expired", affected))
}

// ResetCounters resets allotment and consumption for every user whose
// billing date has passed, one bulk update per recurring plan.
func (s *Scheduler) ResetCounters(ctx context.Context) {
	now := time.Now().UTC()
	for _, p := range plan.Recurring() {
		affected, err := s.store.ResetPlanCounters(ctx, p, s.catalog.Allotment(p), now)
		if err != nil {
			s.log.ErrorContext(ctx, "monthly reset failed",
				slog.String("plan", p.String()), slog.Any("error", err))
			continue
		}
		s.log.InfoContext(ctx, "monthly reset complete",
			slog.String("plan", p.String()), slog.Int64("reset", affected))
	}
}
