package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"printhub/internal/expiry/policy"
	"printhub/internal/expiry/repository"
	printjobserrors "printhub/internal/printjobs/errors"
	printjobs "printhub/internal/printjobs/repository"
	"printhub/internal/realtime"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
	"printhub/pkg/storage"
)

// Sweeper deletes print jobs and their files once they pass the expiry
// window. It runs on a cron schedule and on demand; a run that starts while
// another is in flight is skipped.
type Sweeper struct {
	jobs      printjobs.PrintJobRepository
	markers   repository.SweepMarkerRepository
	store     storage.Store
	publisher realtime.Publisher
	policy    policy.Policy
	cfg       *config.Config

	cron    *cron.Cron
	entry   cron.EntryID
	running atomic.Bool
	now     func() time.Time
}

func NewSweeper(
	jobs printjobs.PrintJobRepository,
	markers repository.SweepMarkerRepository,
	store storage.Store,
	publisher realtime.Publisher,
	cfg *config.Config,
) *Sweeper {
	return &Sweeper{
		jobs:      jobs,
		markers:   markers,
		store:     store,
		publisher: publisher,
		policy:    policy.New(cfg.ExpiryWindow, cfg.ExpiringWindow),
		cfg:       cfg,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		now:       mongotx.Now,
	}
}

// Start schedules the sweep every cfg.CleanupInterval and, when
// cfg.CleanupOnStartup is set, kicks off one run immediately.
func (s *Sweeper) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.cfg.CleanupInterval)
	entry, err := s.cron.AddFunc(spec, func() { s.Run(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}
	s.entry = entry
	s.cron.Start()

	s.cfg.Log.Info("expiry sweeper started", "interval", s.cfg.CleanupInterval.String(), "window", s.policy.Window.String())

	if s.cfg.CleanupOnStartup {
		go s.Run(ctx)
	}
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.cfg.Log.Info("expiry sweeper stopped")
}

// NextRun returns the next scheduled run, or nil before Start.
func (s *Sweeper) NextRun() *time.Time {
	if s.entry == 0 {
		return nil
	}
	next := s.cron.Entry(s.entry).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *Sweeper) Run(ctx context.Context) *model.SweepResult {
	startedAt := s.now()
	result := &model.SweepResult{Errors: []string{}, StartedAt: startedAt}

	if !s.running.CompareAndSwap(false, true) {
		s.cfg.Log.Info("expiry sweep already running, skipping")
		result.Skipped = true
		return result
	}
	defer s.running.Store(false)

	cutoff := s.policy.Cutoff(startedAt)
	expired, err := s.jobs.Find(ctx, model.PrintJobFilter{CreatedBefore: cutoff}, 0, 0)
	if err != nil {
		s.cfg.Log.Error("failed to list expired print jobs", "cutoff", cutoff, "error", err)
		result.Errors = append(result.Errors, err.Error())
		s.finish(ctx, result)
		return result
	}

	for _, job := range expired {
		deleted, err := s.sweepOne(ctx, job, cutoff)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", job.ID, err))
			continue
		}
		if deleted {
			result.DeletedCount++
		}
	}

	s.finish(ctx, result)
	return result
}

// sweepOne reports false when the row was already gone.
func (s *Sweeper) sweepOne(ctx context.Context, job *model.PrintJob, cutoff time.Time) (bool, error) {
	path := job.StoragePath()
	if err := s.store.Delete(ctx, s.cfg.UploadBucket, path); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.cfg.Log.Warn("failed to delete expired file", "job_id", job.ID, "path", path, "error", err)
	}

	deleted, err := s.jobs.DeleteIfCreatedBefore(ctx, job.ID, cutoff)
	if err != nil {
		if errors.Is(err, printjobserrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	realtime.PublishAll(ctx, s.publisher, s.cfg.Log, model.NewJobEvent(model.ChangeDelete, deleted))
	return true, nil
}

func (s *Sweeper) finish(ctx context.Context, result *model.SweepResult) {
	result.Duration = s.now().Sub(result.StartedAt).Round(time.Millisecond).String()

	if _, err := s.markers.Record(ctx, repository.FileExpiryMarker, result); err != nil {
		s.cfg.Log.Error("failed to record sweep marker", "error", err)
	}

	s.cfg.Log.Info("expiry sweep finished",
		"deleted", result.DeletedCount,
		"errors", len(result.Errors),
		"duration", result.Duration,
	)
}
