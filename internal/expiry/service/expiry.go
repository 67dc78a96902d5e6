package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"printhub/internal/expiry/policy"
	"printhub/internal/expiry/repository"
	printjobs "printhub/internal/printjobs/repository"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
)

// Runner triggers a sweep and reports the schedule.
type Runner interface {
	Run(ctx context.Context) *model.SweepResult
	NextRun() *time.Time
}

type ExpiryService interface {
	Stats(ctx context.Context, shopOwnerID string) (*model.CleanupStats, error)
	ExpiringFiles(ctx context.Context, customerID string) ([]model.ExpiringFile, error)
	RunNow(ctx context.Context) (*model.SweepResult, error)
	LastRun(ctx context.Context) (*model.SweepMarker, error)
}

type expiryService struct {
	jobs    printjobs.PrintJobRepository
	markers repository.SweepMarkerRepository
	runner  Runner
	policy  policy.Policy
	cfg     *config.Config
	now     func() time.Time
}

func NewExpiryService(
	jobs printjobs.PrintJobRepository,
	markers repository.SweepMarkerRepository,
	runner Runner,
	cfg *config.Config,
) ExpiryService {
	return &expiryService{
		jobs:    jobs,
		markers: markers,
		runner:  runner,
		policy:  policy.New(cfg.ExpiryWindow, cfg.ExpiringWindow),
		cfg:     cfg,
		now:     mongotx.Now,
	}
}

// expiringBound is the newest created_at that already counts as expiring soon.
func (s *expiryService) expiringBound(now time.Time) time.Time {
	return now.Add(-(s.policy.Window - s.policy.ExpiringWindow))
}

// Stats counts files across all shops when shopOwnerID is empty.
func (s *expiryService) Stats(ctx context.Context, shopOwnerID string) (*model.CleanupStats, error) {
	now := s.now()
	cutoff := s.policy.Cutoff(now)
	stats := &model.CleanupStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.jobs.Count(gctx, model.PrintJobFilter{ShopOwnerID: shopOwnerID})
		stats.TotalFiles = n
		return err
	})
	g.Go(func() error {
		n, err := s.jobs.Count(gctx, model.PrintJobFilter{ShopOwnerID: shopOwnerID, CreatedBefore: cutoff})
		stats.ExpiredFiles = n
		return err
	})
	g.Go(func() error {
		n, err := s.jobs.Count(gctx, model.PrintJobFilter{
			ShopOwnerID:   shopOwnerID,
			CreatedAfter:  cutoff,
			CreatedBefore: s.expiringBound(now),
		})
		stats.ExpiringFiles = n
		return err
	})
	g.Go(func() error {
		marker, err := s.markers.Get(gctx, repository.FileExpiryMarker)
		if marker != nil {
			lastRun := marker.LastRunAt
			stats.LastRunAt = &lastRun
		}
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("failed to compute cleanup stats", "shop_owner_id", shopOwnerID, "error", err)
		return nil, apperrors.Internal("failed to compute cleanup stats", err)
	}

	if s.runner != nil {
		stats.NextRunAt = s.runner.NextRun()
	}
	return stats, nil
}

func (s *expiryService) ExpiringFiles(ctx context.Context, customerID string) ([]model.ExpiringFile, error) {
	now := s.now()
	jobs, err := s.jobs.Find(ctx, model.PrintJobFilter{
		CustomerID:    customerID,
		CreatedAfter:  s.policy.Cutoff(now),
		CreatedBefore: s.expiringBound(now),
	}, 0, 0)
	if err != nil {
		s.cfg.Log.Error("failed to list expiring files", "customer_id", customerID, "error", err)
		return nil, apperrors.Internal("failed to list expiring files", err)
	}

	files := make([]model.ExpiringFile, 0, len(jobs))
	for _, job := range jobs {
		files = append(files, model.ExpiringFile{
			ID:          job.ID,
			CustomerID:  job.CustomerID,
			ShopOwnerID: job.ShopOwnerID,
			FileName:    job.FileName,
			CreatedAt:   job.CreatedAt,
			ExpiresAt:   s.policy.ExpiresAt(job.CreatedAt),
			Expiry:      s.policy.TimeUntilExpiry(job.CreatedAt, now),
		})
	}
	return files, nil
}

func (s *expiryService) RunNow(ctx context.Context) (*model.SweepResult, error) {
	if s.runner == nil {
		return nil, apperrors.Unavailable("Expiry sweeper")
	}
	result := s.runner.Run(ctx)
	if result.Skipped {
		return nil, apperrors.Conflict("A cleanup run is already in progress")
	}
	return result, nil
}

func (s *expiryService) LastRun(ctx context.Context) (*model.SweepMarker, error) {
	marker, err := s.markers.Get(ctx, repository.FileExpiryMarker)
	if err != nil {
		s.cfg.Log.Error("failed to load sweep marker", "error", err)
		return nil, apperrors.Internal("failed to load last cleanup run", err)
	}
	if marker == nil {
		return nil, apperrors.NotFound("Cleanup run")
	}
	return marker, nil
}
