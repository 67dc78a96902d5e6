package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	printjobserrors "printhub/internal/printjobs/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/logger"
	"printhub/pkg/model"
	"printhub/pkg/storage"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type mockJobRepository struct {
	findFunc            func(ctx context.Context, filter model.PrintJobFilter, limit int, offset int64) ([]*model.PrintJob, error)
	countFunc           func(ctx context.Context, filter model.PrintJobFilter) (int64, error)
	deleteIfCreatedFunc func(ctx context.Context, id string, cutoff time.Time) (*model.PrintJob, error)
}

func (m *mockJobRepository) Create(context.Context, *model.PrintJob) error { return nil }

func (m *mockJobRepository) FindByID(context.Context, string) (*model.PrintJob, error) {
	return nil, printjobserrors.ErrNotFound
}

func (m *mockJobRepository) Find(ctx context.Context, filter model.PrintJobFilter, limit int, offset int64) ([]*model.PrintJob, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, limit, offset)
	}
	return nil, nil
}

func (m *mockJobRepository) Count(ctx context.Context, filter model.PrintJobFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockJobRepository) TransitionStatus(context.Context, string, model.JobStatus, model.JobStatus, time.Time) (*model.PrintJob, error) {
	return nil, printjobserrors.ErrNotFound
}

func (m *mockJobRepository) Delete(context.Context, string) (*model.PrintJob, error) {
	return nil, printjobserrors.ErrNotFound
}

func (m *mockJobRepository) DeleteIfCreatedBefore(ctx context.Context, id string, cutoff time.Time) (*model.PrintJob, error) {
	if m.deleteIfCreatedFunc != nil {
		return m.deleteIfCreatedFunc(ctx, id, cutoff)
	}
	return nil, printjobserrors.ErrNotFound
}

func (m *mockJobRepository) SummarizeCustomer(context.Context, string) (*model.CustomerJobSummary, error) {
	return &model.CustomerJobSummary{}, nil
}

func (m *mockJobRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type memoryMarkers struct {
	mu     sync.Mutex
	marker *model.SweepMarker
	getErr error
}

func (m *memoryMarkers) Get(context.Context, string) (*model.SweepMarker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marker, m.getErr
}

func (m *memoryMarkers) Record(_ context.Context, name string, result *model.SweepResult) (*model.SweepMarker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marker == nil {
		m.marker = &model.SweepMarker{Name: name}
	}
	m.marker.LastRunAt = result.StartedAt
	m.marker.LastDeleted = result.DeletedCount
	m.marker.LastErrors = result.Errors
	m.marker.TotalDeleted += int64(result.DeletedCount)
	return m.marker, nil
}

type fakeStore struct {
	mu      sync.Mutex
	deleted []string
	failOn  string
}

func (s *fakeStore) Upload(context.Context, string, string, io.Reader, string) (*storage.Object, error) {
	return nil, errors.New("not supported")
}

func (s *fakeStore) Open(context.Context, string, string) (io.ReadCloser, *storage.Object, error) {
	return nil, nil, storage.ErrObjectNotFound
}

func (s *fakeStore) Delete(_ context.Context, _, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == s.failOn {
		return errors.New("storage unavailable")
	}
	s.deleted = append(s.deleted, path)
	return nil
}

type countingPublisher struct {
	mu     sync.Mutex
	events []model.ChangeEvent
}

func (p *countingPublisher) Publish(_ context.Context, ev model.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:             logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
		UploadBucket:    "user-uploads",
		ExpiryWindow:    24 * time.Hour,
		ExpiringWindow:  2 * time.Hour,
		CleanupInterval: time.Hour,
	}
}

func expiredJob(id string) *model.PrintJob {
	return &model.PrintJob{
		ID:          id,
		ShopOwnerID: "shop-1",
		CustomerID:  "cust-1",
		FileName:    id + ".pdf",
		CreatedAt:   fixedNow.Add(-30 * time.Hour),
	}
}

func newTestSweeper(repo *mockJobRepository, store *fakeStore, pub *countingPublisher, markers *memoryMarkers) *Sweeper {
	s := NewSweeper(repo, markers, store, pub, testConfig())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSweeperRun(t *testing.T) {
	var gotCutoff time.Time
	repo := &mockJobRepository{
		findFunc: func(_ context.Context, filter model.PrintJobFilter, _ int, _ int64) ([]*model.PrintJob, error) {
			gotCutoff = filter.CreatedBefore
			return []*model.PrintJob{expiredJob("a"), expiredJob("b"), expiredJob("gone"), expiredJob("broken")}, nil
		},
		deleteIfCreatedFunc: func(_ context.Context, id string, _ time.Time) (*model.PrintJob, error) {
			switch id {
			case "gone":
				return nil, printjobserrors.ErrNotFound
			case "broken":
				return nil, errors.New("write conflict")
			}
			return expiredJob(id), nil
		},
	}
	store := &fakeStore{failOn: "cust-1/b.pdf"}
	pub := &countingPublisher{}
	markers := &memoryMarkers{}

	result := newTestSweeper(repo, store, pub, markers).Run(context.Background())

	if !gotCutoff.Equal(fixedNow.Add(-24 * time.Hour)) {
		t.Errorf("unexpected cutoff %v", gotCutoff)
	}
	if result.DeletedCount != 2 {
		t.Errorf("expected 2 deleted, got %d", result.DeletedCount)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
	if len(pub.events) != 2 {
		t.Errorf("expected 2 DELETE events, got %d", len(pub.events))
	}
	for _, ev := range pub.events {
		if ev.Type != model.ChangeDelete {
			t.Errorf("expected DELETE, got %s", ev.Type)
		}
	}
	if markers.marker == nil || markers.marker.LastDeleted != 2 || !markers.marker.LastRunAt.Equal(fixedNow) {
		t.Errorf("unexpected marker %+v", markers.marker)
	}
}

func TestSweeperRun_FindFailureStillRecordsMarker(t *testing.T) {
	repo := &mockJobRepository{
		findFunc: func(context.Context, model.PrintJobFilter, int, int64) ([]*model.PrintJob, error) {
			return nil, errors.New("connection refused")
		},
	}
	markers := &memoryMarkers{}

	result := newTestSweeper(repo, &fakeStore{}, &countingPublisher{}, markers).Run(context.Background())
	if len(result.Errors) != 1 || result.DeletedCount != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if markers.marker == nil {
		t.Error("expected marker to be recorded")
	}
}

func TestSweeperRun_SkipsOverlap(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	repo := &mockJobRepository{
		findFunc: func(context.Context, model.PrintJobFilter, int, int64) ([]*model.PrintJob, error) {
			close(entered)
			<-release
			return nil, nil
		},
	}
	s := newTestSweeper(repo, &fakeStore{}, &countingPublisher{}, &memoryMarkers{})

	done := make(chan *model.SweepResult)
	go func() { done <- s.Run(context.Background()) }()
	<-entered

	if second := s.Run(context.Background()); !second.Skipped {
		t.Error("expected overlapping run to be skipped")
	}

	close(release)
	if first := <-done; first.Skipped {
		t.Error("first run should not be skipped")
	}
}

func TestSweeperSchedule(t *testing.T) {
	s := newTestSweeper(&mockJobRepository{}, &fakeStore{}, &countingPublisher{}, &memoryMarkers{})
	if s.NextRun() != nil {
		t.Error("expected no next run before start")
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	next := s.NextRun()
	if next == nil {
		t.Fatal("expected a scheduled run")
	}
	if until := time.Until(*next); until <= 0 || until > time.Hour+time.Minute {
		t.Errorf("next run %v not within the interval", next)
	}
}
