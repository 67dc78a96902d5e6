package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	printjobserrors "printhub/internal/printjobs/errors"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
	"printhub/pkg/model"
	"printhub/pkg/storage"
	"printhub/pkg/validation"
)

const (
	shopID     = "65f1a2b3c4d5e6f7a8b9c0d1"
	otherShop  = "65f1a2b3c4d5e6f7a8b9c0d9"
	customerID = "65f1a2b3c4d5e6f7a8b9c0d2"
	jobID      = "65f1a2b3c4d5e6f7a8b9c0d3"
)

var (
	shopCaller     = auth.Identity{UserID: shopID, Role: model.RoleShopOwner}
	customerCaller = auth.Identity{UserID: customerID, Email: "c@example.com", Role: model.RoleCustomer}
	fixedNow       = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

type mockPrintJobRepository struct {
	createFunc          func(ctx context.Context, job *model.PrintJob) error
	findByIDFunc        func(ctx context.Context, id string) (*model.PrintJob, error)
	findFunc            func(ctx context.Context, filter model.PrintJobFilter, limit int, offset int64) ([]*model.PrintJob, error)
	countFunc           func(ctx context.Context, filter model.PrintJobFilter) (int64, error)
	transitionFunc      func(ctx context.Context, id string, from, to model.JobStatus, at time.Time) (*model.PrintJob, error)
	deleteFunc          func(ctx context.Context, id string) (*model.PrintJob, error)
	deleteIfCreatedFunc func(ctx context.Context, id string, cutoff time.Time) (*model.PrintJob, error)
	summarizeFunc       func(ctx context.Context, customerID string) (*model.CustomerJobSummary, error)
}

func (m *mockPrintJobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, job)
	}
	job.ID = jobID
	return nil
}

func (m *mockPrintJobRepository) FindByID(ctx context.Context, id string) (*model.PrintJob, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, printjobserrors.ErrNotFound
}

func (m *mockPrintJobRepository) Find(ctx context.Context, filter model.PrintJobFilter, limit int, offset int64) ([]*model.PrintJob, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, limit, offset)
	}
	return nil, nil
}

func (m *mockPrintJobRepository) Count(ctx context.Context, filter model.PrintJobFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockPrintJobRepository) TransitionStatus(ctx context.Context, id string, from, to model.JobStatus, at time.Time) (*model.PrintJob, error) {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, id, from, to, at)
	}
	return nil, printjobserrors.ErrNotFound
}

func (m *mockPrintJobRepository) Delete(ctx context.Context, id string) (*model.PrintJob, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil, printjobserrors.ErrNotFound
}

func (m *mockPrintJobRepository) DeleteIfCreatedBefore(ctx context.Context, id string, cutoff time.Time) (*model.PrintJob, error) {
	if m.deleteIfCreatedFunc != nil {
		return m.deleteIfCreatedFunc(ctx, id, cutoff)
	}
	return nil, printjobserrors.ErrNotFound
}

func (m *mockPrintJobRepository) SummarizeCustomer(ctx context.Context, customerID string) (*model.CustomerJobSummary, error) {
	if m.summarizeFunc != nil {
		return m.summarizeFunc(ctx, customerID)
	}
	return &model.CustomerJobSummary{}, nil
}

func (m *mockPrintJobRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev model.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type fakeStore struct {
	uploaded map[string]int64
	deleted  []string
}

func (s *fakeStore) Upload(_ context.Context, bucket, path string, r io.Reader, contentType string) (*storage.Object, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, err
	}
	if s.uploaded == nil {
		s.uploaded = map[string]int64{}
	}
	s.uploaded[path] = n
	return &storage.Object{Bucket: bucket, Path: path, ContentType: contentType, Size: n}, nil
}

func (s *fakeStore) Open(context.Context, string, string) (io.ReadCloser, *storage.Object, error) {
	return nil, nil, storage.ErrObjectNotFound
}

func (s *fakeStore) Delete(_ context.Context, _, path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}

type fakeSigner struct{}

func (fakeSigner) SignedURL(bucket, path string, _ time.Duration) (string, error) {
	return "https://files.test/" + bucket + "/" + path, nil
}

func (fakeSigner) Resolve(string) (string, string, error) {
	return "", "", storage.ErrInvalidURL
}

type fixedPricer float64

func (p fixedPricer) JobCost(context.Context, string, model.JobSpec) (float64, error) {
	return float64(p), nil
}

type fixture struct {
	svc   *printJobService
	repo  *mockPrintJobRepository
	pub   *recordingPublisher
	store *fakeStore
}

func newFixture() *fixture {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{
		Log:            log,
		UploadBucket:   "print-files",
		SignedURLTTL:   time.Hour,
		ExpiryWindow:   24 * time.Hour,
		ExpiringWindow: 2 * time.Hour,
	}
	f := &fixture{repo: &mockPrintJobRepository{}, pub: &recordingPublisher{}, store: &fakeStore{}}
	svc := NewPrintJobService(f.repo, validation.New(log), f.pub, f.store, fakeSigner{}, fixedPricer(12.5), cfg)
	f.svc = svc.(*printJobService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func storedJob(status model.JobStatus) *model.PrintJob {
	return &model.PrintJob{
		ID:          jobID,
		ShopOwnerID: shopID,
		CustomerID:  customerID,
		FileName:    "thesis.pdf",
		FileURL:     customerID + "/1700000000000-abcd1234.pdf",
		Pages:       10,
		Copies:      1,
		Status:      status,
		CreatedAt:   fixedNow.Add(-time.Hour),
		SubmittedAt: fixedNow.Add(-time.Hour),
	}
}

func (f *fixture) withJob(job *model.PrintJob) {
	f.repo.findByIDFunc = func(_ context.Context, id string) (*model.PrintJob, error) {
		if id != job.ID {
			return nil, printjobserrors.ErrNotFound
		}
		copied := *job
		return &copied, nil
	}
	f.repo.transitionFunc = func(_ context.Context, id string, from, to model.JobStatus, at time.Time) (*model.PrintJob, error) {
		if from != job.Status {
			return nil, printjobserrors.ErrStatusConflict
		}
		job.Status = to
		job.UpdatedAt = at
		copied := *job
		return &copied, nil
	}
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantErr  string
	}{
		{name: "pdf", fileName: "Thesis Final.pdf"},
		{name: "upper case extension", fileName: "scan.PNG"},
		{name: "unsupported", fileName: "run.exe", wantErr: apperrors.CodeInvalidInput},
		{name: "no extension", fileName: "README", wantErr: apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			got, err := f.svc.Upload(context.Background(), customerCaller, tt.fileName, "application/pdf", strings.NewReader("hello"))
			if tt.wantErr != "" {
				if !apperrors.HasCode(err, tt.wantErr) {
					t.Fatalf("expected %s, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(got.StoragePath, customerID+"/") {
				t.Errorf("storage path %q not scoped to the uploader", got.StoragePath)
			}
			if got.FileSize != 5 {
				t.Errorf("expected size 5, got %d", got.FileSize)
			}
			if got.URL == "" {
				t.Error("expected a signed url")
			}
		})
	}
}

func TestCreate_AppliesServerSideDefaults(t *testing.T) {
	f := newFixture()
	var stored *model.PrintJob
	f.repo.createFunc = func(_ context.Context, job *model.PrintJob) error {
		job.ID = jobID
		stored = job
		return nil
	}

	job := &model.PrintJob{
		ShopOwnerID:   shopID,
		CustomerID:    otherShop,
		FileName:      "notes.pdf",
		FileURL:       customerID + "/1-abc.pdf",
		Pages:         4,
		Status:        model.JobStatusCompleted,
		TotalCost:     0.01,
		PrintSettings: &model.PrintSettings{ColorType: model.ColorTypeColor},
	}
	if err := f.svc.Create(context.Background(), customerCaller, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.CustomerID != customerID {
		t.Errorf("customer id should come from the caller, got %s", stored.CustomerID)
	}
	if stored.Status != model.JobStatusPending {
		t.Errorf("expected pending, got %s", stored.Status)
	}
	if stored.Copies != 1 || stored.PrintSettings.Copies != 1 {
		t.Errorf("expected copies defaulted to 1, got %d/%d", stored.Copies, stored.PrintSettings.Copies)
	}
	if stored.ColorPages != 4 {
		t.Errorf("expected 4 color pages, got %d", stored.ColorPages)
	}
	if stored.TotalCost != 12.5 {
		t.Errorf("expected cost from pricer, got %v", stored.TotalCost)
	}
	if stored.CustomerEmail != "c@example.com" {
		t.Errorf("expected caller email, got %q", stored.CustomerEmail)
	}
	if !stored.SubmittedAt.Equal(fixedNow) {
		t.Errorf("unexpected submitted_at %v", stored.SubmittedAt)
	}

	if len(f.pub.events) != 1 || f.pub.events[0].Type != model.ChangeInsert {
		t.Fatalf("expected one INSERT event, got %+v", f.pub.events)
	}
	if f.pub.events[0].ShopOwnerID != shopID {
		t.Errorf("event scoped to wrong shop: %s", f.pub.events[0].ShopOwnerID)
	}
}

func TestCreate_RejectsForeignFile(t *testing.T) {
	f := newFixture()
	job := &model.PrintJob{
		ShopOwnerID: shopID,
		FileName:    "notes.pdf",
		FileURL:     otherShop + "/1-abc.pdf",
		Pages:       1,
	}
	err := f.svc.Create(context.Background(), customerCaller, job)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreate_ValidationError(t *testing.T) {
	f := newFixture()
	err := f.svc.Create(context.Background(), customerCaller, &model.PrintJob{ShopOwnerID: "bad", FileName: "a.pdf", Pages: 1})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.pub.events) != 0 {
		t.Error("no event expected for a rejected job")
	}
}

func TestGetByID_Access(t *testing.T) {
	tests := []struct {
		name     string
		caller   auth.Identity
		id       string
		wantCode string
	}{
		{name: "shop owner", caller: shopCaller, id: jobID},
		{name: "customer", caller: customerCaller, id: jobID},
		{name: "stranger", caller: auth.Identity{UserID: otherShop}, id: jobID, wantCode: apperrors.CodeNotFound},
		{name: "missing", caller: shopCaller, id: otherShop, wantCode: apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.withJob(storedJob(model.JobStatusPending))

			_, err := f.svc.GetByID(context.Background(), tt.caller, tt.id)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(context.Context, string) (*model.PrintJob, error) {
		return nil, printjobserrors.ErrInvalidID
	}
	_, err := f.svc.GetByID(context.Background(), shopCaller, "nope")
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestListByShop(t *testing.T) {
	f := newFixture()
	var gotFilter model.PrintJobFilter
	var gotLimit int
	f.repo.findFunc = func(_ context.Context, filter model.PrintJobFilter, limit int, _ int64) ([]*model.PrintJob, error) {
		gotFilter = filter
		gotLimit = limit
		return []*model.PrintJob{storedJob(model.JobStatusQueued)}, nil
	}
	f.repo.countFunc = func(context.Context, model.PrintJobFilter) (int64, error) {
		return 42, nil
	}

	jobs, total, err := f.svc.ListByShop(context.Background(), shopID, model.JobStatusQueued, 0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 || total != 42 {
		t.Errorf("expected 1 job of 42, got %d of %d", len(jobs), total)
	}
	if gotFilter.ShopOwnerID != shopID || gotFilter.Status != model.JobStatusQueued {
		t.Errorf("unexpected filter %+v", gotFilter)
	}
	if gotLimit != 10 {
		t.Errorf("expected default limit of 10, got %d", gotLimit)
	}

	if _, _, err := f.svc.ListByShop(context.Background(), shopID, "lost", 10, 0); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for unknown status, got %v", err)
	}
}

func TestListByShop_CountFailure(t *testing.T) {
	f := newFixture()
	f.repo.countFunc = func(context.Context, model.PrintJobFilter) (int64, error) {
		return 0, errors.New("boom")
	}
	if _, _, err := f.svc.ListByShop(context.Background(), shopID, "", 10, 0); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		from     model.JobStatus
		to       model.JobStatus
		owner    string
		wantCode string
	}{
		{name: "pending to queued", from: model.JobStatusPending, to: model.JobStatusQueued, owner: shopID},
		{name: "skip ahead", from: model.JobStatusPending, to: model.JobStatusCompleted, owner: shopID},
		{name: "backwards", from: model.JobStatusPrinting, to: model.JobStatusQueued, owner: shopID, wantCode: apperrors.CodeConflict},
		{name: "from terminal", from: model.JobStatusCompleted, to: model.JobStatusCancelled, owner: shopID, wantCode: apperrors.CodeConflict},
		{name: "unknown status", from: model.JobStatusPending, to: "lost", owner: shopID, wantCode: apperrors.CodeInvalidInput},
		{name: "other shop", from: model.JobStatusPending, to: model.JobStatusQueued, owner: otherShop, wantCode: apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.withJob(storedJob(tt.from))

			got, err := f.svc.UpdateStatus(context.Background(), tt.owner, jobID, tt.to)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				if len(f.pub.events) != 0 {
					t.Error("no event expected on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.to {
				t.Errorf("expected %s, got %s", tt.to, got.Status)
			}
			if len(f.pub.events) != 1 || f.pub.events[0].Type != model.ChangeUpdate {
				t.Errorf("expected one UPDATE event, got %+v", f.pub.events)
			}
		})
	}
}

func TestUpdateStatus_ConcurrentChange(t *testing.T) {
	f := newFixture()
	f.withJob(storedJob(model.JobStatusPending))
	f.repo.transitionFunc = func(context.Context, string, model.JobStatus, model.JobStatus, time.Time) (*model.PrintJob, error) {
		return nil, printjobserrors.ErrStatusConflict
	}

	_, err := f.svc.UpdateStatus(context.Background(), shopID, jobID, model.JobStatusQueued)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDirectPrint(t *testing.T) {
	f := newFixture()
	f.withJob(storedJob(model.JobStatusQueued))

	got, err := f.svc.DirectPrint(context.Background(), shopID, jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Job.Status != model.JobStatusCompleted {
		t.Errorf("expected completed, got %s", got.Job.Status)
	}
	if !strings.Contains(got.URL, "1700000000000-abcd1234.pdf") {
		t.Errorf("unexpected url %s", got.URL)
	}

	again, err := f.svc.DirectPrint(context.Background(), shopID, jobID)
	if err != nil {
		t.Fatalf("reprint failed: %v", err)
	}
	if again.URL == "" {
		t.Error("expected url on reprint")
	}
	if len(f.pub.events) != 1 {
		t.Errorf("reprint must not emit another event, got %d", len(f.pub.events))
	}
}

func TestDirectPrint_Rejections(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		f := newFixture()
		f.withJob(storedJob(model.JobStatusCancelled))
		if _, err := f.svc.DirectPrint(context.Background(), shopID, jobID); !apperrors.HasCode(err, apperrors.CodeConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("expired file", func(t *testing.T) {
		f := newFixture()
		job := storedJob(model.JobStatusPending)
		job.CreatedAt = fixedNow.Add(-25 * time.Hour)
		f.withJob(job)
		if _, err := f.svc.DirectPrint(context.Background(), shopID, jobID); !apperrors.HasCode(err, apperrors.CodeExpired) {
			t.Fatalf("expected gone, got %v", err)
		}
		if job.Status != model.JobStatusPending {
			t.Error("expired job must stay untouched")
		}
	})
}

func TestBulkUpdateStatus_PartialFailure(t *testing.T) {
	f := newFixture()
	f.withJob(storedJob(model.JobStatusPending))

	req := &model.BulkStatusUpdate{IDs: []string{jobID, otherShop}, Status: model.JobStatusQueued}
	got, err := f.svc.BulkUpdateStatus(context.Background(), shopID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Succeeded) != 1 || got.Succeeded[0] != jobID {
		t.Errorf("unexpected successes %v", got.Succeeded)
	}
	if _, ok := got.Failed[otherShop]; !ok {
		t.Errorf("expected failure for %s, got %v", otherShop, got.Failed)
	}
	if got.Message() != "1 succeeded, 1 failed" {
		t.Errorf("unexpected message %q", got.Message())
	}
}

func TestBulkUpdateStatus_Validation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.BulkUpdateStatus(context.Background(), shopID, &model.BulkStatusUpdate{Status: model.JobStatusQueued})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBulkDirectPrint(t *testing.T) {
	f := newFixture()
	f.withJob(storedJob(model.JobStatusPrinting))

	got, err := f.svc.BulkDirectPrint(context.Background(), shopID, []string{jobID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URLs[jobID] == "" {
		t.Error("expected url for printed job")
	}

	if _, err := f.svc.BulkDirectPrint(context.Background(), shopID, nil); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for empty selection, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name     string
		caller   auth.Identity
		status   model.JobStatus
		wantCode string
	}{
		{name: "customer while pending", caller: customerCaller, status: model.JobStatusPending},
		{name: "customer while queued", caller: customerCaller, status: model.JobStatusQueued},
		{name: "customer while printing", caller: customerCaller, status: model.JobStatusPrinting, wantCode: apperrors.CodeConflict},
		{name: "shop while printing", caller: shopCaller, status: model.JobStatusPrinting},
		{name: "already completed", caller: shopCaller, status: model.JobStatusCompleted, wantCode: apperrors.CodeConflict},
		{name: "stranger", caller: auth.Identity{UserID: otherShop}, status: model.JobStatusPending, wantCode: apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.withJob(storedJob(tt.status))

			got, err := f.svc.Cancel(context.Background(), tt.caller, jobID)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != model.JobStatusCancelled {
				t.Errorf("expected cancelled, got %s", got.Status)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	f := newFixture()
	job := storedJob(model.JobStatusCompleted)
	f.withJob(job)
	f.repo.deleteFunc = func(context.Context, string) (*model.PrintJob, error) {
		copied := *job
		return &copied, nil
	}

	if err := f.svc.Delete(context.Background(), customerCaller, jobID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("customer must not delete, got %v", err)
	}

	if err := f.svc.Delete(context.Background(), shopCaller, jobID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != job.FileURL {
		t.Errorf("expected stored file removed, got %v", f.store.deleted)
	}
	if len(f.pub.events) != 1 || f.pub.events[0].Type != model.ChangeDelete || f.pub.events[0].Record != nil {
		t.Errorf("expected one DELETE event without record, got %+v", f.pub.events)
	}
}

func TestFileURL(t *testing.T) {
	f := newFixture()
	job := storedJob(model.JobStatusPending)
	f.withJob(job)

	url, err := f.svc.FileURL(context.Background(), customerCaller, jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://files.test/print-files/") {
		t.Errorf("unexpected url %s", url)
	}

	job.CreatedAt = fixedNow.Add(-24 * time.Hour)
	if _, err := f.svc.FileURL(context.Background(), customerCaller, jobID); !apperrors.HasCode(err, apperrors.CodeExpired) {
		t.Errorf("expected gone at the expiry boundary, got %v", err)
	}
}

func TestSpec(t *testing.T) {
	job := &model.PrintJob{Pages: 3, Copies: 2}
	got := Spec(job)
	if got.ColorType != model.ColorTypeBlackWhite {
		t.Errorf("expected black_white default, got %s", got.ColorType)
	}

	job.PrintSettings = &model.PrintSettings{ColorType: model.ColorTypeColor, PaperQuality: model.PaperQualityPremium}
	got = Spec(job)
	if got.ColorType != model.ColorTypeColor || got.PaperQuality != model.PaperQualityPremium || got.Pages != 3 || got.Copies != 2 {
		t.Errorf("unexpected spec %+v", got)
	}
}
