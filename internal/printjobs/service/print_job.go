package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"printhub/internal/expiry/policy"
	printjobserrors "printhub/internal/printjobs/errors"
	"printhub/internal/printjobs/repository"
	"printhub/internal/realtime"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
	"printhub/pkg/sanitizer"
	"printhub/pkg/storage"
	"printhub/pkg/validation"
)

// AllowedExtensions lists the document types customers may upload.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Pricer prices one document with a shop's rules.
type Pricer interface {
	JobCost(ctx context.Context, shopOwnerID string, job model.JobSpec) (float64, error)
}

type DirectPrintResult struct {
	Job *model.PrintJob `json:"job"`
	URL string          `json:"url"`
}

type PrintJobService interface {
	Upload(ctx context.Context, caller auth.Identity, fileName, contentType string, r io.Reader) (*model.UploadedFile, error)
	Create(ctx context.Context, caller auth.Identity, job *model.PrintJob) error
	GetByID(ctx context.Context, caller auth.Identity, id string) (*model.PrintJob, error)
	ListByShop(ctx context.Context, shopOwnerID string, status model.JobStatus, limit int, offset int64) ([]*model.PrintJob, int64, error)
	ListByCustomer(ctx context.Context, customerID string, status model.JobStatus) ([]*model.PrintJob, error)
	UpdateStatus(ctx context.Context, shopOwnerID, id string, to model.JobStatus) (*model.PrintJob, error)
	DirectPrint(ctx context.Context, shopOwnerID, id string) (*DirectPrintResult, error)
	BulkUpdateStatus(ctx context.Context, shopOwnerID string, req *model.BulkStatusUpdate) (*model.BulkResult, error)
	BulkDirectPrint(ctx context.Context, shopOwnerID string, ids []string) (*model.BulkResult, error)
	Cancel(ctx context.Context, caller auth.Identity, id string) (*model.PrintJob, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
	FileURL(ctx context.Context, caller auth.Identity, id string) (string, error)
	CustomerSummary(ctx context.Context, customerID string) (*model.CustomerJobSummary, error)
}

type printJobService struct {
	repo      repository.PrintJobRepository
	validator *validation.Validator
	publisher realtime.Publisher
	store     storage.Store
	signer    storage.URLSigner
	pricer    Pricer
	policy    policy.Policy
	cfg       *config.Config
	now       func() time.Time
}

func NewPrintJobService(
	repo repository.PrintJobRepository,
	v *validation.Validator,
	publisher realtime.Publisher,
	store storage.Store,
	signer storage.URLSigner,
	pricer Pricer,
	cfg *config.Config,
) PrintJobService {
	return &printJobService{
		repo:      repo,
		validator: v,
		publisher: publisher,
		store:     store,
		signer:    signer,
		pricer:    pricer,
		policy:    policy.New(cfg.ExpiryWindow, cfg.ExpiringWindow),
		cfg:       cfg,
		now:       mongotx.Now,
	}
}

func (s *printJobService) Upload(ctx context.Context, caller auth.Identity, fileName, contentType string, r io.Reader) (*model.UploadedFile, error) {
	fileName = sanitizer.FileName(fileName)
	ext := strings.ToLower(filepath.Ext(fileName))
	if fileName == "" || !AllowedExtensions[ext] {
		return nil, apperrors.InvalidInput("Supported files are PDF, Word, Text and images (.pdf, .doc, .docx, .txt, .jpg, .jpeg, .png)")
	}

	objectPath := fmt.Sprintf("%s/%d-%s%s", caller.UserID, s.now().UnixMilli(), uuid.NewString()[:8], ext)
	obj, err := s.store.Upload(ctx, s.cfg.UploadBucket, objectPath, r, contentType)
	if err != nil {
		s.cfg.Log.Error("failed to upload file", "user_id", caller.UserID, "file_name", fileName, "error", err)
		return nil, apperrors.Internal("failed to upload file", err)
	}

	uploaded := &model.UploadedFile{
		FileName:    fileName,
		StoragePath: objectPath,
		ContentType: obj.ContentType,
		FileSize:    obj.Size,
	}
	if url, err := s.signer.SignedURL(s.cfg.UploadBucket, objectPath, s.cfg.SignedURLTTL); err == nil {
		uploaded.URL = url
	}

	s.cfg.Log.Info("file uploaded", "user_id", caller.UserID, "path", objectPath, "size", obj.Size)
	return uploaded, nil
}

func (s *printJobService) sanitize(job *model.PrintJob) {
	job.FileName = sanitizer.FileName(job.FileName)
	job.CustomerName = sanitizer.Text(job.CustomerName)
	job.CustomerEmail = sanitizer.Email(job.CustomerEmail)
	job.Notes = sanitizer.Text(job.Notes)
}

func (s *printJobService) applyDefaults(job *model.PrintJob) {
	now := s.now()

	job.ID = ""
	job.Status = model.JobStatusPending
	if job.Copies < 1 {
		job.Copies = 1
	}
	if job.PrintSettings != nil && job.PrintSettings.Copies < 1 {
		job.PrintSettings.Copies = job.Copies
	}

	job.ColorPages = 0
	if job.PrintSettings.IsColor() {
		job.ColorPages = job.Pages
	}

	job.SubmittedAt = now
	job.CreatedAt = now
	job.UpdatedAt = now
	job.StartedAt = nil
	job.CompletedAt = nil
	job.CancelledAt = nil
}

// Spec returns the pricing input for a job.
func Spec(job *model.PrintJob) model.JobSpec {
	spec := model.JobSpec{Pages: job.Pages, Copies: job.Copies, ColorType: model.ColorTypeBlackWhite}
	if job.PrintSettings != nil {
		if job.PrintSettings.ColorType != "" {
			spec.ColorType = job.PrintSettings.ColorType
		}
		spec.PaperQuality = job.PrintSettings.PaperQuality
	}
	return spec
}

func (s *printJobService) Create(ctx context.Context, caller auth.Identity, job *model.PrintJob) error {
	job.CustomerID = caller.UserID
	if job.CustomerEmail == "" {
		job.CustomerEmail = caller.Email
	}
	if job.FileURL != "" && !strings.HasPrefix(job.FileURL, caller.UserID+"/") {
		return apperrors.Forbidden("The file does not belong to you")
	}

	s.sanitize(job)
	s.applyDefaults(job)

	if err := s.validator.Struct(job); err != nil {
		return validation.ToAppError(err)
	}

	if s.pricer != nil {
		cost, err := s.pricer.JobCost(ctx, job.ShopOwnerID, Spec(job))
		if err != nil {
			return err
		}
		job.TotalCost = cost
	}

	if err := s.repo.Create(ctx, job); err != nil {
		s.cfg.Log.Error("failed to create print job",
			"shop_owner_id", job.ShopOwnerID,
			"customer_id", job.CustomerID,
			"error", err,
		)
		return apperrors.Internal("failed to create print job", err)
	}

	realtime.PublishAll(ctx, s.publisher, s.cfg.Log, model.NewJobEvent(model.ChangeInsert, job))

	s.cfg.Log.Info("print job created",
		"job_id", job.ID,
		"shop_owner_id", job.ShopOwnerID,
		"customer_id", job.CustomerID,
		"total_cost", job.TotalCost,
	)
	return nil
}

func (s *printJobService) find(ctx context.Context, id string) (*model.PrintJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "failed to retrieve print job")
	}
	return job, nil
}

func (s *printJobService) mapError(err error, id, msg string) error {
	switch {
	case errors.Is(err, printjobserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("invalid print job ID format: %s", id))
	case errors.Is(err, printjobserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Print job", id)
	case errors.Is(err, printjobserrors.ErrStatusConflict):
		return apperrors.Conflict("The print job was updated by someone else. Refresh and try again.")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error(msg, "job_id", id, "error", err)
	return apperrors.Internal(msg, err)
}

// findOwned loads a job that belongs to shopOwnerID. Jobs of other shops
// are reported as missing.
func (s *printJobService) findOwned(ctx context.Context, shopOwnerID, id string) (*model.PrintJob, error) {
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.ShopOwnerID != shopOwnerID {
		return nil, apperrors.NotFoundWithID("Print job", id)
	}
	return job, nil
}

func canView(caller auth.Identity, job *model.PrintJob) bool {
	return caller.UserID == job.ShopOwnerID || caller.UserID == job.CustomerID
}

func (s *printJobService) GetByID(ctx context.Context, caller auth.Identity, id string) (*model.PrintJob, error) {
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, job) {
		return nil, apperrors.NotFoundWithID("Print job", id)
	}
	return job, nil
}

func (s *printJobService) ListByShop(ctx context.Context, shopOwnerID string, status model.JobStatus, limit int, offset int64) ([]*model.PrintJob, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status filter: %s", status))
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)
	filter := model.PrintJobFilter{ShopOwnerID: shopOwnerID, Status: status}

	var (
		jobs            []*model.PrintJob
		total           int64
		findErr, cntErr error
		wg              sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		jobs, findErr = s.repo.Find(ctx, filter, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, cntErr = s.repo.Count(ctx, filter)
	}()
	wg.Wait()

	if findErr != nil {
		s.cfg.Log.Error("failed to list print jobs", "shop_owner_id", shopOwnerID, "error", findErr)
		return nil, 0, apperrors.Internal("failed to list print jobs", findErr)
	}
	if cntErr != nil {
		s.cfg.Log.Error("failed to count print jobs", "shop_owner_id", shopOwnerID, "error", cntErr)
		return nil, 0, apperrors.Internal("failed to count print jobs", cntErr)
	}
	if jobs == nil {
		jobs = []*model.PrintJob{}
	}
	return jobs, total, nil
}

func (s *printJobService) ListByCustomer(ctx context.Context, customerID string, status model.JobStatus) ([]*model.PrintJob, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status filter: %s", status))
	}

	jobs, err := s.repo.Find(ctx, model.PrintJobFilter{CustomerID: customerID, Status: status}, 0, 0)
	if err != nil {
		s.cfg.Log.Error("failed to list customer print jobs", "customer_id", customerID, "error", err)
		return nil, apperrors.Internal("failed to list print jobs", err)
	}
	if jobs == nil {
		jobs = []*model.PrintJob{}
	}
	return jobs, nil
}

func (s *printJobService) UpdateStatus(ctx context.Context, shopOwnerID, id string, to model.JobStatus) (*model.PrintJob, error) {
	if !to.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status: %s", to))
	}
	job, err := s.findOwned(ctx, shopOwnerID, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, job, to)
}

func (s *printJobService) transition(ctx context.Context, job *model.PrintJob, to model.JobStatus) (*model.PrintJob, error) {
	if !model.CanTransition(job.Status, to) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot change print job from %s to %s", job.Status, to))
	}

	updated, err := s.repo.TransitionStatus(ctx, job.ID, job.Status, to, s.now())
	if err != nil {
		return nil, s.mapError(err, job.ID, "failed to update print job status")
	}

	realtime.PublishAll(ctx, s.publisher, s.cfg.Log, model.NewJobEvent(model.ChangeUpdate, updated))

	s.cfg.Log.Info("print job status updated",
		"job_id", updated.ID,
		"shop_owner_id", updated.ShopOwnerID,
		"from", job.Status,
		"to", to,
	)
	return updated, nil
}

func (s *printJobService) signedURL(job *model.PrintJob) (string, error) {
	if s.policy.IsExpired(job.CreatedAt, s.now()) {
		return "", apperrors.Gone("This file has expired and is no longer available")
	}
	url, err := s.signer.SignedURL(s.cfg.UploadBucket, job.StoragePath(), s.cfg.SignedURLTTL)
	if err != nil {
		s.cfg.Log.Error("failed to sign file url", "job_id", job.ID, "error", err)
		return "", apperrors.Internal("failed to create file link", err)
	}
	return url, nil
}

// DirectPrint hands out the file link and marks the job completed in the
// same step. Opening the file for printing counts as finishing the job.
func (s *printJobService) DirectPrint(ctx context.Context, shopOwnerID, id string) (*DirectPrintResult, error) {
	job, err := s.findOwned(ctx, shopOwnerID, id)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusCancelled {
		return nil, apperrors.Conflict("cannot print a cancelled job")
	}

	url, err := s.signedURL(job)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusCompleted {
		if job, err = s.transition(ctx, job, model.JobStatusCompleted); err != nil {
			return nil, err
		}
	}
	return &DirectPrintResult{Job: job, URL: url}, nil
}

func (s *printJobService) BulkUpdateStatus(ctx context.Context, shopOwnerID string, req *model.BulkStatusUpdate) (*model.BulkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	result := &model.BulkResult{Succeeded: []string{}, Failed: map[string]string{}}
	for _, id := range req.IDs {
		if _, err := s.UpdateStatus(ctx, shopOwnerID, id, req.Status); err != nil {
			result.Failed[id] = apperrors.AsAppError(err).Message
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	s.cfg.Log.Info("bulk status update finished",
		"shop_owner_id", shopOwnerID,
		"status", req.Status,
		"result", result.Message(),
	)
	return result, nil
}

func (s *printJobService) BulkDirectPrint(ctx context.Context, shopOwnerID string, ids []string) (*model.BulkResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.InvalidInput("No jobs selected")
	}

	result := &model.BulkResult{Succeeded: []string{}, Failed: map[string]string{}, URLs: map[string]string{}}
	for _, id := range ids {
		printed, err := s.DirectPrint(ctx, shopOwnerID, id)
		if err != nil {
			result.Failed[id] = apperrors.AsAppError(err).Message
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		result.URLs[id] = printed.URL
	}

	s.cfg.Log.Info("bulk print finished", "shop_owner_id", shopOwnerID, "result", result.Message())
	return result, nil
}

// Cancel lets the shop cancel any open job. Customers may withdraw their own
// job until printing starts.
func (s *printJobService) Cancel(ctx context.Context, caller auth.Identity, id string) (*model.PrintJob, error) {
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch caller.UserID {
	case job.ShopOwnerID:
	case job.CustomerID:
		if job.Status == model.JobStatusPrinting {
			return nil, apperrors.Conflict("The shop has already started printing this job")
		}
	default:
		return nil, apperrors.NotFoundWithID("Print job", id)
	}

	return s.transition(ctx, job, model.JobStatusCancelled)
}

func (s *printJobService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if _, err := s.findOwned(ctx, caller.UserID, id); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.mapError(err, id, "failed to delete print job")
	}

	if err := s.store.Delete(ctx, s.cfg.UploadBucket, deleted.StoragePath()); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.cfg.Log.Warn("failed to delete print job file", "job_id", id, "path", deleted.StoragePath(), "error", err)
	}

	realtime.PublishAll(ctx, s.publisher, s.cfg.Log, model.NewJobEvent(model.ChangeDelete, deleted))

	s.cfg.Log.Info("print job deleted", "job_id", id, "shop_owner_id", deleted.ShopOwnerID)
	return nil
}

func (s *printJobService) FileURL(ctx context.Context, caller auth.Identity, id string) (string, error) {
	job, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return "", err
	}
	return s.signedURL(job)
}

func (s *printJobService) CustomerSummary(ctx context.Context, customerID string) (*model.CustomerJobSummary, error) {
	summary, err := s.repo.SummarizeCustomer(ctx, customerID)
	if err != nil {
		s.cfg.Log.Error("failed to summarize customer jobs", "customer_id", customerID, "error", err)
		return nil, apperrors.Internal("failed to load job summary", err)
	}
	return summary, nil
}
