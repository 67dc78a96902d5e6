package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "printhub/internal/bookings/errors"
	"printhub/internal/bookings/repository"
	"printhub/internal/realtime"
	slotserrors "printhub/internal/timeslots/errors"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
	"printhub/pkg/sanitizer"
	"printhub/pkg/validation"
)

const (
	DefaultPaperSize = "A4"

	lockTTL = 10 * time.Second
)

// SlotReserver adjusts a time slot's booked count.
type SlotReserver interface {
	Reserve(ctx context.Context, id string) (*model.TimeSlot, error)
	Release(ctx context.Context, id string) (*model.TimeSlot, error)
}

type JobCreator interface {
	Create(ctx context.Context, job *model.PrintJob) error
}

type Pricer interface {
	JobCost(ctx context.Context, shopOwnerID string, job model.JobSpec) (float64, error)
}

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.BookingResult, error)
	GetByID(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error)
	ListByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByShop(ctx context.Context, shopOwnerID, date string, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error)
	Complete(ctx context.Context, shopOwnerID, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	locks     repository.BookingLockRepository
	slots     SlotReserver
	jobs      JobCreator
	pricer    Pricer
	validator *validation.Validator
	publisher realtime.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	locks repository.BookingLockRepository,
	slots SlotReserver,
	jobs JobCreator,
	pricer Pricer,
	v *validation.Validator,
	publisher realtime.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		locks:     locks,
		slots:     slots,
		jobs:      jobs,
		pricer:    pricer,
		validator: v,
		publisher: publisher,
		cfg:       cfg,
		now:       mongotx.Now,
	}
}

// printSettings fills the booking form defaults: A4, one copy, black and
// white, standard paper.
func printSettings(in *model.PrintSettings) *model.PrintSettings {
	out := model.PrintSettings{
		PaperSize:    DefaultPaperSize,
		ColorType:    model.ColorTypeBlackWhite,
		PaperQuality: model.PaperQualityStandard,
		Copies:       1,
	}
	if in != nil {
		if in.PaperSize != "" {
			out.PaperSize = sanitizer.Text(in.PaperSize)
		}
		if in.ColorType != "" {
			out.ColorType = in.ColorType
		}
		if in.PaperQuality != "" {
			out.PaperQuality = in.PaperQuality
		}
		if in.Copies > 0 {
			out.Copies = in.Copies
		}
	}
	return &out
}

// JobNotes is the note stamped on every print job created by a booking.
func JobNotes(bookingID string, settings *model.PrintSettings) string {
	color := "B&W"
	if settings.IsColor() {
		color = "Color"
	}
	return fmt.Sprintf("Booking ID: %s - %s, %s", bookingID, settings.PaperSize, color)
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.CustomerName = sanitizer.Text(req.CustomerName)
	req.CustomerEmail = sanitizer.Email(req.CustomerEmail)
	req.Notes = sanitizer.Text(req.Notes)
	for i := range req.Files {
		req.Files[i].FileName = sanitizer.FileName(req.Files[i].FileName)
		if req.Files[i].Pages < 1 {
			req.Files[i].Pages = 1
		}
	}
}

// draftJobs builds and prices one pending job per file. Booking id and notes
// are filled in once the booking exists.
func (s *bookingService) draftJobs(ctx context.Context, req *model.BookingRequest, settings *model.PrintSettings) ([]*model.PrintJob, error) {
	jobs := make([]*model.PrintJob, 0, len(req.Files))
	for _, f := range req.Files {
		if !strings.HasPrefix(f.StoragePath, req.CustomerID+"/") {
			return nil, apperrors.Forbidden("The file does not belong to you")
		}

		job := &model.PrintJob{
			ShopOwnerID:   req.ShopOwnerID,
			CustomerID:    req.CustomerID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			FileName:      f.FileName,
			FileURL:       f.StoragePath,
			FileSize:      f.FileSize,
			Pages:         f.Pages,
			Copies:        settings.Copies,
			Status:        model.JobStatusPending,
			PrintSettings: settings,
		}
		if settings.IsColor() {
			job.ColorPages = f.Pages
		}

		spec := model.JobSpec{
			Pages:        job.Pages,
			Copies:       job.Copies,
			ColorType:    settings.ColorType,
			PaperQuality: settings.PaperQuality,
		}
		cost, err := s.pricer.JobCost(ctx, req.ShopOwnerID, spec)
		if err != nil {
			return nil, err
		}
		job.TotalCost = cost
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func slotError(err error, slotID string) error {
	switch {
	case errors.Is(err, slotserrors.ErrSlotFull):
		return apperrors.Conflict("time slot is fully booked")
	case errors.Is(err, slotserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Time slot", slotID)
	case errors.Is(err, slotserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("invalid time slot ID format: %s", slotID))
	}
	return err
}

// Create books a seat in the slot and files one print job per uploaded
// document. All writes commit together or not at all.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.BookingResult, error) {
	s.sanitize(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	settings := printSettings(req.PrintSettings)
	drafts, err := s.draftJobs(ctx, req, settings)
	if err != nil {
		return nil, err
	}

	lockID := fmt.Sprintf("booking_lock_%s_%s", req.CustomerID, req.TimeSlotID)
	if err := s.locks.Acquire(ctx, &model.BookingLock{ID: lockID, ExpiresAt: s.now().Add(lockTTL)}); err != nil {
		if errors.Is(err, bookingserrors.ErrLocked) {
			return nil, apperrors.Conflict("This booking is already being submitted. Please wait.")
		}
		return nil, apperrors.Internal("failed to acquire booking lock", err)
	}
	defer func() {
		if err := s.locks.Release(ctx, lockID); err != nil {
			s.cfg.Log.Warn("failed to release booking lock", "lock_id", lockID, "error", err)
		}
	}()

	var result *model.BookingResult
	err = s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		slot, err := s.slots.Reserve(sc, req.TimeSlotID)
		if err != nil {
			return slotError(err, req.TimeSlotID)
		}
		if slot.ShopOwnerID != req.ShopOwnerID {
			return apperrors.InvalidInput("time slot belongs to another shop")
		}

		booking := &model.Booking{
			ShopOwnerID:   req.ShopOwnerID,
			CustomerID:    req.CustomerID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			TimeSlotID:    slot.ID,
			SlotDate:      slot.SlotDate,
			SlotTime:      slot.SlotTime,
			Status:        model.BookingStatusConfirmed,
			Notes:         req.Notes,
		}
		if err := s.repo.Create(sc, booking); err != nil {
			return err
		}

		now := s.now()
		jobs := make([]*model.PrintJob, 0, len(drafts))
		for _, draft := range drafts {
			job := *draft
			job.BookingID = booking.ID
			job.Notes = JobNotes(booking.ID, settings)
			job.SubmittedAt = now
			job.CreatedAt = now
			job.UpdatedAt = now
			if err := s.jobs.Create(sc, &job); err != nil {
				return err
			}
			jobs = append(jobs, &job)
		}

		if len(jobs) > 0 {
			if err := s.repo.LinkPrintJob(sc, booking.ID, jobs[0].ID); err != nil {
				return err
			}
			booking.PrintJobID = jobs[0].ID
		}

		result = &model.BookingResult{Booking: booking, PrintJobs: jobs}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("failed to create booking",
			"shop_owner_id", req.ShopOwnerID,
			"customer_id", req.CustomerID,
			"time_slot_id", req.TimeSlotID,
			"error", err,
		)
		return nil, apperrors.Internal("failed to create booking", err)
	}

	events := make([]model.ChangeEvent, 0, len(result.PrintJobs))
	for _, job := range result.PrintJobs {
		events = append(events, model.NewJobEvent(model.ChangeInsert, job))
	}
	realtime.PublishAll(ctx, s.publisher, s.cfg.Log, events...)

	s.cfg.Log.Info("booking created",
		"booking_id", result.Booking.ID,
		"shop_owner_id", req.ShopOwnerID,
		"slot_date", result.Booking.SlotDate,
		"slot_time", result.Booking.SlotTime,
		"print_jobs", len(result.PrintJobs),
	)
	return result, nil
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) mapError(err error, id, msg string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("invalid booking ID format: %s", id))
	case errors.Is(err, bookingserrors.ErrStatusConflict):
		return apperrors.Conflict("Booking was updated by another request")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error(msg, "booking_id", id, "error", err)
	return apperrors.Internal(msg, err)
}

// GetByID returns a booking to its customer or its shop. Anyone else gets
// not found.
func (s *bookingService) GetByID(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != caller.UserID && booking.ShopOwnerID != caller.UserID {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return booking, nil
}

func (s *bookingService) list(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	var (
		bookings          []*model.Booking
		count             int64
		errFind, errCount error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Find(ctx, filter, limit, offset)
	}()

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
	}()

	wg.Wait()
	if err := errors.Join(errFind, errCount); err != nil {
		s.cfg.Log.Error("failed to list bookings",
			"shop_owner_id", filter.ShopOwnerID,
			"customer_id", filter.CustomerID,
			"error", err,
		)
		return nil, 0, apperrors.Internal("failed to retrieve bookings", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, count, nil
}

func (s *bookingService) ListByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx, model.BookingFilter{CustomerID: customerID}, config.NormalizePaginationLimit(limit), offset)
}

func (s *bookingService) ListByShop(ctx context.Context, shopOwnerID, date string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
		}
	}
	filter := model.BookingFilter{ShopOwnerID: shopOwnerID, SlotDate: date}
	return s.list(ctx, filter, config.NormalizePaginationLimit(limit), offset)
}

// Cancel is open to both the customer and the shop. The slot seat is given
// back in the same transaction.
func (s *bookingService) Cancel(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusConfirmed {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot cancel a %s booking", booking.Status))
	}

	var cancelled *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		updated, err := s.repo.TransitionStatus(sc, id, model.BookingStatusConfirmed, model.BookingStatusCancelled)
		if err != nil {
			return err
		}
		if _, err := s.slots.Release(sc, updated.TimeSlotID); err != nil && !errors.Is(err, slotserrors.ErrNotFound) {
			return err
		}
		cancelled = updated
		return nil
	})
	if err != nil {
		return nil, s.mapError(err, id, "failed to cancel booking")
	}

	s.cfg.Log.Info("booking cancelled", "booking_id", id, "by", caller.UserID)
	return cancelled, nil
}

func (s *bookingService) Complete(ctx context.Context, shopOwnerID, id string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.ShopOwnerID != shopOwnerID {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	if booking.Status != model.BookingStatusConfirmed {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot complete a %s booking", booking.Status))
	}

	completed, err := s.repo.TransitionStatus(ctx, id, model.BookingStatusConfirmed, model.BookingStatusCompleted)
	if err != nil {
		return nil, s.mapError(err, id, "failed to complete booking")
	}

	s.cfg.Log.Info("booking completed", "booking_id", id, "shop_owner_id", shopOwnerID)
	return completed, nil
}
