package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	slotserrors "printhub/internal/timeslots/errors"
	"printhub/internal/timeslots/generator"
	"printhub/internal/timeslots/repository"
	"printhub/pkg/config"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
)

// DefaultRangeDays is used when a range request leaves days unset.
const DefaultRangeDays = 7

type HoursProvider interface {
	ForDay(ctx context.Context, shopOwnerID string, day model.DayOfWeek) (*model.OperatingHours, error)
}

type SlotSettingsProvider interface {
	SlotSettings(ctx context.Context, shopOwnerID string) (*model.SlotSettings, error)
}

type TimeSlotService interface {
	Generate(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error)
	GenerateRange(ctx context.Context, shopOwnerID, from string, days int) (*model.GenerateResult, error)
	ListAvailable(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error)
	ListByDate(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error)
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
}

type timeSlotService struct {
	repo     repository.TimeSlotRepository
	hours    HoursProvider
	settings SlotSettingsProvider
	cfg      *config.Config
	now      func() time.Time
}

func NewTimeSlotService(
	repo repository.TimeSlotRepository,
	hours HoursProvider,
	settings SlotSettingsProvider,
	cfg *config.Config,
) TimeSlotService {
	return &timeSlotService{
		repo:     repo,
		hours:    hours,
		settings: settings,
		cfg:      cfg,
		now:      time.Now,
	}
}

func parseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}
	return d, nil
}

// checkWindow rejects dates before today or past the booking horizon.
// Dates are calendar days in UTC.
func (s *timeSlotService) checkWindow(d time.Time, advanceDays int) error {
	today := s.now().UTC().Truncate(24 * time.Hour)
	if d.Before(today) {
		return apperrors.InvalidInput("cannot generate slots for a past date")
	}
	if d.After(today.AddDate(0, 0, advanceDays)) {
		return apperrors.InvalidInput(fmt.Sprintf("date is more than %d days ahead", advanceDays))
	}
	return nil
}

func (s *timeSlotService) Generate(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.SlotSettings(ctx, shopOwnerID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, shopOwnerID, d, settings)
}

func (s *timeSlotService) generate(ctx context.Context, shopOwnerID string, d time.Time, settings *model.SlotSettings) ([]*model.TimeSlot, error) {
	if err := s.checkWindow(d, settings.AdvanceDays); err != nil {
		return nil, err
	}

	date := d.Format(model.DateLayout)
	day := model.DayOf(d)
	hours, err := s.hours.ForDay(ctx, shopOwnerID, day)
	if err != nil {
		return nil, err
	}

	slots, err := generator.GenerateSlots(date, *hours, *settings)
	if err != nil {
		if errors.Is(err, generator.ErrClosed) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("shop is closed on %s", day))
		}
		return nil, apperrors.InvalidInput(err.Error())
	}
	for _, slot := range slots {
		slot.ShopOwnerID = shopOwnerID
	}

	err = s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		return s.repo.ReplaceForDate(sc, shopOwnerID, date, slots)
	})
	if err != nil {
		if errors.Is(err, slotserrors.ErrDateBooked) {
			return nil, apperrors.Conflict(fmt.Sprintf("slots for %s already have bookings", date))
		}
		s.cfg.Log.Error("failed to generate time slots", "shop_owner_id", shopOwnerID, "date", date, "error", err)
		return nil, apperrors.Internal("failed to generate time slots", err)
	}

	s.cfg.Log.Info("time slots generated", "shop_owner_id", shopOwnerID, "date", date, "count", len(slots))
	return slots, nil
}

// GenerateRange generates each day from `from` onward. Closed days are
// skipped; other per-day failures are collected and do not stop the run.
func (s *timeSlotService) GenerateRange(ctx context.Context, shopOwnerID, from string, days int) (*model.GenerateResult, error) {
	start, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultRangeDays
	}
	settings, err := s.settings.SlotSettings(ctx, shopOwnerID)
	if err != nil {
		return nil, err
	}

	result := &model.GenerateResult{Dates: []string{}, Failures: map[string]string{}}
	for i := range days {
		d := start.AddDate(0, 0, i)
		date := d.Format(model.DateLayout)

		hours, err := s.hours.ForDay(ctx, shopOwnerID, model.DayOf(d))
		if err == nil && !hours.IsOpen {
			result.Skipped = append(result.Skipped, date)
			continue
		}

		slots, err := s.generate(ctx, shopOwnerID, d, settings)
		if err != nil {
			result.Failures[date] = apperrors.AsAppError(err).Message
			continue
		}
		result.Dates = append(result.Dates, date)
		result.Slots += len(slots)
	}

	result.Summary = fmt.Sprintf("%d succeeded, %d failed", len(result.Dates), len(result.Failures))
	if len(result.Failures) == 0 {
		result.Failures = nil
	}
	return result, nil
}

func (s *timeSlotService) ListAvailable(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	slots, err := s.repo.FindAvailable(ctx, shopOwnerID, date)
	if err != nil {
		s.cfg.Log.Error("failed to list available time slots", "shop_owner_id", shopOwnerID, "date", date, "error", err)
		return nil, apperrors.Internal("failed to list time slots", err)
	}
	if slots == nil {
		slots = []*model.TimeSlot{}
	}
	return slots, nil
}

func (s *timeSlotService) ListByDate(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	slots, err := s.repo.FindByDate(ctx, shopOwnerID, date)
	if err != nil {
		s.cfg.Log.Error("failed to list time slots", "shop_owner_id", shopOwnerID, "date", date, "error", err)
		return nil, apperrors.Internal("failed to list time slots", err)
	}
	if slots == nil {
		slots = []*model.TimeSlot{}
	}
	return slots, nil
}

func (s *timeSlotService) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, slotserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid time slot ID format: %s", id))
		case errors.Is(err, slotserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Time slot", id)
		}
		s.cfg.Log.Error("failed to get time slot", "slot_id", id, "error", err)
		return nil, apperrors.Internal("failed to get time slot", err)
	}
	return slot, nil
}
