package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	hourserrors "printhub/internal/operatinghours/errors"
	"printhub/internal/operatinghours/repository"
	"printhub/pkg/config"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
	"printhub/pkg/validation"
)

const (
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "18:00"
)

// ListingUpdater mirrors a shop's week into its public directory listing.
type ListingUpdater interface {
	SetBusinessHours(ctx context.Context, shopOwnerID string, hours map[string]model.DayHours) error
}

type OperatingHoursService interface {
	Get(ctx context.Context, shopOwnerID string) ([]model.OperatingHours, error)
	ForDay(ctx context.Context, shopOwnerID string, day model.DayOfWeek) (*model.OperatingHours, error)
	UpsertWeek(ctx context.Context, shopOwnerID string, hours []model.OperatingHours) ([]model.OperatingHours, error)
}

type operatingHoursService struct {
	repo      repository.OperatingHoursRepository
	listings  ListingUpdater
	validator *validation.Validator
	cfg       *config.Config
}

func NewOperatingHoursService(
	repo repository.OperatingHoursRepository,
	listings ListingUpdater,
	v *validation.Validator,
	cfg *config.Config,
) OperatingHoursService {
	return &operatingHoursService{
		repo:      repo,
		listings:  listings,
		validator: v,
		cfg:       cfg,
	}
}

// DefaultDay is the schedule used for days a shop never configured:
// 09:00-18:00, closed on Sunday.
func DefaultDay(shopOwnerID string, day model.DayOfWeek) model.OperatingHours {
	return model.OperatingHours{
		ShopOwnerID: shopOwnerID,
		DayOfWeek:   day,
		OpenTime:    DefaultOpenTime,
		CloseTime:   DefaultCloseTime,
		IsOpen:      day != model.Sunday,
	}
}

// FillWeek returns all seven days in Monday-first order, using stored rows
// where present and defaults elsewhere.
func FillWeek(shopOwnerID string, stored []model.OperatingHours) []model.OperatingHours {
	byDay := make(map[model.DayOfWeek]model.OperatingHours, len(stored))
	for _, h := range stored {
		byDay[h.DayOfWeek] = h
	}

	week := make([]model.OperatingHours, 0, len(model.Week))
	for _, day := range model.Week {
		if h, ok := byDay[day]; ok {
			week = append(week, h)
			continue
		}
		week = append(week, DefaultDay(shopOwnerID, day))
	}
	return week
}

// BusinessHours renders the week as the listing blob keyed by day name.
func BusinessHours(week []model.OperatingHours) map[string]model.DayHours {
	out := make(map[string]model.DayHours, len(week))
	for _, h := range week {
		out[string(h.DayOfWeek)] = model.DayHours{Open: h.OpenTime, Close: h.CloseTime, IsOpen: h.IsOpen}
	}
	return out
}

func (s *operatingHoursService) Get(ctx context.Context, shopOwnerID string) ([]model.OperatingHours, error) {
	stored, err := s.repo.FindByShop(ctx, shopOwnerID)
	if err != nil {
		s.cfg.Log.Error("failed to load operating hours", "shop_owner_id", shopOwnerID, "error", err)
		return nil, apperrors.Internal("failed to load operating hours", err)
	}
	return FillWeek(shopOwnerID, stored), nil
}

func (s *operatingHoursService) ForDay(ctx context.Context, shopOwnerID string, day model.DayOfWeek) (*model.OperatingHours, error) {
	hours, err := s.repo.FindDay(ctx, shopOwnerID, day)
	if err != nil {
		if errors.Is(err, hourserrors.ErrNotFound) {
			def := DefaultDay(shopOwnerID, day)
			return &def, nil
		}
		s.cfg.Log.Error("failed to load operating hours", "shop_owner_id", shopOwnerID, "day", day, "error", err)
		return nil, apperrors.Internal("failed to load operating hours", err)
	}
	return hours, nil
}

func (s *operatingHoursService) validate(shopOwnerID string, hours []model.OperatingHours) error {
	if len(hours) == 0 {
		return apperrors.InvalidInput("At least one day is required")
	}

	seen := make(map[model.DayOfWeek]bool, len(hours))
	for i := range hours {
		h := &hours[i]
		h.ShopOwnerID = shopOwnerID
		h.DayOfWeek = model.DayOfWeek(strings.ToLower(strings.TrimSpace(string(h.DayOfWeek))))

		if err := s.validator.Struct(h); err != nil {
			return validation.ToAppError(err)
		}
		if seen[h.DayOfWeek] {
			return apperrors.InvalidInput(fmt.Sprintf("%s is listed more than once", h.DayOfWeek))
		}
		seen[h.DayOfWeek] = true

		open, _ := model.ClockMinutes(h.OpenTime)
		closing, _ := model.ClockMinutes(h.CloseTime)
		if h.IsOpen && open >= closing {
			return apperrors.InvalidInput(fmt.Sprintf("%s: opening time must be before closing time", h.DayOfWeek))
		}
	}
	return nil
}

// UpsertWeek stores the given days and refreshes the listing's
// business_hours in the same transaction.
func (s *operatingHoursService) UpsertWeek(ctx context.Context, shopOwnerID string, hours []model.OperatingHours) ([]model.OperatingHours, error) {
	if err := s.validate(shopOwnerID, hours); err != nil {
		return nil, err
	}

	var week []model.OperatingHours
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpsertWeek(sessCtx, shopOwnerID, hours); err != nil {
			return err
		}
		stored, err := s.repo.FindByShop(sessCtx, shopOwnerID)
		if err != nil {
			return err
		}
		week = FillWeek(shopOwnerID, stored)
		if s.listings == nil {
			return nil
		}
		return s.listings.SetBusinessHours(sessCtx, shopOwnerID, BusinessHours(week))
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("failed to save operating hours", "shop_owner_id", shopOwnerID, "error", err)
		return nil, apperrors.Internal("failed to save operating hours", err)
	}

	s.cfg.Log.Info("operating hours updated", "shop_owner_id", shopOwnerID, "days", len(hours))
	return week, nil
}
