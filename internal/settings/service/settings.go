package service

import (
	"context"
	"errors"
	"fmt"

	settingserrors "printhub/internal/settings/errors"
	"printhub/internal/settings/repository"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
	"printhub/pkg/sanitizer"
	"printhub/pkg/validation"
)

const DefaultQueueLimit = 10

type SettingsService interface {
	QueueSettings(ctx context.Context, shopOwnerID string) (*model.PrintQueueSettings, error)
	UpsertQueueSettings(ctx context.Context, s *model.PrintQueueSettings) error
	SlotSettings(ctx context.Context, shopOwnerID string) (*model.SlotSettings, error)
	UpsertSlotSettings(ctx context.Context, s *model.SlotSettings) error
	NotificationSettings(ctx context.Context, shopOwnerID string) (*model.NotificationSettings, error)
	UpsertNotificationSettings(ctx context.Context, s *model.NotificationSettings) error
	ListEquipment(ctx context.Context, shopOwnerID string) ([]*model.Equipment, error)
	CreateEquipment(ctx context.Context, eq *model.Equipment) error
	UpdateEquipment(ctx context.Context, eq *model.Equipment) error
	DeleteEquipment(ctx context.Context, shopOwnerID, id string) error
}

type settingsService struct {
	repo      repository.SettingsRepository
	equipment repository.EquipmentRepository
	validator *validation.Validator
	cfg       *config.Config
}

func NewSettingsService(
	repo repository.SettingsRepository,
	equipment repository.EquipmentRepository,
	v *validation.Validator,
	cfg *config.Config,
) SettingsService {
	return &settingsService{
		repo:      repo,
		equipment: equipment,
		validator: v,
		cfg:       cfg,
	}
}

func DefaultQueueSettings(shopOwnerID string) *model.PrintQueueSettings {
	return &model.PrintQueueSettings{
		ShopOwnerID:         shopOwnerID,
		AutoAccept:          false,
		NotificationEnabled: true,
		QueueLimit:          DefaultQueueLimit,
	}
}

func DefaultNotificationSettings(shopOwnerID string) *model.NotificationSettings {
	return &model.NotificationSettings{
		ShopOwnerID:                       shopOwnerID,
		EmailNotifications:                true,
		SMSNotifications:                  false,
		NewOrderNotifications:             true,
		OrderCompletionNotifications:      true,
		EquipmentMaintenanceNotifications: true,
		LowSuppliesNotifications:          true,
		DailySummaryNotifications:         false,
	}
}

// DefaultSlotSettings applies the configured defaults, clamped to the
// accepted ranges.
func DefaultSlotSettings(cfg *config.Config, shopOwnerID string) *model.SlotSettings {
	return ClampSlotSettings(&model.SlotSettings{
		ShopOwnerID:     shopOwnerID,
		SlotDurationMin: cfg.DefaultSlotDurationMin,
		MaxJobsPerSlot:  cfg.DefaultMaxJobsPerSlot,
		AdvanceDays:     cfg.DefaultAdvanceDays,
	})
}

// ClampSlotSettings fills unset values (duration 10, 5 jobs, 30 days) and
// keeps the rest inside duration 5-120, jobs 1-50, days 1-365.
func ClampSlotSettings(s *model.SlotSettings) *model.SlotSettings {
	if s.SlotDurationMin <= 0 {
		s.SlotDurationMin = config.DefaultSlotDurationMin
	}
	if s.MaxJobsPerSlot <= 0 {
		s.MaxJobsPerSlot = config.DefaultMaxJobsPerSlot
	}
	if s.AdvanceDays <= 0 {
		s.AdvanceDays = config.DefaultAdvanceDays
	}
	s.SlotDurationMin = sanitizer.Clamp(s.SlotDurationMin, 5, 120)
	s.MaxJobsPerSlot = sanitizer.Clamp(s.MaxJobsPerSlot, 1, 50)
	s.AdvanceDays = sanitizer.Clamp(s.AdvanceDays, 1, 365)
	return s
}

func (s *settingsService) load(what, shopOwnerID string, find func() error) (bool, error) {
	err := find()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, settingserrors.ErrNotFound) {
		return false, nil
	}
	s.cfg.Log.Error("failed to load "+what, "shop_owner_id", shopOwnerID, "error", err)
	return false, apperrors.Internal("failed to load "+what, err)
}

func (s *settingsService) save(what, shopOwnerID string, err error) error {
	if err == nil {
		s.cfg.Log.Info(what+" updated", "shop_owner_id", shopOwnerID)
		return nil
	}
	s.cfg.Log.Error("failed to save "+what, "shop_owner_id", shopOwnerID, "error", err)
	return apperrors.Internal("failed to save "+what, err)
}

func (s *settingsService) QueueSettings(ctx context.Context, shopOwnerID string) (*model.PrintQueueSettings, error) {
	var found *model.PrintQueueSettings
	ok, err := s.load("print queue settings", shopOwnerID, func() (err error) {
		found, err = s.repo.FindQueueSettings(ctx, shopOwnerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultQueueSettings(shopOwnerID), nil
	}
	return found, nil
}

func (s *settingsService) UpsertQueueSettings(ctx context.Context, settings *model.PrintQueueSettings) error {
	if settings.QueueLimit == 0 {
		settings.QueueLimit = DefaultQueueLimit
	}
	if err := s.validator.Struct(settings); err != nil {
		return validation.ToAppError(err)
	}
	return s.save("print queue settings", settings.ShopOwnerID, s.repo.UpsertQueueSettings(ctx, settings))
}

func (s *settingsService) SlotSettings(ctx context.Context, shopOwnerID string) (*model.SlotSettings, error) {
	var found *model.SlotSettings
	ok, err := s.load("slot settings", shopOwnerID, func() (err error) {
		found, err = s.repo.FindSlotSettings(ctx, shopOwnerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultSlotSettings(s.cfg, shopOwnerID), nil
	}
	return ClampSlotSettings(found), nil
}

func (s *settingsService) UpsertSlotSettings(ctx context.Context, settings *model.SlotSettings) error {
	ClampSlotSettings(settings)
	if err := s.validator.Struct(settings); err != nil {
		return validation.ToAppError(err)
	}
	return s.save("slot settings", settings.ShopOwnerID, s.repo.UpsertSlotSettings(ctx, settings))
}

func (s *settingsService) NotificationSettings(ctx context.Context, shopOwnerID string) (*model.NotificationSettings, error) {
	var found *model.NotificationSettings
	ok, err := s.load("notification settings", shopOwnerID, func() (err error) {
		found, err = s.repo.FindNotificationSettings(ctx, shopOwnerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultNotificationSettings(shopOwnerID), nil
	}
	return found, nil
}

func (s *settingsService) UpsertNotificationSettings(ctx context.Context, settings *model.NotificationSettings) error {
	if err := s.validator.Struct(settings); err != nil {
		return validation.ToAppError(err)
	}
	return s.save("notification settings", settings.ShopOwnerID, s.repo.UpsertNotificationSettings(ctx, settings))
}

func (s *settingsService) ListEquipment(ctx context.Context, shopOwnerID string) ([]*model.Equipment, error) {
	items, err := s.equipment.FindByShop(ctx, shopOwnerID)
	if err != nil {
		s.cfg.Log.Error("failed to list equipment", "shop_owner_id", shopOwnerID, "error", err)
		return nil, apperrors.Internal("failed to list equipment", err)
	}
	if items == nil {
		items = []*model.Equipment{}
	}
	return items, nil
}

func (s *settingsService) prepareEquipment(eq *model.Equipment) error {
	eq.EquipmentName = sanitizer.Text(eq.EquipmentName)
	eq.EquipmentType = sanitizer.Text(eq.EquipmentType)
	eq.Brand = sanitizer.Text(eq.Brand)
	eq.Model = sanitizer.Text(eq.Model)
	eq.Capabilities = sanitizer.Slice(eq.Capabilities, sanitizer.Label)
	if eq.Status == "" {
		eq.Status = model.EquipmentActive
	}
	eq.UpdatedAt = mongotx.Now()

	if err := s.validator.Struct(eq); err != nil {
		return validation.ToAppError(err)
	}
	return nil
}

func (s *settingsService) CreateEquipment(ctx context.Context, eq *model.Equipment) error {
	eq.ID = ""
	if err := s.prepareEquipment(eq); err != nil {
		return err
	}
	eq.CreatedAt = eq.UpdatedAt

	if err := s.equipment.Create(ctx, eq); err != nil {
		s.cfg.Log.Error("failed to create equipment", "shop_owner_id", eq.ShopOwnerID, "error", err)
		return apperrors.Internal("failed to create equipment", err)
	}
	s.cfg.Log.Info("equipment created", "equipment_id", eq.ID, "shop_owner_id", eq.ShopOwnerID)
	return nil
}

func (s *settingsService) UpdateEquipment(ctx context.Context, eq *model.Equipment) error {
	if err := s.prepareEquipment(eq); err != nil {
		return err
	}
	if err := s.equipment.Update(ctx, eq); err != nil {
		return s.equipmentError(err, eq.ID, "failed to update equipment")
	}
	s.cfg.Log.Info("equipment updated", "equipment_id", eq.ID, "shop_owner_id", eq.ShopOwnerID)
	return nil
}

func (s *settingsService) DeleteEquipment(ctx context.Context, shopOwnerID, id string) error {
	if err := s.equipment.Delete(ctx, shopOwnerID, id); err != nil {
		return s.equipmentError(err, id, "failed to delete equipment")
	}
	s.cfg.Log.Info("equipment deleted", "equipment_id", id, "shop_owner_id", shopOwnerID)
	return nil
}

func (s *settingsService) equipmentError(err error, id, msg string) error {
	switch {
	case errors.Is(err, settingserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("invalid equipment ID format: %s", id))
	case errors.Is(err, settingserrors.ErrEquipmentNotFound):
		return apperrors.NotFoundWithID("Equipment", id)
	}
	s.cfg.Log.Error(msg, "equipment_id", id, "error", err)
	return apperrors.Internal(msg, err)
}
