package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	settingserrors "printhub/internal/settings/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	QueueSettingsCollection        = "print_queue_settings"
	SlotSettingsCollection         = "slot_settings"
	NotificationSettingsCollection = "notification_settings"
	EquipmentCollection            = "equipment"
)

type SettingsRepository interface {
	FindQueueSettings(ctx context.Context, shopOwnerID string) (*model.PrintQueueSettings, error)
	UpsertQueueSettings(ctx context.Context, s *model.PrintQueueSettings) error
	FindSlotSettings(ctx context.Context, shopOwnerID string) (*model.SlotSettings, error)
	UpsertSlotSettings(ctx context.Context, s *model.SlotSettings) error
	FindNotificationSettings(ctx context.Context, shopOwnerID string) (*model.NotificationSettings, error)
	UpsertNotificationSettings(ctx context.Context, s *model.NotificationSettings) error
}

type EquipmentRepository interface {
	FindByShop(ctx context.Context, shopOwnerID string) ([]*model.Equipment, error)
	Create(ctx context.Context, eq *model.Equipment) error
	Update(ctx context.Context, eq *model.Equipment) error
	Delete(ctx context.Context, shopOwnerID, id string) error
}

type mongoSettingsRepository struct {
	cfg           *config.Config
	queue         *mongo.Collection
	slots         *mongo.Collection
	notifications *mongo.Collection
}

func NewMongoSettingsRepository(cfg *config.Config) SettingsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSettingsRepository{
		cfg:           cfg,
		queue:         db.Collection(QueueSettingsCollection),
		slots:         db.Collection(SlotSettingsCollection),
		notifications: db.Collection(NotificationSettingsCollection),
	}
}

// findByShop decodes the shop's single settings document into out.
func (r *mongoSettingsRepository) findByShop(ctx context.Context, coll *mongo.Collection, shopOwnerID string, out any) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if err := coll.FindOne(ctx, bson.M{"shop_owner_id": shopOwnerID}).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return settingserrors.ErrNotFound
		}
		return fmt.Errorf("failed to find %s: %w", coll.Name(), err)
	}
	return nil
}

// upsertByShop writes set onto the shop's settings document and decodes the
// stored result into out.
func (r *mongoSettingsRepository) upsertByShop(ctx context.Context, coll *mongo.Collection, shopOwnerID string, set bson.M, out any) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set["updated_at"] = mongotx.Now()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := coll.FindOneAndUpdate(ctx, bson.M{"shop_owner_id": shopOwnerID}, bson.M{"$set": set}, opts).Decode(out); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", coll.Name(), err)
	}
	return nil
}

func (r *mongoSettingsRepository) FindQueueSettings(ctx context.Context, shopOwnerID string) (*model.PrintQueueSettings, error) {
	var s model.PrintQueueSettings
	if err := r.findByShop(ctx, r.queue, shopOwnerID, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoSettingsRepository) UpsertQueueSettings(ctx context.Context, s *model.PrintQueueSettings) error {
	return r.upsertByShop(ctx, r.queue, s.ShopOwnerID, bson.M{
		"auto_accept":          s.AutoAccept,
		"notification_enabled": s.NotificationEnabled,
		"queue_limit":          s.QueueLimit,
	}, s)
}

func (r *mongoSettingsRepository) FindSlotSettings(ctx context.Context, shopOwnerID string) (*model.SlotSettings, error) {
	var s model.SlotSettings
	if err := r.findByShop(ctx, r.slots, shopOwnerID, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoSettingsRepository) UpsertSlotSettings(ctx context.Context, s *model.SlotSettings) error {
	return r.upsertByShop(ctx, r.slots, s.ShopOwnerID, bson.M{
		"slot_duration":     s.SlotDurationMin,
		"max_jobs_per_slot": s.MaxJobsPerSlot,
		"advance_days":      s.AdvanceDays,
	}, s)
}

func (r *mongoSettingsRepository) FindNotificationSettings(ctx context.Context, shopOwnerID string) (*model.NotificationSettings, error) {
	var s model.NotificationSettings
	if err := r.findByShop(ctx, r.notifications, shopOwnerID, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoSettingsRepository) UpsertNotificationSettings(ctx context.Context, s *model.NotificationSettings) error {
	return r.upsertByShop(ctx, r.notifications, s.ShopOwnerID, bson.M{
		"email_notifications":                 s.EmailNotifications,
		"sms_notifications":                   s.SMSNotifications,
		"new_order_notifications":             s.NewOrderNotifications,
		"order_completion_notifications":      s.OrderCompletionNotifications,
		"equipment_maintenance_notifications": s.EquipmentMaintenanceNotifications,
		"low_supplies_notifications":          s.LowSuppliesNotifications,
		"daily_summary_notifications":         s.DailySummaryNotifications,
	}, s)
}
