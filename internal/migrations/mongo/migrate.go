package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"printhub/internal/migrations/mongo/validators"
	"printhub/pkg/logger"
)

func unique(keys ...string) mongo.IndexModel {
	return mongo.IndexModel{Keys: ascending(keys...), Options: options.Index().SetUnique(true)}
}

func ascending(keys ...string) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return d
}

func expiresAt() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
}

var (
	PrintJobsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "shop_owner_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "submitted_at", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "customer_id", Value: 1},
			{Key: "submitted_at", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "shop_owner_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "created_at", Value: 1},
		}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: ascending("shop_owner_id", "slot_date", "slot_time")},
		{Keys: bson.D{
			{Key: "customer_id", Value: 1},
			{Key: "slot_date", Value: -1},
		}},
		{Keys: ascending("time_slot_id")},
	}

	BookingLocksIndexes = []mongo.IndexModel{expiresAt()}

	TimeSlotsIndexes = []mongo.IndexModel{
		unique("shop_owner_id", "slot_date", "slot_time"),
	}

	PublicShopIndexes = []mongo.IndexModel{
		unique("shop_owner_id"),
		{Keys: bson.D{
			{Key: "is_active", Value: 1},
			{Key: "rating", Value: -1},
			{Key: "shop_name", Value: 1},
		}},
	}

	EquipmentIndexes = []mongo.IndexModel{
		{Keys: ascending("shop_owner_id", "created_at")},
	}

	UsersIndexes = []mongo.IndexModel{
		unique("email"),
		{Keys: ascending("confirmation_token"), Options: options.Index().SetSparse(true)},
	}

	SessionsIndexes = []mongo.IndexModel{
		{Keys: ascending("user_id")},
		expiresAt(),
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections maps every printhub collection to its validator and indexes.
var Collections = map[string]collectionDef{
	"print_jobs":            {Indexes: PrintJobsIndexes, Validator: validators.PrintJobValidator},
	"bookings":              {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
	"booking_locks":         {Indexes: BookingLocksIndexes, Validator: validators.BookingLockValidator},
	"time_slots":            {Indexes: TimeSlotsIndexes, Validator: validators.TimeSlotValidator},
	"shop_info":             {Indexes: []mongo.IndexModel{unique("shop_owner_id")}, Validator: validators.ShopInfoValidator},
	"public_shop_directory": {Indexes: PublicShopIndexes, Validator: validators.PublicShopValidator},
	"operating_hours":       {Indexes: []mongo.IndexModel{unique("shop_owner_id", "day_of_week")}, Validator: validators.OperatingHoursValidator},
	"pricing_rules":         {Indexes: []mongo.IndexModel{unique("shop_owner_id", "service_type")}, Validator: validators.PricingRuleValidator},
	"print_queue_settings":  {Indexes: []mongo.IndexModel{unique("shop_owner_id")}, Validator: validators.QueueSettingsValidator},
	"slot_settings":         {Indexes: []mongo.IndexModel{unique("shop_owner_id")}, Validator: validators.SlotSettingsValidator},
	"notification_settings": {Indexes: []mongo.IndexModel{unique("shop_owner_id")}, Validator: validators.NotificationSettingsValidator},
	"equipment":             {Indexes: EquipmentIndexes, Validator: validators.EquipmentValidator},
	"maintenance":           {Validator: validators.SweepMarkerValidator},
	"users":                 {Indexes: UsersIndexes, Validator: validators.UserValidator},
	"sessions":              {Indexes: SessionsIndexes, Validator: validators.SessionValidator},
	"profiles":              {Indexes: []mongo.IndexModel{unique("user_id")}, Validator: validators.ProfileValidator},
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running printhub Mongo migrations", "database", db.Name(), "collections", len(Collections))

	for name, def := range Collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
