package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	hourserrors "printhub/internal/operatinghours/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	CollectionName = "operating_hours"
)

type OperatingHoursRepository interface {
	FindByShop(ctx context.Context, shopOwnerID string) ([]model.OperatingHours, error)
	FindDay(ctx context.Context, shopOwnerID string, day model.DayOfWeek) (*model.OperatingHours, error)
	UpsertWeek(ctx context.Context, shopOwnerID string, hours []model.OperatingHours) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoOperatingHoursRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoOperatingHoursRepository(cfg *config.Config) OperatingHoursRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOperatingHoursRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoOperatingHoursRepository) FindByShop(ctx context.Context, shopOwnerID string) ([]model.OperatingHours, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"shop_owner_id": shopOwnerID})
	if err != nil {
		return nil, fmt.Errorf("failed to find operating hours: %w", err)
	}
	defer cursor.Close(ctx)

	var hours []model.OperatingHours
	if err := cursor.All(ctx, &hours); err != nil {
		return nil, fmt.Errorf("failed to decode operating hours: %w", err)
	}
	return hours, nil
}

func (r *mongoOperatingHoursRepository) FindDay(ctx context.Context, shopOwnerID string, day model.DayOfWeek) (*model.OperatingHours, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var hours model.OperatingHours
	err := r.collection.FindOne(ctx, bson.M{"shop_owner_id": shopOwnerID, "day_of_week": day}).Decode(&hours)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hourserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find operating hours: %w", err)
	}
	return &hours, nil
}

// UpsertWeek writes one row per day keyed by (shop_owner_id, day_of_week).
func (r *mongoOperatingHoursRepository) UpsertWeek(ctx context.Context, shopOwnerID string, hours []model.OperatingHours) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	writes := make([]mongo.WriteModel, 0, len(hours))
	for i := range hours {
		h := &hours[i]
		h.ShopOwnerID = shopOwnerID
		h.UpdatedAt = now

		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"shop_owner_id": shopOwnerID, "day_of_week": h.DayOfWeek}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"open_time":  h.OpenTime,
					"close_time": h.CloseTime,
					"is_open":    h.IsOpen,
					"updated_at": now,
				},
				"$setOnInsert": bson.M{"created_at": now},
			}).
			SetUpsert(true))
	}
	if len(writes) == 0 {
		return nil
	}

	if _, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to upsert operating hours: %w", err)
	}
	return nil
}

func (r *mongoOperatingHoursRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
