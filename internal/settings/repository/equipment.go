package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	settingserrors "printhub/internal/settings/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

type mongoEquipmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEquipmentRepository(cfg *config.Config) EquipmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEquipmentRepository{
		cfg:        cfg,
		collection: db.Collection(EquipmentCollection),
	}
}

func (r *mongoEquipmentRepository) FindByShop(ctx context.Context, shopOwnerID string) ([]*model.Equipment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "equipment_name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"shop_owner_id": shopOwnerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*model.Equipment
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}
	return items, nil
}

func (r *mongoEquipmentRepository) Create(ctx context.Context, eq *model.Equipment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, eq)
	if err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	eq.ID = mongotx.InsertedHex(result)
	return nil
}

// Update replaces the mutable fields of equipment owned by eq.ShopOwnerID.
func (r *mongoEquipmentRepository) Update(ctx context.Context, eq *model.Equipment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(eq.ID, settingserrors.ErrInvalidID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"equipment_name":   eq.EquipmentName,
		"equipment_type":   eq.EquipmentType,
		"brand":            eq.Brand,
		"model":            eq.Model,
		"status":           eq.Status,
		"capabilities":     eq.Capabilities,
		"last_maintenance": eq.LastMaintenance,
		"next_maintenance": eq.NextMaintenance,
		"updated_at":       eq.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid, "shop_owner_id": eq.ShopOwnerID}, update)
	if err != nil {
		return fmt.Errorf("failed to update equipment: %w", err)
	}
	if result.MatchedCount == 0 {
		return settingserrors.ErrEquipmentNotFound
	}
	return nil
}

func (r *mongoEquipmentRepository) Delete(ctx context.Context, shopOwnerID, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, settingserrors.ErrInvalidID)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid, "shop_owner_id": shopOwnerID})
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}
	if result.DeletedCount == 0 {
		return settingserrors.ErrEquipmentNotFound
	}
	return nil
}
