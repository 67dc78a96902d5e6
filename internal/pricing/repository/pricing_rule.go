package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pricingerrors "printhub/internal/pricing/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	CollectionName = "pricing_rules"
)

type PricingRuleRepository interface {
	FindByShop(ctx context.Context, shopOwnerID string) ([]model.PricingRule, error)
	Upsert(ctx context.Context, rule *model.PricingRule) error
	Delete(ctx context.Context, shopOwnerID, id string) error
}

type mongoPricingRuleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPricingRuleRepository(cfg *config.Config) PricingRuleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPricingRuleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPricingRuleRepository) FindByShop(ctx context.Context, shopOwnerID string) ([]model.PricingRule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "service_type", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"shop_owner_id": shopOwnerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pricing rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []model.PricingRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode pricing rules: %w", err)
	}
	return rules, nil
}

// Upsert writes the rule keyed by (shop_owner_id, service_type).
func (r *mongoPricingRuleRepository) Upsert(ctx context.Context, rule *model.PricingRule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	rule.UpdatedAt = now

	filter := bson.M{"shop_owner_id": rule.ShopOwnerID, "service_type": rule.ServiceType}
	update := bson.M{
		"$set": bson.M{
			"price_per_page":           rule.PricePerPage,
			"color_multiplier":         rule.ColorMultiplier,
			"minimum_charge":           rule.MinimumCharge,
			"bulk_discount_threshold":  rule.BulkDiscountThreshold,
			"bulk_discount_percentage": rule.BulkDiscountPercentage,
			"updated_at":               now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(rule); err != nil {
		return fmt.Errorf("failed to upsert pricing rule: %w", err)
	}
	return nil
}

func (r *mongoPricingRuleRepository) Delete(ctx context.Context, shopOwnerID, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, pricingerrors.ErrInvalidID)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid, "shop_owner_id": shopOwnerID})
	if err != nil {
		return fmt.Errorf("failed to delete pricing rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return pricingerrors.ErrNotFound
	}
	return nil
}
