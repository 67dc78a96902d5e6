package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	jobsCollection     = "print_jobs"
	profilesCollection = "profiles"
)

// AnalyticsRepository reads print job history. It never writes.
type AnalyticsRepository interface {
	CompletedJobs(ctx context.Context, shopOwnerID string, from, to time.Time) ([]model.JobFact, error)
	Customers(ctx context.Context, shopOwnerID string) ([]*model.CustomerStats, error)
}

type mongoAnalyticsRepository struct {
	cfg  *config.Config
	jobs *mongo.Collection
}

func NewMongoAnalyticsRepository(cfg *config.Config) AnalyticsRepository {
	return &mongoAnalyticsRepository{
		cfg:  cfg,
		jobs: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(jobsCollection),
	}
}

// CompletedJobs returns completed jobs created within [from, to].
func (r *mongoAnalyticsRepository) CompletedJobs(ctx context.Context, shopOwnerID string, from, to time.Time) ([]model.JobFact, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"shop_owner_id": shopOwnerID,
		"status":        model.JobStatusCompleted,
		"created_at":    bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{
			"customer_id": 1,
			"total_cost":  1,
			"created_at":  1,
			"color_type":  "$print_settings.colorType",
		})

	cursor, err := r.jobs.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find completed jobs: %w", err)
	}
	defer cursor.Close(ctx)

	facts := []model.JobFact{}
	if err := cursor.All(ctx, &facts); err != nil {
		return nil, fmt.Errorf("failed to decode completed jobs: %w", err)
	}
	return facts, nil
}

// Customers groups every job of the shop by customer and joins the profile.
// Customers without a profile come back with an empty name.
func (r *mongoAnalyticsRepository) Customers(ctx context.Context, shopOwnerID string) ([]*model.CustomerStats, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"shop_owner_id": shopOwnerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":             "$customer_id",
			"total_orders":    bson.M{"$sum": 1},
			"total_spent":     bson.M{"$sum": "$total_cost"},
			"last_order_date": bson.M{"$max": "$created_at"},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         profilesCollection,
			"localField":   "_id",
			"foreignField": "user_id",
			"as":           "profile",
		}}},
		{{Key: "$set", Value: bson.M{
			"full_name": bson.M{"$ifNull": bson.A{bson.M{"$first": "$profile.full_name"}, ""}},
			"phone":     bson.M{"$ifNull": bson.A{bson.M{"$first": "$profile.phone"}, ""}},
		}}},
		{{Key: "$project", Value: bson.M{"profile": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_order_date", Value: -1}}}},
	}

	cursor, err := r.jobs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate customers: %w", err)
	}
	defer cursor.Close(ctx)

	customers := []*model.CustomerStats{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}
	return customers, nil
}
