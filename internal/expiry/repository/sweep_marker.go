package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	CollectionName = "maintenance"

	// FileExpiryMarker is the marker id of the file expiry sweep.
	FileExpiryMarker = "file_expiry"
)

type SweepMarkerRepository interface {
	Get(ctx context.Context, name string) (*model.SweepMarker, error)
	Record(ctx context.Context, name string, result *model.SweepResult) (*model.SweepMarker, error)
}

type mongoSweepMarkerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSweepMarkerRepository(cfg *config.Config) SweepMarkerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSweepMarkerRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// Get returns nil without error when no sweep has been recorded yet.
func (r *mongoSweepMarkerRepository) Get(ctx context.Context, name string) (*model.SweepMarker, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var marker model.SweepMarker
	err := r.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&marker)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sweep marker: %w", err)
	}
	return &marker, nil
}

func (r *mongoSweepMarkerRepository) Record(ctx context.Context, name string, result *model.SweepResult) (*model.SweepMarker, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"last_run_at":  result.StartedAt,
			"last_deleted": result.DeletedCount,
			"last_errors":  result.Errors,
		},
		"$inc": bson.M{"total_deleted": int64(result.DeletedCount)},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var marker model.SweepMarker
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).Decode(&marker); err != nil {
		return nil, fmt.Errorf("failed to record sweep marker: %w", err)
	}
	return &marker, nil
}
