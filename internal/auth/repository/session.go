package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	autherrors "printhub/internal/auth/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const SessionsCollectionName = "sessions"

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindActive(ctx context.Context, id string, now time.Time) (*model.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}

type mongoSessionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	return &mongoSessionRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(SessionsCollectionName),
	}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepository) FindActive(ctx context.Context, id string, now time.Time) (*model.Session, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"_id":        id,
		"revoked_at": bson.M{"$exists": false},
		"expires_at": bson.M{"$gt": now},
	}

	var session model.Session
	if err := r.collection.FindOne(ctx, filter).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, autherrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

// Revoke marks an active session revoked. Revoking twice reports ErrSessionNotFound.
func (r *mongoSessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "revoked_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"revoked_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if result.MatchedCount == 0 {
		return autherrors.ErrSessionNotFound
	}
	return nil
}
