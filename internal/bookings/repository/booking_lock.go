package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "printhub/internal/bookings/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const LockCollectionName = "booking_locks"

// BookingLockRepository provides advisory locks keyed by an arbitrary string.
type BookingLockRepository interface {
	Acquire(ctx context.Context, lock *model.BookingLock) error
	Release(ctx context.Context, lockID string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire returns ErrLocked if the lock is already held.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = mongotx.Now()
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return bookingserrors.ErrLocked
		}
		return fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	return nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, lockID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
