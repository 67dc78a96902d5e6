package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	slotserrors "printhub/internal/timeslots/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	CollectionName = "time_slots"
)

type TimeSlotRepository interface {
	ReplaceForDate(ctx context.Context, shopOwnerID, date string, slots []*model.TimeSlot) error
	FindByDate(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error)
	FindAvailable(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*model.TimeSlot, error)
	Reserve(ctx context.Context, id string) (*model.TimeSlot, error)
	Release(ctx context.Context, id string) (*model.TimeSlot, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoTimeSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoTimeSlotRepository(cfg *config.Config) TimeSlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTimeSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// ReplaceForDate drops the date's slots and inserts the new set. Callers run
// it inside a transaction so readers never see a half-written day.
func (r *mongoTimeSlotRepository) ReplaceForDate(ctx context.Context, shopOwnerID, date string, slots []*model.TimeSlot) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	day := bson.M{"shop_owner_id": shopOwnerID, "slot_date": date}

	booked, err := r.collection.CountDocuments(ctx, bson.M{
		"shop_owner_id":    shopOwnerID,
		"slot_date":        date,
		"current_bookings": bson.M{"$gt": 0},
	})
	if err != nil {
		return fmt.Errorf("failed to count booked slots: %w", err)
	}
	if booked > 0 {
		return slotserrors.ErrDateBooked
	}

	if _, err := r.collection.DeleteMany(ctx, day); err != nil {
		return fmt.Errorf("failed to delete time slots: %w", err)
	}
	if len(slots) == 0 {
		return nil
	}

	now := mongotx.Now()
	docs := make([]any, 0, len(slots))
	for _, s := range slots {
		s.CreatedAt = now
		s.UpdatedAt = now
		docs = append(docs, s)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert time slots: %w", err)
	}
	for i, id := range result.InsertedIDs {
		slots[i].ID = mongotx.InsertedHex(&mongo.InsertOneResult{InsertedID: id})
	}
	return nil
}

func (r *mongoTimeSlotRepository) find(ctx context.Context, filter bson.M) ([]*model.TimeSlot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "slot_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find time slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode time slots: %w", err)
	}
	return slots, nil
}

func (r *mongoTimeSlotRepository) FindByDate(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error) {
	return r.find(ctx, bson.M{"shop_owner_id": shopOwnerID, "slot_date": date})
}

func (r *mongoTimeSlotRepository) FindAvailable(ctx context.Context, shopOwnerID, date string) ([]*model.TimeSlot, error) {
	return r.find(ctx, bson.M{
		"shop_owner_id": shopOwnerID,
		"slot_date":     date,
		"is_available":  true,
		"$expr":         bson.M{"$lt": bson.A{"$current_bookings", "$max_capacity"}},
	})
}

func (r *mongoTimeSlotRepository) FindByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, slotserrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var slot model.TimeSlot
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find time slot: %w", err)
	}
	return &slot, nil
}

// Reserve takes one seat in the slot. The capacity check and the increment
// happen in a single conditional update, and the slot is marked unavailable
// by the same write once it fills up.
func (r *mongoTimeSlotRepository) Reserve(ctx context.Context, id string) (*model.TimeSlot, error) {
	filter := bson.M{
		"is_available": true,
		"$expr":        bson.M{"$lt": bson.A{"$current_bookings", "$max_capacity"}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"current_bookings": bson.M{"$add": bson.A{"$current_bookings", 1}},
			"updated_at":       mongotx.Now(),
		}}},
		{{Key: "$set", Value: bson.M{
			"is_available": bson.M{"$lt": bson.A{"$current_bookings", "$max_capacity"}},
		}}},
	}

	slot, err := r.adjust(ctx, id, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, slotserrors.ErrSlotFull
	}
	return slot, err
}

// Release gives a seat back. The count never drops below zero; releasing an
// empty slot returns it unchanged.
func (r *mongoTimeSlotRepository) Release(ctx context.Context, id string) (*model.TimeSlot, error) {
	filter := bson.M{"current_bookings": bson.M{"$gt": 0}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"current_bookings": bson.M{"$subtract": bson.A{"$current_bookings", 1}},
			"is_available":     true,
			"updated_at":       mongotx.Now(),
		}}},
	}

	slot, err := r.adjust(ctx, id, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return r.FindByID(ctx, id)
	}
	return slot, err
}

func (r *mongoTimeSlotRepository) adjust(ctx context.Context, id string, filter bson.M, update mongo.Pipeline) (*model.TimeSlot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, slotserrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	filter["_id"] = oid

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot model.TimeSlot
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update time slot capacity: %w", err)
	}
	return &slot, nil
}

func (r *mongoTimeSlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
