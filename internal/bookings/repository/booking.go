package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "printhub/internal/bookings/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	CollectionName = "bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Find(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	LinkPrintJob(ctx context.Context, id, printJobID string) error
	TransitionStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = mongotx.InsertedHex(result)
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, bookingserrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func filterDocument(f model.BookingFilter) bson.M {
	filter := bson.M{}
	if f.ShopOwnerID != "" {
		filter["shop_owner_id"] = f.ShopOwnerID
	}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.SlotDate != "" {
		filter["slot_date"] = f.SlotDate
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

// Find returns bookings in slot order, latest date first.
func (r *mongoBookingRepository) Find(ctx context.Context, f model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "slot_date", Value: -1}, {Key: "slot_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filterDocument(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, f model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filterDocument(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) LinkPrintJob(ctx context.Context, id, printJobID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, bookingserrors.ErrInvalidID)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"print_job_id": printJobID, "updated_at": mongotx.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to link print job: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// TransitionStatus moves a booking from one status to another only if it is
// still in `from`.
func (r *mongoBookingRepository) TransitionStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, bookingserrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": mongotx.Now()}},
		opts,
	).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrStatusConflict
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
