package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	printjobserrors "printhub/internal/printjobs/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	CollectionName = "print_jobs"
)

type mongoPrintJobRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type PrintJobRepository interface {
	Create(ctx context.Context, job *model.PrintJob) error
	FindByID(ctx context.Context, id string) (*model.PrintJob, error)
	Find(ctx context.Context, filter model.PrintJobFilter, limit int, offset int64) ([]*model.PrintJob, error)
	Count(ctx context.Context, filter model.PrintJobFilter) (int64, error)
	TransitionStatus(ctx context.Context, id string, from, to model.JobStatus, at time.Time) (*model.PrintJob, error)
	Delete(ctx context.Context, id string) (*model.PrintJob, error)
	DeleteIfCreatedBefore(ctx context.Context, id string, cutoff time.Time) (*model.PrintJob, error)
	SummarizeCustomer(ctx context.Context, customerID string) (*model.CustomerJobSummary, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoPrintJobRepository(cfg *config.Config) PrintJobRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPrintJobRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoPrintJobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to create print job: %w", err)
	}

	job.ID = mongotx.InsertedHex(result)
	return nil
}

func (r *mongoPrintJobRepository) FindByID(ctx context.Context, id string) (*model.PrintJob, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, printjobserrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var job model.PrintJob
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, printjobserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find print job: %w", err)
	}
	return &job, nil
}

func filterDocument(f model.PrintJobFilter) bson.M {
	filter := bson.M{}
	if f.ShopOwnerID != "" {
		filter["shop_owner_id"] = f.ShopOwnerID
	}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	created := bson.M{}
	if !f.CreatedBefore.IsZero() {
		created["$lte"] = f.CreatedBefore
	}
	if !f.CreatedAfter.IsZero() {
		created["$gt"] = f.CreatedAfter
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}
	return filter
}

// Find returns matching jobs, newest submission first. A limit of zero
// returns every match.
func (r *mongoPrintJobRepository) Find(ctx context.Context, f model.PrintJobFilter, limit int, offset int64) ([]*model.PrintJob, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filterDocument(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find print jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []*model.PrintJob
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode print jobs: %w", err)
	}
	return jobs, nil
}

func (r *mongoPrintJobRepository) Count(ctx context.Context, f model.PrintJobFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filterDocument(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count print jobs: %w", err)
	}
	return count, nil
}

// TransitionStatus moves the job from `from` to `to` only if it is still in
// `from`, stamping the matching timestamp column. It returns
// ErrStatusConflict when another writer got there first.
func (r *mongoPrintJobRepository) TransitionStatus(ctx context.Context, id string, from, to model.JobStatus, at time.Time) (*model.PrintJob, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, printjobserrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"status":     to,
		"updated_at": at,
	}
	if field := model.TimestampField(to); field != "" {
		set[field] = at
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var job model.PrintJob
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid, "status": from}, bson.M{"$set": set}, opts).Decode(&job)
	if err == nil {
		return &job, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update print job status: %w", err)
	}

	n, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if countErr != nil {
		return nil, fmt.Errorf("failed to check print job: %w", countErr)
	}
	if n == 0 {
		return nil, printjobserrors.ErrNotFound
	}
	return nil, printjobserrors.ErrStatusConflict
}

func (r *mongoPrintJobRepository) Delete(ctx context.Context, id string) (*model.PrintJob, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, printjobserrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	return r.findOneAndDelete(ctx, bson.M{"_id": oid})
}

// DeleteIfCreatedBefore removes the job only while it is still older than
// cutoff, so repeating a sweep never deletes anything twice.
func (r *mongoPrintJobRepository) DeleteIfCreatedBefore(ctx context.Context, id string, cutoff time.Time) (*model.PrintJob, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id, printjobserrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	return r.findOneAndDelete(ctx, bson.M{"_id": oid, "created_at": bson.M{"$lte": cutoff}})
}

func (r *mongoPrintJobRepository) findOneAndDelete(ctx context.Context, filter bson.M) (*model.PrintJob, error) {
	var job model.PrintJob
	if err := r.collection.FindOneAndDelete(ctx, filter).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, printjobserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete print job: %w", err)
	}
	return &job, nil
}

type customerSummary struct {
	TotalJobs     int     `bson:"total_jobs"`
	CompletedJobs int     `bson:"completed_jobs"`
	ActiveJobs    int     `bson:"active_jobs"`
	TotalSpent    float64 `bson:"total_spent"`
}

func (r *mongoPrintJobRepository) SummarizeCustomer(ctx context.Context, customerID string) (*model.CustomerJobSummary, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	completed := bson.M{"$eq": bson.A{"$status", model.JobStatusCompleted}}
	active := bson.M{"$in": bson.A{"$status", bson.A{model.JobStatusPending, model.JobStatusQueued, model.JobStatusPrinting}}}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"customer_id": customerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"total_jobs":     bson.M{"$sum": 1},
			"completed_jobs": bson.M{"$sum": bson.M{"$cond": bson.A{completed, 1, 0}}},
			"active_jobs":    bson.M{"$sum": bson.M{"$cond": bson.A{active, 1, 0}}},
			"total_spent":    bson.M{"$sum": bson.M{"$cond": bson.A{completed, "$total_cost", 0}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize customer jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []customerSummary
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode customer summary: %w", err)
	}

	summary := &model.CustomerJobSummary{}
	if len(rows) > 0 {
		summary.TotalJobs = rows[0].TotalJobs
		summary.CompletedJobs = rows[0].CompletedJobs
		summary.ActiveJobs = rows[0].ActiveJobs
		summary.TotalSpent = rows[0].TotalSpent
	}
	return summary, nil
}

func (r *mongoPrintJobRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
