package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	autherrors "printhub/internal/auth/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const UsersCollectionName = "users"

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	ConfirmEmail(ctx context.Context, token string) (*model.User, error)
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	return &mongoUserRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(UsersCollectionName),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	user.ID = ""
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return autherrors.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = mongotx.InsertedHex(result)
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, autherrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := mongotx.ObjectID(id, autherrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// ConfirmEmail consumes a confirmation token. A token can be used once.
func (r *mongoUserRepository) ConfirmEmail(ctx context.Context, token string) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set":   bson.M{"email_confirmed": true, "updated_at": mongotx.Now()},
		"$unset": bson.M{"confirmation_token": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"confirmation_token": token}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, autherrors.ErrInvalidConfirmation
		}
		return nil, fmt.Errorf("failed to confirm email: %w", err)
	}
	return &user, nil
}
