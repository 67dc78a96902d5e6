package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	profileserrors "printhub/internal/profiles/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const CollectionName = "profiles"

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	FindByUser(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.Profile, error)
	UpdateFullName(ctx context.Context, userID, fullName string) error
	SetAvatarPath(ctx context.Context, userID, path string) (*model.Profile, error)
}

type mongoProfileRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProfileRepository(cfg *config.Config) ProfileRepository {
	return &mongoProfileRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

// Create inserts the profile unless one already exists for the user, in
// which case profile is overwritten with the stored document.
func (r *mongoProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	profile.ID = ""
	profile.CreatedAt = now
	profile.UpdatedAt = now

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"user_id": profile.UserID},
		bson.M{"$setOnInsert": profile},
		opts,
	).Decode(profile)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *mongoProfileRepository) FindByUser(ctx context.Context, userID string) (*model.Profile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var profile model.Profile
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, profileserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

func (r *mongoProfileRepository) set(ctx context.Context, userID string, set bson.M) (*model.Profile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set["updated_at"] = mongotx.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var profile model.Profile
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, bson.M{"$set": set}, opts).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, profileserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &profile, nil
}

func (r *mongoProfileRepository) Update(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.Profile, error) {
	set := bson.M{}
	if update.FullName != nil {
		set["full_name"] = *update.FullName
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	return r.set(ctx, userID, set)
}

func (r *mongoProfileRepository) UpdateFullName(ctx context.Context, userID, fullName string) error {
	_, err := r.set(ctx, userID, bson.M{"full_name": fullName})
	return err
}

func (r *mongoProfileRepository) SetAvatarPath(ctx context.Context, userID, path string) (*model.Profile, error) {
	return r.set(ctx, userID, bson.M{"avatar_path": path})
}
