package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	shopserrors "printhub/internal/shops/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	"printhub/pkg/model"
)

const (
	InfoCollectionName    = "shop_info"
	ListingCollectionName = "public_shop_directory"
)

type ShopRepository interface {
	FindInfo(ctx context.Context, shopOwnerID string) (*model.ShopInfo, error)
	FindListing(ctx context.Context, shopOwnerID string) (*model.PublicShop, error)
	UpsertInfo(ctx context.Context, info *model.ShopInfo) error
	UpsertListing(ctx context.Context, listing *model.PublicShop) error
	SetListingActive(ctx context.Context, shopOwnerID string, active bool) error
	SetBusinessHours(ctx context.Context, shopOwnerID string, hours map[string]model.DayHours) error
	RenameShop(ctx context.Context, shopOwnerID, name string) error
	FindListings(ctx context.Context, filter model.ShopFilter, limit int, offset int64) ([]*model.PublicShop, error)
	CountListings(ctx context.Context, filter model.ShopFilter) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoShopRepository struct {
	cfg       *config.Config
	info      *mongo.Collection
	listings  *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoShopRepository(cfg *config.Config) ShopRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoShopRepository{
		cfg:       cfg,
		info:      db.Collection(InfoCollectionName),
		listings:  db.Collection(ListingCollectionName),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoShopRepository) FindInfo(ctx context.Context, shopOwnerID string) (*model.ShopInfo, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var info model.ShopInfo
	if err := r.info.FindOne(ctx, bson.M{"shop_owner_id": shopOwnerID}).Decode(&info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shopserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find shop info: %w", err)
	}
	return &info, nil
}

func (r *mongoShopRepository) FindListing(ctx context.Context, shopOwnerID string) (*model.PublicShop, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var listing model.PublicShop
	if err := r.listings.FindOne(ctx, bson.M{"shop_owner_id": shopOwnerID}).Decode(&listing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shopserrors.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to find shop listing: %w", err)
	}
	return &listing, nil
}

// replace swaps in doc as the shop's document, creating it when missing.
// The stored _id is kept and the stored document is decoded into doc.
func (r *mongoShopRepository) replace(ctx context.Context, coll *mongo.Collection, shopOwnerID string, doc any) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndReplace().SetUpsert(true).SetReturnDocument(options.After)
	return coll.FindOneAndReplace(ctx, bson.M{"shop_owner_id": shopOwnerID}, doc, opts).Decode(doc)
}

func (r *mongoShopRepository) UpsertInfo(ctx context.Context, info *model.ShopInfo) error {
	now := mongotx.Now()
	info.ID = ""
	info.UpdatedAt = now
	if info.CreatedAt.IsZero() {
		info.CreatedAt = now
	}
	if err := r.replace(ctx, r.info, info.ShopOwnerID, info); err != nil {
		return fmt.Errorf("failed to upsert shop info: %w", err)
	}
	return nil
}

func (r *mongoShopRepository) UpsertListing(ctx context.Context, listing *model.PublicShop) error {
	now := mongotx.Now()
	listing.ID = ""
	listing.UpdatedAt = now
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	if err := r.replace(ctx, r.listings, listing.ShopOwnerID, listing); err != nil {
		return fmt.Errorf("failed to upsert shop listing: %w", err)
	}
	return nil
}

func (r *mongoShopRepository) setListing(ctx context.Context, shopOwnerID string, set bson.M) (*mongo.UpdateResult, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set["updated_at"] = mongotx.Now()
	return r.listings.UpdateOne(ctx, bson.M{"shop_owner_id": shopOwnerID}, bson.M{"$set": set})
}

func (r *mongoShopRepository) SetListingActive(ctx context.Context, shopOwnerID string, active bool) error {
	result, err := r.setListing(ctx, shopOwnerID, bson.M{"is_active": active})
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	if result.MatchedCount == 0 {
		return shopserrors.ErrListingNotFound
	}
	return nil
}

// SetBusinessHours is a no-op for shops without a listing yet.
func (r *mongoShopRepository) SetBusinessHours(ctx context.Context, shopOwnerID string, hours map[string]model.DayHours) error {
	if _, err := r.setListing(ctx, shopOwnerID, bson.M{"business_hours": hours}); err != nil {
		return fmt.Errorf("failed to update business hours: %w", err)
	}
	return nil
}

// RenameShop sets the shop name on both views.
func (r *mongoShopRepository) RenameShop(ctx context.Context, shopOwnerID, name string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"shop_owner_id": shopOwnerID}
	update := bson.M{"$set": bson.M{"shop_name": name, "updated_at": mongotx.Now()}}

	if _, err := r.info.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to rename shop info: %w", err)
	}
	if _, err := r.listings.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to rename shop listing: %w", err)
	}
	return nil
}

func listingFilter(f model.ShopFilter) bson.M {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	if f.Search != "" {
		filter["shop_name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	return filter
}

// FindListings returns listings ordered by rating. A zero limit returns
// every match.
func (r *mongoShopRepository) FindListings(ctx context.Context, f model.ShopFilter, limit int, offset int64) ([]*model.PublicShop, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "shop_name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.listings.Find(ctx, listingFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find shop listings: %w", err)
	}
	defer cursor.Close(ctx)

	var shops []*model.PublicShop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, fmt.Errorf("failed to decode shop listings: %w", err)
	}
	return shops, nil
}

func (r *mongoShopRepository) CountListings(ctx context.Context, f model.ShopFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.listings.CountDocuments(ctx, listingFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count shop listings: %w", err)
	}
	return count, nil
}

func (r *mongoShopRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
