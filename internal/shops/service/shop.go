package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	profileserrors "printhub/internal/profiles/errors"
	shopserrors "printhub/internal/shops/errors"
	"printhub/internal/shops/repository"
	"printhub/pkg/config"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/geo"
	"printhub/pkg/model"
	"printhub/pkg/sanitizer"
	"printhub/pkg/validation"
)

const (
	DefaultDescription = "Quality printing services available here!"
	DefaultAddress     = "Address not set - please update in settings"

	// Used when a missing listing is rebuilt from the private record.
	SyncDescription = "Quality printing services"
	SyncAddress     = "Address not set"

	DefaultRadiusKm = 10.0
)

// ProfileStore is the slice of the profiles store needed to rename an owner.
type ProfileStore interface {
	FindByUser(ctx context.Context, userID string) (*model.Profile, error)
	UpdateFullName(ctx context.Context, userID, fullName string) error
}

type ShopService interface {
	Details(ctx context.Context, shopOwnerID string) (*model.ShopDetails, error)
	Update(ctx context.Context, shopOwnerID string, p *model.ShopProfile) (*model.ShopDetails, error)
	EnsureShop(ctx context.Context, shopOwnerID, ownerName, email string) (*model.ShopDetails, error)
	GetPublic(ctx context.Context, shopOwnerID string) (*model.PublicShop, error)
	ListPublic(ctx context.Context, search string, limit int, offset int64) ([]*model.PublicShop, int64, error)
	FindNearby(ctx context.Context, origin geo.Point, radiusKm float64) ([]*model.ShopListing, error)
	SyncCheck(ctx context.Context, shopOwnerID string) (*model.SyncReport, error)
	UpdateOwnerName(ctx context.Context, userID, fullName string) error
}

type shopService struct {
	repo      repository.ShopRepository
	profiles  ProfileStore
	validator *validation.Validator
	cfg       *config.Config
}

func NewShopService(
	repo repository.ShopRepository,
	profiles ProfileStore,
	v *validation.Validator,
	cfg *config.Config,
) ShopService {
	return &shopService{
		repo:      repo,
		profiles:  profiles,
		validator: v,
		cfg:       cfg,
	}
}

// DefaultShopName is the name given to a new owner's shop.
func DefaultShopName(ownerName string) string {
	ownerName = strings.TrimSpace(ownerName)
	if ownerName == "" {
		ownerName = "My"
	}
	return ownerName + " Print Shop"
}

func (s *shopService) internal(msg, shopOwnerID string, err error) error {
	s.cfg.Log.Error(msg, "shop_owner_id", shopOwnerID, "error", err)
	return apperrors.Internal(msg, err)
}

func (s *shopService) findListing(ctx context.Context, shopOwnerID string) (*model.PublicShop, error) {
	listing, err := s.repo.FindListing(ctx, shopOwnerID)
	if errors.Is(err, shopserrors.ErrListingNotFound) {
		return nil, nil
	}
	return listing, err
}

func (s *shopService) Details(ctx context.Context, shopOwnerID string) (*model.ShopDetails, error) {
	info, err := s.repo.FindInfo(ctx, shopOwnerID)
	if err != nil {
		if errors.Is(err, shopserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Shop", shopOwnerID)
		}
		return nil, s.internal("failed to load shop", shopOwnerID, err)
	}
	listing, err := s.findListing(ctx, shopOwnerID)
	if err != nil {
		return nil, s.internal("failed to load shop listing", shopOwnerID, err)
	}
	return &model.ShopDetails{Info: info, Listing: listing}, nil
}

func (s *shopService) sanitize(p *model.ShopProfile) error {
	p.ShopName = sanitizer.Text(p.ShopName)
	p.Description = sanitizer.Text(p.Description)
	p.Address = sanitizer.Text(p.Address)
	p.EmailAddress = sanitizer.Email(p.EmailAddress)
	p.WebsiteURL = strings.TrimSpace(p.WebsiteURL)
	p.LogoURL = strings.TrimSpace(p.LogoURL)
	p.ServicesOffered = sanitizer.Slice(p.ServicesOffered, sanitizer.Text)

	if raw := strings.TrimSpace(p.PhoneNumber); raw != "" {
		p.PhoneNumber = sanitizer.Phone(raw, s.cfg.PhoneRegion)
		if p.PhoneNumber == "" {
			return apperrors.InvalidInput("invalid phone number: " + raw)
		}
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return apperrors.InvalidInput("latitude and longitude must be set together")
	}
	return nil
}

// Update writes both shop views in one transaction so the listing never
// drifts from the private record.
func (s *shopService) Update(ctx context.Context, shopOwnerID string, p *model.ShopProfile) (*model.ShopDetails, error) {
	if err := s.sanitize(p); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(p); err != nil {
		return nil, validation.ToAppError(err)
	}

	var details model.ShopDetails
	err := s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		info, err := s.repo.FindInfo(sc, shopOwnerID)
		if err != nil && !errors.Is(err, shopserrors.ErrNotFound) {
			return err
		}
		if info == nil {
			info = &model.ShopInfo{}
		}
		listing, err := s.findListing(sc, shopOwnerID)
		if err != nil {
			return err
		}
		if listing == nil {
			listing = &model.PublicShop{IsActive: true}
		}

		info.ShopOwnerID = shopOwnerID
		info.ShopName = p.ShopName
		info.Description = p.Description
		info.Address = p.Address
		info.PhoneNumber = p.PhoneNumber
		info.EmailAddress = p.EmailAddress
		info.WebsiteURL = p.WebsiteURL
		info.LogoURL = p.LogoURL

		listing.ShopOwnerID = shopOwnerID
		listing.ShopName = p.ShopName
		listing.Description = p.Description
		listing.Address = p.Address
		listing.WebsiteURL = p.WebsiteURL
		listing.LogoURL = p.LogoURL
		listing.ServicesOffered = p.ServicesOffered
		listing.Latitude = p.Latitude
		listing.Longitude = p.Longitude
		if p.IsActive != nil {
			listing.IsActive = *p.IsActive
		}

		if err := s.repo.UpsertInfo(sc, info); err != nil {
			return err
		}
		if err := s.repo.UpsertListing(sc, listing); err != nil {
			return err
		}
		details = model.ShopDetails{Info: info, Listing: listing}
		return nil
	})
	if err != nil {
		return nil, s.internal("failed to save shop", shopOwnerID, err)
	}

	s.cfg.Log.Info("shop updated", "shop_owner_id", shopOwnerID, "shop_name", p.ShopName)
	return &details, nil
}

// EnsureShop creates the default shop for a new owner. Existing shops are
// returned untouched.
func (s *shopService) EnsureShop(ctx context.Context, shopOwnerID, ownerName, email string) (*model.ShopDetails, error) {
	var details model.ShopDetails
	err := s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		info, err := s.repo.FindInfo(sc, shopOwnerID)
		if err == nil {
			listing, err := s.findListing(sc, shopOwnerID)
			details = model.ShopDetails{Info: info, Listing: listing}
			return err
		}
		if !errors.Is(err, shopserrors.ErrNotFound) {
			return err
		}

		info = &model.ShopInfo{
			ShopOwnerID:  shopOwnerID,
			ShopName:     DefaultShopName(ownerName),
			Description:  DefaultDescription,
			Address:      DefaultAddress,
			EmailAddress: sanitizer.Email(email),
		}
		listing := &model.PublicShop{
			ShopOwnerID: shopOwnerID,
			ShopName:    info.ShopName,
			Description: info.Description,
			Address:     info.Address,
			IsActive:    true,
		}
		if err := s.repo.UpsertInfo(sc, info); err != nil {
			return err
		}
		if err := s.repo.UpsertListing(sc, listing); err != nil {
			return err
		}
		details = model.ShopDetails{Info: info, Listing: listing}
		return nil
	})
	if err != nil {
		return nil, s.internal("failed to create shop", shopOwnerID, err)
	}
	return &details, nil
}

func (s *shopService) GetPublic(ctx context.Context, shopOwnerID string) (*model.PublicShop, error) {
	listing, err := s.findListing(ctx, shopOwnerID)
	if err != nil {
		return nil, s.internal("failed to load shop listing", shopOwnerID, err)
	}
	if listing == nil || !listing.IsActive {
		return nil, apperrors.NotFoundWithID("Shop", shopOwnerID)
	}
	return listing, nil
}

func (s *shopService) ListPublic(ctx context.Context, search string, limit int, offset int64) ([]*model.PublicShop, int64, error) {
	filter := model.ShopFilter{Search: sanitizer.Text(search), ActiveOnly: true}
	limit = config.NormalizePaginationLimit(limit)

	var (
		shops             []*model.PublicShop
		count             int64
		errFind, errCount error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		shops, errFind = s.repo.FindListings(ctx, filter, limit, offset)
	}()
	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountListings(ctx, filter)
	}()
	wg.Wait()

	if err := errors.Join(errFind, errCount); err != nil {
		return nil, 0, s.internal("failed to list shops", "", err)
	}
	if shops == nil {
		shops = []*model.PublicShop{}
	}
	return shops, count, nil
}

// FindNearby lists active shops within radiusKm of origin, nearest first.
// Shops without coordinates follow, without a distance.
func (s *shopService) FindNearby(ctx context.Context, origin geo.Point, radiusKm float64) ([]*model.ShopListing, error) {
	if !origin.Valid() {
		return nil, apperrors.InvalidInput("invalid coordinates")
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	shops, err := s.repo.FindListings(ctx, model.ShopFilter{ActiveOnly: true}, 0, 0)
	if err != nil {
		return nil, s.internal("failed to list shops", "", err)
	}

	var located, unlocated []*model.ShopListing
	for _, shop := range shops {
		if shop.Latitude == nil || shop.Longitude == nil {
			unlocated = append(unlocated, &model.ShopListing{PublicShop: *shop})
			continue
		}
		d := geo.DistanceKm(origin, geo.Point{Lat: *shop.Latitude, Lng: *shop.Longitude})
		if d > radiusKm {
			continue
		}
		located = append(located, &model.ShopListing{PublicShop: *shop, DistanceKm: &d})
	}

	sort.SliceStable(located, func(i, j int) bool {
		return *located[i].DistanceKm < *located[j].DistanceKm
	})
	return append(append(make([]*model.ShopListing, 0, len(located)+len(unlocated)), located...), unlocated...), nil
}

// SyncCheck repairs the public listing from the private record: a missing
// listing is created and an inactive one is activated.
func (s *shopService) SyncCheck(ctx context.Context, shopOwnerID string) (*model.SyncReport, error) {
	report := &model.SyncReport{ShopOwnerID: shopOwnerID, Action: model.SyncNone}

	err := s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		report.Action = model.SyncNone
		report.Listing = nil

		info, err := s.repo.FindInfo(sc, shopOwnerID)
		if errors.Is(err, shopserrors.ErrNotFound) {
			report.Action = model.SyncMissing
			return nil
		}
		if err != nil {
			return err
		}

		listing, err := s.findListing(sc, shopOwnerID)
		if err != nil {
			return err
		}

		switch {
		case listing == nil:
			listing = &model.PublicShop{
				ShopOwnerID: shopOwnerID,
				ShopName:    info.ShopName,
				Description: info.Description,
				Address:     info.Address,
				WebsiteURL:  info.WebsiteURL,
				LogoURL:     info.LogoURL,
				IsActive:    true,
			}
			if listing.Description == "" {
				listing.Description = SyncDescription
			}
			if listing.Address == "" {
				listing.Address = SyncAddress
			}
			if err := s.repo.UpsertListing(sc, listing); err != nil {
				return err
			}
			report.Action = model.SyncCreated
		case !listing.IsActive:
			if err := s.repo.SetListingActive(sc, shopOwnerID, true); err != nil {
				return err
			}
			listing.IsActive = true
			report.Action = model.SyncActivated
		}
		report.Listing = listing
		return nil
	})
	if err != nil {
		return nil, s.internal("failed to sync shop listing", shopOwnerID, err)
	}

	if report.Action != model.SyncNone {
		s.cfg.Log.Info("shop listing synced", "shop_owner_id", shopOwnerID, "action", report.Action)
	}
	return report, nil
}

// UpdateOwnerName renames the owner and, if the shop still carries the
// default name derived from the old owner name, renames the shop to match.
func (s *shopService) UpdateOwnerName(ctx context.Context, userID, fullName string) error {
	fullName = sanitizer.Text(fullName)
	if fullName == "" || len(fullName) > 100 {
		return apperrors.InvalidInput("full name must be between 1 and 100 characters")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		profile, err := s.profiles.FindByUser(sc, userID)
		if err != nil {
			return err
		}
		if err := s.profiles.UpdateFullName(sc, userID, fullName); err != nil {
			return err
		}

		info, err := s.repo.FindInfo(sc, userID)
		if errors.Is(err, shopserrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.ShopName != DefaultShopName(profile.FullName) {
			return nil
		}
		return s.repo.RenameShop(sc, userID, DefaultShopName(fullName))
	})
	if err != nil {
		if errors.Is(err, profileserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Profile", userID)
		}
		return s.internal("failed to update owner name", userID, err)
	}

	s.cfg.Log.Info("owner name updated", "user_id", userID)
	return nil
}
