package model

import "time"

// ShopInfo holds the owner's private contact details.
type ShopInfo struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopOwnerID  string    `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	ShopName     string    `json:"shop_name" bson:"shop_name" validate:"required,min=2,max=100"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Address      string    `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=300"`
	PhoneNumber  string    `json:"phone_number,omitempty" bson:"phone_number,omitempty" validate:"omitempty,max=20"`
	EmailAddress string    `json:"email_address,omitempty" bson:"email_address,omitempty" validate:"omitempty,email"`
	WebsiteURL   string    `json:"website_url,omitempty" bson:"website_url,omitempty" validate:"omitempty,url"`
	LogoURL      string    `json:"logo_url,omitempty" bson:"logo_url,omitempty" validate:"omitempty,max=512"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

type DayHours struct {
	Open   string `json:"open" bson:"open"`
	Close  string `json:"close" bson:"close"`
	IsOpen bool   `json:"is_open" bson:"is_open"`
}

// PublicShop is the directory listing visible to every customer.
type PublicShop struct {
	ID              string              `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopOwnerID     string              `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	ShopName        string              `json:"shop_name" bson:"shop_name" validate:"required,min=2,max=100"`
	Description     string              `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Address         string              `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=300"`
	WebsiteURL      string              `json:"website_url,omitempty" bson:"website_url,omitempty" validate:"omitempty,url"`
	LogoURL         string              `json:"logo_url,omitempty" bson:"logo_url,omitempty" validate:"omitempty,max=512"`
	ServicesOffered []string            `json:"services_offered,omitempty" bson:"services_offered,omitempty" validate:"omitempty,max=20,dive,min=2,max=50"`
	Rating          float64             `json:"rating" bson:"rating" validate:"min=0,max=5"`
	TotalReviews    int                 `json:"total_reviews" bson:"total_reviews" validate:"min=0"`
	IsActive        bool                `json:"is_active" bson:"is_active"`
	BusinessHours   map[string]DayHours `json:"business_hours,omitempty" bson:"business_hours,omitempty"`
	Latitude        *float64            `json:"latitude,omitempty" bson:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       *float64            `json:"longitude,omitempty" bson:"longitude,omitempty" validate:"omitempty,longitude"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
}

// ShopProfile is the owner-facing aggregate of both shop views.
type ShopProfile struct {
	ShopName        string   `json:"shop_name" validate:"required,min=2,max=100"`
	Description     string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Address         string   `json:"address,omitempty" validate:"omitempty,max=300"`
	PhoneNumber     string   `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	EmailAddress    string   `json:"email_address,omitempty" validate:"omitempty,email"`
	WebsiteURL      string   `json:"website_url,omitempty" validate:"omitempty,url"`
	LogoURL         string   `json:"logo_url,omitempty" validate:"omitempty,max=512"`
	ServicesOffered []string `json:"services_offered,omitempty" validate:"omitempty,max=20,dive,min=2,max=50"`
	IsActive        *bool    `json:"is_active,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

type ShopListing struct {
	PublicShop `bson:",inline"`
	DistanceKm *float64 `json:"distance_km,omitempty" bson:"-"`
}

type SyncAction string

const (
	SyncNone      SyncAction = "none"
	SyncCreated   SyncAction = "created_public_listing"
	SyncActivated SyncAction = "activated_public_listing"
	SyncMissing   SyncAction = "missing_shop_info"
)

type SyncReport struct {
	ShopOwnerID string      `json:"shop_owner_id"`
	Action      SyncAction  `json:"action"`
	Listing     *PublicShop `json:"listing,omitempty"`
}

// ShopDetails pairs the private and public views of one shop.
type ShopDetails struct {
	Info    *ShopInfo   `json:"info"`
	Listing *PublicShop `json:"listing,omitempty"`
}

type ShopFilter struct {
	Search     string
	ActiveOnly bool
}
