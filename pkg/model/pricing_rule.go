package model

import "time"

const (
	ServiceBlackWhite = "black_white"
	ServiceColor      = "color"
	ServiceCustom     = "custom"
)

type PricingRule struct {
	ID                     string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopOwnerID            string    `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	ServiceType            string    `json:"service_type" bson:"service_type" validate:"required,oneof=black_white color custom"`
	PricePerPage           float64   `json:"price_per_page" bson:"price_per_page" validate:"gt=0,max=10000"`
	ColorMultiplier        float64   `json:"color_multiplier" bson:"color_multiplier" validate:"gte=1,max=100"`
	MinimumCharge          float64   `json:"minimum_charge" bson:"minimum_charge" validate:"min=0,max=100000"`
	BulkDiscountThreshold  int       `json:"bulk_discount_threshold" bson:"bulk_discount_threshold" validate:"min=0"`
	BulkDiscountPercentage float64   `json:"bulk_discount_percentage" bson:"bulk_discount_percentage" validate:"min=0,max=100"`
	CreatedAt              time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" bson:"updated_at"`
}

// JobSpec is the pricing input for one document.
type JobSpec struct {
	Pages        int    `json:"pages" validate:"min=0,max=10000"`
	Copies       int    `json:"copies" validate:"min=0,max=1000"`
	ColorType    string `json:"colorType" validate:"omitempty,oneof=color black_white"`
	PaperQuality string `json:"paperQuality" validate:"omitempty,oneof=standard premium"`
}

type QuoteRequest struct {
	ShopOwnerID string         `json:"shop_owner_id" validate:"required,mongodb"`
	Files       []JobSpec      `json:"files" validate:"required,min=1,max=50,dive"`
	Settings    *PrintSettings `json:"print_settings,omitempty" validate:"omitempty"`
}

type Quote struct {
	Total float64   `json:"total"`
	Files []float64 `json:"files"`
}
