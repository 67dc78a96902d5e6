package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type Booking struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopOwnerID   string        `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	CustomerID    string        `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	CustomerName  string        `json:"customer_name,omitempty" bson:"customer_name,omitempty" validate:"omitempty,max=100"`
	CustomerEmail string        `json:"customer_email,omitempty" bson:"customer_email,omitempty" validate:"omitempty,email"`
	TimeSlotID    string        `json:"time_slot_id" bson:"time_slot_id" validate:"required,mongodb"`
	SlotDate      string        `json:"slot_date" bson:"slot_date" validate:"required,slot_date"`
	SlotTime      string        `json:"slot_time" bson:"slot_time" validate:"required,hhmm"`
	Status        BookingStatus `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled completed"`
	PrintJobID    string        `json:"print_job_id,omitempty" bson:"print_job_id,omitempty" validate:"omitempty,mongodb"`
	Notes         string        `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

// BookingFile is one uploaded document attached to a booking request.
// The file itself is already in storage under StoragePath.
type BookingFile struct {
	FileName    string `json:"file_name" validate:"required,min=1,max=255"`
	StoragePath string `json:"storage_path" validate:"required,max=512"`
	FileSize    int64  `json:"file_size" validate:"min=0"`
	Pages       int    `json:"pages" validate:"min=0,max=10000"`
}

type BookingRequest struct {
	ShopOwnerID   string         `json:"shop_owner_id" validate:"required,mongodb"`
	TimeSlotID    string         `json:"time_slot_id" validate:"required,mongodb"`
	CustomerID    string         `json:"-"`
	CustomerName  string         `json:"customer_name,omitempty" validate:"omitempty,max=100"`
	CustomerEmail string         `json:"customer_email,omitempty" validate:"omitempty,email"`
	Notes         string         `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Files         []BookingFile  `json:"files" validate:"omitempty,max=20,dive"`
	PrintSettings *PrintSettings `json:"print_settings,omitempty" validate:"omitempty"`
}

type BookingResult struct {
	Booking   *Booking    `json:"booking"`
	PrintJobs []*PrintJob `json:"print_jobs"`
}

type BookingFilter struct {
	ShopOwnerID string
	CustomerID  string
	SlotDate    string
	Status      BookingStatus
}

// BookingLock marks one customer's in-flight request for a slot. Stale locks
// are removed by a TTL index on expires_at.
type BookingLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
