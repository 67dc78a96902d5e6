package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type TimeSlot struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopOwnerID     string    `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	SlotDate        string    `json:"slot_date" bson:"slot_date" validate:"required,slot_date"`
	SlotTime        string    `json:"slot_time" bson:"slot_time" validate:"required,hhmm"`
	CurrentBookings int       `json:"current_bookings" bson:"current_bookings" validate:"min=0"`
	MaxCapacity     int       `json:"max_capacity" bson:"max_capacity" validate:"min=1,max=50"`
	IsAvailable     bool      `json:"is_available" bson:"is_available"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// HasCapacity reports whether one more booking fits.
func (s *TimeSlot) HasCapacity() bool {
	return s.IsAvailable && s.CurrentBookings < s.MaxCapacity
}

type SlotSettings struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	ShopOwnerID     string    `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	SlotDurationMin int       `json:"slot_duration" bson:"slot_duration" validate:"min=5,max=120"`
	MaxJobsPerSlot  int       `json:"max_jobs_per_slot" bson:"max_jobs_per_slot" validate:"min=1,max=50"`
	AdvanceDays     int       `json:"advance_days" bson:"advance_days" validate:"min=1,max=365"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

type GenerateSlotsRequest struct {
	Date string `json:"date" validate:"required,slot_date"`
	Days int    `json:"days,omitempty" validate:"omitempty,min=1,max=365"`
}

type GenerateResult struct {
	Dates    []string          `json:"dates"`
	Slots    int               `json:"slots"`
	Skipped  []string          `json:"skipped,omitempty"`
	Failures map[string]string `json:"failures,omitempty"`
	Summary  string            `json:"summary"`
}

// ClockMinutes converts an HH:MM wall clock time to minutes after midnight.
func ClockMinutes(hhmm string) (int, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(hhmm))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
