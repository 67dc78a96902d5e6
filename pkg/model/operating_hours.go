package model

import "time"

type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

var Week = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DayOf maps a calendar date to its day_of_week value.
func DayOf(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

type OperatingHours struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopOwnerID string    `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	DayOfWeek   DayOfWeek `json:"day_of_week" bson:"day_of_week" validate:"required,day_of_week"`
	OpenTime    string    `json:"open_time" bson:"open_time" validate:"required,hhmm"`
	CloseTime   string    `json:"close_time" bson:"close_time" validate:"required,hhmm"`
	IsOpen      bool      `json:"is_open" bson:"is_open"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
