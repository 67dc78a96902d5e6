// Package generator lays a shop's opening hours out into bookable slots.
package generator

import (
	"errors"
	"fmt"
	"time"

	"printhub/pkg/model"
)

// MaxSlotsPerDay bounds a single day's output.
const MaxSlotsPerDay = 200

var (
	ErrClosed       = errors.New("shop is closed on this day")
	ErrInvalidRange = errors.New("open time must be before close time")
)

// GenerateSlots returns the slots for one date, from open time up to but
// excluding close time, stepping by the configured slot duration. Every slot
// starts empty with the configured per-slot capacity.
func GenerateSlots(date string, hours model.OperatingHours, settings model.SlotSettings) ([]*model.TimeSlot, error) {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	if !hours.IsOpen {
		return nil, ErrClosed
	}

	open, err := model.ClockMinutes(hours.OpenTime)
	if err != nil {
		return nil, err
	}
	closing, err := model.ClockMinutes(hours.CloseTime)
	if err != nil {
		return nil, err
	}
	if open >= closing {
		return nil, ErrInvalidRange
	}

	step := settings.SlotDurationMin
	if step <= 0 {
		return nil, fmt.Errorf("invalid slot duration %d", step)
	}

	slots := make([]*model.TimeSlot, 0, min((closing-open)/step+1, MaxSlotsPerDay))
	for at := open; at < closing && len(slots) < MaxSlotsPerDay; at += step {
		slots = append(slots, &model.TimeSlot{
			ShopOwnerID:     hours.ShopOwnerID,
			SlotDate:        date,
			SlotTime:        model.FormatClock(at),
			CurrentBookings: 0,
			MaxCapacity:     settings.MaxJobsPerSlot,
			IsAvailable:     true,
		})
	}
	return slots, nil
}
