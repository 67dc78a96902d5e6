package errors

import "errors"

var (
	ErrNotFound = errors.New("time slot not found")

	ErrInvalidID = errors.New("invalid time slot ID format")

	ErrSlotFull = errors.New("time slot is fully booked")

	// ErrDateBooked blocks regenerating a date that already holds bookings.
	ErrDateBooked = errors.New("date already has booked slots")
)
