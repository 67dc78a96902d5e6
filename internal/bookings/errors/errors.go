package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusConflict means the booking left the expected status between read and write.
	ErrStatusConflict = errors.New("booking status changed concurrently")

	ErrLocked = errors.New("booking request already in progress")
)
