package errors

import "errors"

var (
	ErrNotFound = errors.New("print job not found")

	ErrInvalidID = errors.New("invalid print job ID format")

	// ErrStatusConflict means the job left the expected status between read and write.
	ErrStatusConflict = errors.New("print job status changed concurrently")
)
