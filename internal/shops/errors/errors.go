package errors

import "errors"

var (
	ErrNotFound = errors.New("shop info not found")

	ErrListingNotFound = errors.New("public shop listing not found")
)
