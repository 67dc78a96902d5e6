package errors

import "errors"

var (
	ErrNotFound = errors.New("operating hours not found")
)
