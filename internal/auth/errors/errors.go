package errors

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidID       = errors.New("invalid user id")
	ErrSessionNotFound = errors.New("session not found or revoked")

	ErrInvalidConfirmation = errors.New("invalid confirmation token")
)
