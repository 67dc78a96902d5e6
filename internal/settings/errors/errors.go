package errors

import "errors"

var (
	ErrNotFound = errors.New("settings not found")

	ErrEquipmentNotFound = errors.New("equipment not found")

	ErrInvalidID = errors.New("invalid equipment ID format")
)
