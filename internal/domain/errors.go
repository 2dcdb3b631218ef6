package domain

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrNameRequired     = errors.New("name is required")
	ErrDateRequired     = errors.New("date is required")
	ErrLocationRequired = errors.New("location is required")
	ErrInvalidID        = errors.New("invalid id")
	ErrStoreUnavailable = errors.New("store unavailable")
)
