package services

import "errors"

// Sentinel errors the handlers translate into HTTP statuses. Services
// wrap them with context via fmt.Errorf("...: %w", ...).
var (
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
)
