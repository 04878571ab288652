package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes surfaced by the store and its callers
var (
	// ErrValidation indicates a request was rejected before anything was written
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a session, action or player does not exist
	ErrNotFound = errors.New("not found")

	// ErrIntegrity indicates dependent rows point at a parent that no longer exists.
	// Seeing it means the cascade discipline was broken; it is never a user error.
	ErrIntegrity = errors.New("integrity violation")

	// ErrInvalidActionType indicates an action type outside the catalog
	ErrInvalidActionType = fmt.Errorf("%w: invalid action type", ErrValidation)

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Validationf returns an ErrValidation carrying a formatted reason
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf returns an ErrNotFound naming the missing record
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
