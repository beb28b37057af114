package model

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors wrap one of these so callers can match either.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage error")
)

var (
	// Not found errors
	ErrPlayerNotFound   = fmt.Errorf("player %w", ErrNotFound)
	ErrStationNotFound  = fmt.Errorf("station %w", ErrNotFound)
	ErrLogEntryNotFound = fmt.Errorf("log entry %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	// Conflict errors
	ErrLogEntryConflict  = fmt.Errorf("%w: log entry was modified concurrently", ErrConflict)
	ErrPlayerNumberTaken = fmt.Errorf("%w: player number already in use", ErrConflict)
	ErrUsernameTaken     = fmt.Errorf("%w: username already in use", ErrConflict)
	ErrCodeTaken         = fmt.Errorf("%w: login code already in use", ErrConflict)
	ErrLastAdmin         = fmt.Errorf("%w: the last administrator cannot be removed", ErrConflict)
)

// InvalidInput returns an ErrInvalidInput describing the offending field
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StorageError wraps a backend failure so it is recognisable as ErrStorage
// while keeping the original error in the chain
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
