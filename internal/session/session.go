// Package session stores login sessions with an expiry.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/stationscore/internal/model"
)

// ErrNotFound is returned for unknown or expired tokens
var ErrNotFound = errors.New("session not found")

// Session binds a bearer token to a user until it expires
type Session struct {
	Token     string
	UserID    model.UserID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store keeps sessions until they expire
type Store interface {
	// Put stores the session until its ExpiresAt
	Put(ctx context.Context, s *Session) error
	// Get returns ErrNotFound once the session has expired
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
