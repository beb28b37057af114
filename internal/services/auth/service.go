package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/stationscore/internal/dependencies/clock"
	"github.com/mcoot/stationscore/internal/dependencies/ids"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/session"
	"github.com/mcoot/stationscore/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// Session represents an authenticated session
type Session struct {
	Token     string
	User      model.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles authentication and session management
type Service struct {
	storage  storage.Storage
	sessions session.Store
	clock    clock.Clock
	ids      ids.Generator
	logger   *slog.Logger

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new AuthService
func New(
	storage storage.Storage,
	sessions session.Store,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		sessions:        sessions,
		clock:           clock,
		ids:             ids,
		logger:          logger.With(slog.String("component", "auth")),
		sessionDuration: cfg.SessionDuration,
	}
}

// Login authenticates a user by username and password and creates a session.
// Every attempt is recorded in the login log.
func (s *Service) Login(ctx context.Context, username, password, ip string) (*Session, error) {
	user, err := s.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.recordAttempt(ctx, "", false, ip)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordAttempt(ctx, user.ID, false, ip)
		return nil, ErrInvalidCredentials
	}

	return s.loggedIn(ctx, user, ip)
}

// LoginWithCode authenticates a user by their login code and creates a session
func (s *Service) LoginWithCode(ctx context.Context, code, ip string) (*Session, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		s.recordAttempt(ctx, "", false, ip)
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.GetUserByCode(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.recordAttempt(ctx, "", false, ip)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.loggedIn(ctx, user, ip)
}

// ValidateSession checks a session token and returns the session with the
// user's current record
func (s *Service) ValidateSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	stored, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	user, err := s.storage.GetUser(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// The account was deleted after the session was issued
			_ = s.sessions.Delete(ctx, token)
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return &Session{
		Token:     stored.Token,
		User:      *user,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Authenticate returns the user for a session token
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	sess, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return &sess.User, nil
}

// Logout removes a session
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// loggedIn finishes a successful login: audit entry, last login time and a new session
func (s *Service) loggedIn(ctx context.Context, user *model.User, ip string) (*Session, error) {
	now := s.clock.Now()
	s.recordAttempt(ctx, user.ID, true, ip)

	user.LastLogin = &now
	if err := s.storage.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record last login",
			slog.String("user_id", string(user.ID)),
			slog.String("error", err.Error()),
		)
	}

	sess := &session.Session{
		Token:     s.ids.NewID(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.String("user_id", string(user.ID)),
		slog.String("ip", ip),
	)
	return &Session{
		Token:     sess.Token,
		User:      *user,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// recordAttempt appends to the login log. A failure to record does not fail the login.
func (s *Service) recordAttempt(ctx context.Context, userID model.UserID, success bool, ip string) {
	entry := &model.LoginLogEntry{
		ID:      s.ids.NewID(),
		UserID:  userID,
		Success: success,
		IP:      ip,
		Date:    s.clock.Now(),
	}
	if err := s.storage.AppendLoginLog(ctx, entry); err != nil {
		s.logger.Error("failed to record login attempt",
			slog.String("user_id", string(userID)),
			slog.String("error", err.Error()),
		)
	}
}
