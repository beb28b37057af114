package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/stationscore/internal/dependencies/clock"
	"github.com/mcoot/stationscore/internal/dependencies/ids"
	"github.com/mcoot/stationscore/internal/dependencies/random"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
)

const (
	// CodeLength is the length of generated login codes
	CodeLength = 6

	maxCodeAttempts = 20
)

// ErrCodeExhausted is returned when no free login code could be generated
var ErrCodeExhausted = fmt.Errorf("%w: could not generate a unique login code", model.ErrConflict)

// Config holds configuration for the users service
type Config struct {
	// BcryptCost is the bcrypt work factor; zero means bcrypt.DefaultCost
	BcryptCost int
}

// Service manages staff and administrator accounts
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	ids     ids.Generator
	logger  *slog.Logger

	bcryptCost int
}

// NewService creates a new users Service
func NewService(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	ids ids.Generator,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		random:     random,
		ids:        ids,
		logger:     logger.With(slog.String("component", "users")),
		bcryptCost: cfg.BcryptCost,
	}
}

// CreateInput holds the fields of a new user. An empty Code gets a generated one.
type CreateInput struct {
	FirstName       string
	LastName        string
	Username        string
	Password        string
	Email           string
	Phone           string
	AssignedStation model.StationID
	Rank            int
	Code            string
}

// UpdateInput holds user fields to replace. Nil fields keep their value;
// a non-nil Password is hashed again.
type UpdateInput struct {
	FirstName       *string
	LastName        *string
	Username        *string
	Password        *string
	Email           *string
	Phone           *string
	AssignedStation *model.StationID
	Rank            *int
	Code            *string
}

// List returns all users, oldest first
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// Get returns a user by ID
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// Create adds a user with a hashed password
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, model.InvalidInput("username is required")
	}
	if in.Password == "" {
		return nil, model.InvalidInput("password is required")
	}
	if in.Rank < 0 || in.Rank > model.RankAdmin {
		return nil, model.InvalidInput("rank must be between 0 and %d", model.RankAdmin)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		code, err = s.generateCode(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	user := &model.User{
		ID:              model.UserID(s.ids.NewID()),
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Username:        username,
		PasswordHash:    hash,
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		AssignedStation: in.AssignedStation,
		Rank:            in.Rank,
		Code:            code,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("user_id", string(user.ID)),
		slog.String("username", user.Username),
		slog.Int("rank", user.Rank),
	)
	return user, nil
}

// Update replaces fields of a user. Demoting the only administrator fails with ErrLastAdmin.
func (s *Service) Update(ctx context.Context, id model.UserID, in UpdateInput) (*model.User, error) {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, model.InvalidInput("username is required")
		}
		user.Username = username
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, model.InvalidInput("password must not be empty")
		}
		if user.PasswordHash, err = s.hash(*in.Password); err != nil {
			return nil, err
		}
	}
	if in.Rank != nil {
		if *in.Rank < 0 || *in.Rank > model.RankAdmin {
			return nil, model.InvalidInput("rank must be between 0 and %d", model.RankAdmin)
		}
		if user.IsAdmin() && *in.Rank != model.RankAdmin {
			if err := s.ensureOtherAdmin(ctx); err != nil {
				return nil, err
			}
		}
		user.Rank = *in.Rank
	}
	if in.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.Code))
		if code == "" {
			return nil, model.InvalidInput("code must not be empty")
		}
		user.Code = code
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.AssignedStation != nil {
		user.AssignedStation = *in.AssignedStation
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user. The only administrator cannot be deleted.
func (s *Service) Delete(ctx context.Context, id model.UserID) error {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.storage.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.String("user_id", string(id)))
	return nil
}

// LoginLogs returns the most recent login attempts, newest first
func (s *Service) LoginLogs(ctx context.Context, limit int) ([]*model.LoginLogEntry, error) {
	logs, err := s.storage.ListLoginLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*model.LoginLogEntry{}
	}
	return logs, nil
}

// EnsureAdmin creates an administrator with the given credentials when none exists.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	count, err := s.storage.CountUsersByRank(ctx, model.RankAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	_, err = s.Create(ctx, CreateInput{
		FirstName: "Admin",
		Username:  username,
		Password:  password,
		Rank:      model.RankAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ensureOtherAdmin(ctx context.Context) error {
	count, err := s.storage.CountUsersByRank(ctx, model.RankAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return model.ErrLastAdmin
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", model.InvalidInput("password is too long")
		}
		return "", err
	}
	return string(hash), nil
}

func (s *Service) generateCode(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code := s.random.Code(CodeLength)
		if len(code) != CodeLength {
			continue
		}
		_, err := s.storage.GetUserByCode(ctx, code)
		if errors.Is(err, model.ErrUserNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrCodeExhausted
}
