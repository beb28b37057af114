package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/stationscore/internal/dependencies/clock"
	"github.com/mcoot/stationscore/internal/dependencies/ids"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
)

// Service manages the roster of players. It only ever touches identity fields;
// balances belong to the ledger.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
}

// NewService creates a new roster Service
func NewService(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger.With(slog.String("component", "roster")),
	}
}

// CreateInput holds the identity of a new player
type CreateInput struct {
	Name   string
	Number string
	Class  string
}

// UpdateInput holds identity fields to replace. Nil fields keep their value.
type UpdateInput struct {
	Name   *string
	Number *string
	Class  *string
}

// List returns all players, most recently created first
func (s *Service) List(ctx context.Context) ([]*model.Player, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []*model.Player{}
	}
	return players, nil
}

// Get returns a player by ID
func (s *Service) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// GetByNumber returns a player by roster number
func (s *Service) GetByNumber(ctx context.Context, number string) (*model.Player, error) {
	return s.storage.GetPlayerByNumber(ctx, strings.TrimSpace(number))
}

// Create adds a player with a zero balance
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Player, error) {
	name := strings.TrimSpace(in.Name)
	number := strings.TrimSpace(in.Number)
	class := strings.TrimSpace(in.Class)
	if err := validate(name, number, class); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:        model.PlayerID(s.ids.NewID()),
		Name:      name,
		Number:    number,
		Class:     class,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	s.logger.Info("player created",
		slog.String("player_id", string(player.ID)),
		slog.String("number", player.Number),
	)
	return player, nil
}

// Update replaces identity fields of a player. The balance is left alone.
func (s *Service) Update(ctx context.Context, id model.PlayerID, in UpdateInput) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		player.Name = strings.TrimSpace(*in.Name)
	}
	if in.Number != nil {
		player.Number = strings.TrimSpace(*in.Number)
	}
	if in.Class != nil {
		player.Class = strings.TrimSpace(*in.Class)
	}
	if err := validate(player.Name, player.Number, player.Class); err != nil {
		return nil, err
	}
	player.UpdatedAt = s.clock.Now()

	if err := s.storage.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	// Re-read so the returned balance is the stored one, not the stale copy
	return s.storage.GetPlayer(ctx, id)
}

// Delete removes a player. Its log entries stay behind as orphans.
func (s *Service) Delete(ctx context.Context, id model.PlayerID) error {
	if err := s.storage.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("player deleted", slog.String("player_id", string(id)))
	return nil
}

func validate(name, number, class string) error {
	switch {
	case name == "":
		return model.InvalidInput("name is required")
	case number == "":
		return model.InvalidInput("number is required")
	case class == "":
		return model.InvalidInput("class is required")
	}
	return nil
}
