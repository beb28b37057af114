package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mcoot/stationscore/internal/dependencies/clock"
	"github.com/mcoot/stationscore/internal/dependencies/ids"
	"github.com/mcoot/stationscore/internal/keylock"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
)

const msgOrphanedRevoke = "orphaned log revoked without balance correction"

// Engine registers, edits and revokes point log entries. Every entry change and
// the balance adjustments it implies reach storage as a single atomic write.
//
// Operations on one entry are serialized, as are balance changes for one player.
// Work on unrelated players runs in parallel.
type Engine struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	locks   *keylock.Locker
	logger  *slog.Logger
}

// NewEngine creates a new ledger Engine
func NewEngine(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		storage: storage,
		clock:   clock,
		ids:     ids,
		locks:   keylock.New(),
		logger:  logger.With(slog.String("component", "ledger")),
	}
}

func entryLockKey(id model.PointLogID) string {
	return "entry:" + string(id)
}

func playerLockKey(id model.PlayerID) string {
	return "player:" + string(id)
}

// RegisterInput describes points earned by a player at a station
type RegisterInput struct {
	PlayerNumber string
	StationID    model.StationID
	Points       int64
	Description  string
	RecordedBy   model.UserID
}

// Register records a new entry stamped with the current time and credits the
// player's balance by its points
func (e *Engine) Register(ctx context.Context, in RegisterInput) (*model.LedgerResult, error) {
	number := strings.TrimSpace(in.PlayerNumber)
	if number == "" {
		return nil, model.InvalidInput("player number is required")
	}
	if in.StationID == "" {
		return nil, model.InvalidInput("station id is required")
	}

	player, err := e.storage.GetPlayerByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("resolve player %q: %w", number, err)
	}
	if _, err := e.storage.GetStation(ctx, in.StationID); err != nil {
		return nil, fmt.Errorf("resolve station %q: %w", in.StationID, err)
	}

	unlock := e.locks.Lock(playerLockKey(player.ID))
	defer unlock()

	entry := &model.PointLogEntry{
		ID:          model.PointLogID(e.ids.NewID()),
		PlayerID:    player.ID,
		StationID:   in.StationID,
		Points:      in.Points,
		Timestamp:   e.clock.Now(),
		Description: in.Description,
		RecordedBy:  in.RecordedBy,
	}
	adjustments := []model.BalanceAdjustment{{
		PlayerID:    player.ID,
		Delta:       in.Points,
		LastStation: in.StationID,
	}}
	if err := e.storage.CreatePointLog(ctx, entry, adjustments); err != nil {
		return nil, fmt.Errorf("register points: %w", err)
	}

	e.logger.Info("points registered",
		slog.String("entry_id", string(entry.ID)),
		slog.String("player_id", string(player.ID)),
		slog.String("station_id", string(in.StationID)),
		slog.Int64("points", in.Points),
	)

	return &model.LedgerResult{
		Entry:   entry,
		Players: e.balances(ctx, player.ID),
	}, nil
}

// EditInput names the entry to change and the fields to replace. Nil fields keep their value.
type EditInput struct {
	ID          model.PointLogID
	PlayerID    *model.PlayerID
	StationID   *model.StationID
	Points      *int64
	Timestamp   *time.Time
	Description *string
}

// Edit rewrites an entry and moves balance so the ledger sum still holds: the old
// points come off the old player and the new points go onto the new player. When
// the player is unchanged that nets to one adjustment of the difference.
func (e *Engine) Edit(ctx context.Context, in EditInput) (*model.LedgerResult, error) {
	if in.ID == "" {
		return nil, model.InvalidInput("log entry id is required")
	}

	unlockEntry := e.locks.Lock(entryLockKey(in.ID))
	defer unlockEntry()

	prev, err := e.storage.GetPointLog(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	next, err := applyEdit(prev, in)
	if err != nil {
		return nil, err
	}

	var warnings []model.Warning
	if next.StationID != prev.StationID {
		if _, err := e.storage.GetStation(ctx, next.StationID); err != nil {
			return nil, fmt.Errorf("resolve station %q: %w", next.StationID, err)
		}
	} else if _, err := e.storage.GetStation(ctx, next.StationID); errors.Is(err, model.ErrStationNotFound) {
		warnings = append(warnings, model.Warning{
			Kind:    model.WarningOrphanedReference,
			Message: fmt.Sprintf("station %s no longer exists", next.StationID),
		})
	} else if err != nil {
		return nil, err
	}

	unlockPlayers := e.locks.Lock(playerLockKey(prev.PlayerID), playerLockKey(next.PlayerID))
	defer unlockPlayers()

	deltas := make(map[model.PlayerID]int64, 2)
	playerGone := false
	if next.PlayerID == prev.PlayerID {
		// An entry left behind by a deleted player can still be corrected; there is no balance to move.
		if _, err := e.storage.GetPlayer(ctx, prev.PlayerID); err == nil {
			deltas[prev.PlayerID] += next.Points - prev.Points
		} else if errors.Is(err, model.ErrPlayerNotFound) {
			playerGone = true
			warnings = append(warnings, model.Warning{
				Kind:    model.WarningOrphanedReference,
				Message: fmt.Sprintf("player %s no longer exists, balance was not adjusted", prev.PlayerID),
			})
		} else {
			return nil, err
		}
	} else {
		if _, err := e.storage.GetPlayer(ctx, next.PlayerID); err != nil {
			return nil, fmt.Errorf("resolve player %q: %w", next.PlayerID, err)
		}
		if _, err := e.storage.GetPlayer(ctx, prev.PlayerID); err == nil {
			deltas[prev.PlayerID] -= prev.Points
		} else if errors.Is(err, model.ErrPlayerNotFound) {
			warnings = append(warnings, model.Warning{
				Kind:    model.WarningOrphanedReference,
				Message: fmt.Sprintf("player %s no longer exists, old points were not reversed", prev.PlayerID),
			})
		} else {
			return nil, err
		}
		deltas[next.PlayerID] += next.Points
	}

	adjustments := adjustmentsFor(deltas)
	if err := e.storage.UpdatePointLog(ctx, prev, next, adjustments); err != nil {
		return nil, fmt.Errorf("edit log entry %s: %w", prev.ID, err)
	}

	for _, w := range warnings {
		e.logger.Warn(w.Message, slog.String("entry_id", string(prev.ID)))
	}
	e.logger.Info("log entry edited",
		slog.String("entry_id", string(prev.ID)),
		slog.Int64("old_points", prev.Points),
		slog.Int64("new_points", next.Points),
		slog.Int("adjustments", len(adjustments)),
	)

	result := &model.LedgerResult{Entry: next, Warnings: warnings}
	if !playerGone {
		result.Players = e.balances(ctx, affectedPlayers(adjustments, next.PlayerID)...)
	}
	return result, nil
}

func applyEdit(prev *model.PointLogEntry, in EditInput) (*model.PointLogEntry, error) {
	next := *prev
	if in.PlayerID != nil {
		if *in.PlayerID == "" {
			return nil, model.InvalidInput("player id must not be empty")
		}
		next.PlayerID = *in.PlayerID
	}
	if in.StationID != nil {
		if *in.StationID == "" {
			return nil, model.InvalidInput("station id must not be empty")
		}
		next.StationID = *in.StationID
	}
	if in.Points != nil {
		next.Points = *in.Points
	}
	if in.Timestamp != nil {
		if in.Timestamp.IsZero() {
			return nil, model.InvalidInput("timestamp must be set")
		}
		next.Timestamp = *in.Timestamp
	}
	if in.Description != nil {
		next.Description = *in.Description
	}
	return &next, nil
}

// adjustmentsFor turns per-player deltas into adjustments, dropping zeros.
// Output is ordered by player ID.
func adjustmentsFor(deltas map[model.PlayerID]int64) []model.BalanceAdjustment {
	adjustments := make([]model.BalanceAdjustment, 0, len(deltas))
	for playerID, delta := range deltas {
		if delta != 0 {
			adjustments = append(adjustments, model.BalanceAdjustment{PlayerID: playerID, Delta: delta})
		}
	}
	slices.SortFunc(adjustments, func(a, b model.BalanceAdjustment) int {
		return strings.Compare(string(a.PlayerID), string(b.PlayerID))
	})
	return adjustments
}

func affectedPlayers(adjustments []model.BalanceAdjustment, always model.PlayerID) []model.PlayerID {
	players := []model.PlayerID{always}
	for _, adj := range adjustments {
		if adj.PlayerID != always {
			players = append(players, adj.PlayerID)
		}
	}
	return players
}

// Revoke deletes an entry and takes its points back off the player. An entry
// whose player is gone is still deleted, with a warning in the result.
func (e *Engine) Revoke(ctx context.Context, id model.PointLogID) (*model.LedgerResult, error) {
	if id == "" {
		return nil, model.InvalidInput("log entry id is required")
	}

	unlockEntry := e.locks.Lock(entryLockKey(id))
	defer unlockEntry()

	prev, err := e.storage.GetPointLog(ctx, id)
	if err != nil {
		return nil, err
	}

	unlockPlayer := e.locks.Lock(playerLockKey(prev.PlayerID))
	defer unlockPlayer()

	var adjustments []model.BalanceAdjustment
	var warnings []model.Warning
	_, err = e.storage.GetPlayer(ctx, prev.PlayerID)
	switch {
	case err == nil:
		if prev.Points != 0 {
			adjustments = []model.BalanceAdjustment{{PlayerID: prev.PlayerID, Delta: -prev.Points}}
		}
	case errors.Is(err, model.ErrPlayerNotFound):
		warnings = append(warnings, model.Warning{
			Kind:    model.WarningOrphanedReference,
			Message: msgOrphanedRevoke,
		})
	default:
		return nil, err
	}

	if err := e.storage.DeletePointLog(ctx, prev, adjustments); err != nil {
		return nil, fmt.Errorf("revoke log entry %s: %w", prev.ID, err)
	}

	result := &model.LedgerResult{Entry: prev, Warnings: warnings}
	if len(warnings) > 0 {
		e.logger.Warn(msgOrphanedRevoke,
			slog.String("entry_id", string(prev.ID)),
			slog.String("player_id", string(prev.PlayerID)),
			slog.Int64("points", prev.Points),
		)
	} else {
		result.Players = e.balances(ctx, prev.PlayerID)
	}
	e.logger.Info("log entry revoked",
		slog.String("entry_id", string(prev.ID)),
		slog.Int64("points", prev.Points),
	)
	return result, nil
}

// balances reads the players touched by a completed write. The write has already
// succeeded, so a failed read is logged and the player left out of the result.
func (e *Engine) balances(ctx context.Context, playerIDs ...model.PlayerID) []*model.Player {
	players := make([]*model.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		player, err := e.storage.GetPlayer(ctx, id)
		if err != nil {
			e.logger.Warn("failed to read balance after ledger write",
				slog.String("player_id", string(id)),
				slog.Any("error", err),
			)
			continue
		}
		players = append(players, player)
	}
	return players
}
