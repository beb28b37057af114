package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/mcoot/stationscore/internal/model"
)

// Storage defines the interface for data persistence.
//
// Point log writes carry the balance adjustments that belong to them; a backend
// applies the entry change and every adjustment as one atomic write, so the
// ledger and the cached balances are never observed out of step.
type Storage interface {
	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error
	// UpdatePlayer persists identity fields only; the balance is never written here
	UpdatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByNumber(ctx context.Context, number string) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Station operations
	CreateStation(ctx context.Context, station *model.Station) error
	UpdateStation(ctx context.Context, station *model.Station) error
	GetStation(ctx context.Context, id model.StationID) (*model.Station, error)
	ListStations(ctx context.Context) ([]*model.Station, error)
	DeleteStation(ctx context.Context, id model.StationID) error

	// Point log operations
	CreatePointLog(ctx context.Context, entry *model.PointLogEntry, adjustments []model.BalanceAdjustment) error
	// UpdatePointLog replaces prev with next. It fails with model.ErrLogEntryConflict
	// if the stored entry no longer equals prev.
	UpdatePointLog(ctx context.Context, prev, next *model.PointLogEntry, adjustments []model.BalanceAdjustment) error
	// DeletePointLog removes prev, with the same conflict check as UpdatePointLog
	DeletePointLog(ctx context.Context, prev *model.PointLogEntry, adjustments []model.BalanceAdjustment) error
	GetPointLog(ctx context.Context, id model.PointLogID) (*model.PointLogEntry, error)
	// QueryPointLogs returns matching entries ordered by model.NewestFirst
	QueryPointLogs(ctx context.Context, filter model.LogFilter) ([]*model.PointLogEntry, error)

	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByCode(ctx context.Context, code string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CountUsersByRank(ctx context.Context, rank int) (int, error)
	DeleteUser(ctx context.Context, id model.UserID) error

	// Login log operations
	AppendLoginLog(ctx context.Context, entry *model.LoginLogEntry) error
	ListLoginLogs(ctx context.Context, limit int) ([]*model.LoginLogEntry, error)
}

// SameEntry reports whether two log entries hold the same values.
// Backends use it for the compare-and-swap in UpdatePointLog and DeletePointLog.
func SameEntry(a, b *model.PointLogEntry) bool {
	return a.ID == b.ID &&
		a.PlayerID == b.PlayerID &&
		a.StationID == b.StationID &&
		a.Points == b.Points &&
		a.Timestamp.Equal(b.Timestamp) &&
		a.Description == b.Description &&
		a.RecordedBy == b.RecordedBy
}

// ByStationNumber orders stations by number, then name
func ByStationNumber(a, b *model.Station) int {
	if c := strings.Compare(a.Number, b.Number); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// BackendError passes domain errors through unchanged and wraps anything else
// as model.ErrStorage
func BackendError(err error) error {
	if err == nil ||
		errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrConflict) ||
		errors.Is(err, model.ErrInvalidInput) ||
		errors.Is(err, model.ErrStorage) {
		return err
	}
	return model.StorageError(err)
}
