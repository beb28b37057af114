package ledger

import (
	"context"
	"slices"
	"strings"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
)

// QueryService is the read side of the ledger
type QueryService struct {
	storage storage.Storage
}

// NewQueryService creates a new QueryService
func NewQueryService(storage storage.Storage) *QueryService {
	return &QueryService{storage: storage}
}

// Query returns entries matching every set filter field, newest first.
// Entries with equal timestamps are ordered by ID descending.
func (q *QueryService) Query(ctx context.Context, filter model.LogFilter) ([]*model.PointLogEntry, error) {
	entries, err := q.storage.QueryPointLogs(ctx, filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return []*model.PointLogEntry{}, nil
	}
	slices.SortStableFunc(entries, model.NewestFirst)
	return entries, nil
}

// Get returns a single entry
func (q *QueryService) Get(ctx context.Context, id model.PointLogID) (*model.PointLogEntry, error) {
	return q.storage.GetPointLog(ctx, id)
}

// PlayerTotal sums the ledger for one player. It is the value the player's
// cached balance must equal.
func (q *QueryService) PlayerTotal(ctx context.Context, playerID model.PlayerID) (int64, error) {
	entries, err := q.storage.QueryPointLogs(ctx, model.LogFilter{PlayerID: playerID})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.Points
	}
	return total, nil
}

// BalanceDrift describes a player whose cached balance disagrees with the ledger
type BalanceDrift struct {
	PlayerID model.PlayerID
	Number   string
	Cached   int64
	Ledger   int64
}

// Audit compares every player's cached balance with the sum of their entries.
// It returns the players that disagree, ordered by ID; an empty result means
// the ledger and balances are consistent.
func (q *QueryService) Audit(ctx context.Context) ([]BalanceDrift, error) {
	players, err := q.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := q.storage.QueryPointLogs(ctx, model.LogFilter{})
	if err != nil {
		return nil, err
	}

	totals := make(map[model.PlayerID]int64, len(players))
	for _, e := range entries {
		totals[e.PlayerID] += e.Points
	}

	drifts := []BalanceDrift{}
	for _, p := range players {
		if total := totals[p.ID]; total != p.Points {
			drifts = append(drifts, BalanceDrift{
				PlayerID: p.ID,
				Number:   p.Number,
				Cached:   p.Points,
				Ledger:   total,
			})
		}
	}
	slices.SortFunc(drifts, func(a, b BalanceDrift) int {
		return strings.Compare(string(a.PlayerID), string(b.PlayerID))
	})
	return drifts, nil
}
