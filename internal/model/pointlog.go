package model

import "time"

// PointLogID uniquely identifies a point log entry
type PointLogID string

// PointLogEntry records a signed point delta earned by a player at a station
type PointLogEntry struct {
	ID          PointLogID
	PlayerID    PlayerID
	StationID   StationID
	Points      int64
	Timestamp   time.Time
	Description string
	RecordedBy  UserID
}

// LogFilter selects point log entries. Empty fields match everything; set fields are ANDed.
type LogFilter struct {
	PlayerID  PlayerID
	StationID StationID
}

// Matches reports whether the entry satisfies the filter
func (f LogFilter) Matches(e *PointLogEntry) bool {
	if f.PlayerID != "" && e.PlayerID != f.PlayerID {
		return false
	}
	if f.StationID != "" && e.StationID != f.StationID {
		return false
	}
	return true
}

// NewestFirst orders entries by timestamp descending, breaking ties by ID descending.
// Storage backends use it so repeated queries return identical sequences.
func NewestFirst(a, b *PointLogEntry) int {
	if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}

// BalanceAdjustment is an atomic increment of a player's cached balance,
// applied by storage in the same write as the log entry change it belongs to
type BalanceAdjustment struct {
	PlayerID PlayerID
	Delta    int64
	// LastStation, when set, replaces the player's last visited station
	LastStation StationID
}
