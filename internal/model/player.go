package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a roster entry (a player or team) that earns points at stations
type Player struct {
	ID          PlayerID
	Name        string
	Number      string // externally visible, unique across the roster
	Class       string // classification tag
	LastStation StationID
	Points      int64 // cached balance, only changed by the ledger
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
