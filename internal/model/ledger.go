package model

// WarningKind classifies a non-fatal condition reported alongside a successful result
type WarningKind string

const (
	// WarningOrphanedReference means a log entry referenced a player that no longer exists
	WarningOrphanedReference WarningKind = "orphaned_reference"
)

// Warning is a non-fatal condition attached to a LedgerResult
type Warning struct {
	Kind    WarningKind
	Message string
}

// LedgerResult is returned by every successful ledger mutation
type LedgerResult struct {
	// Entry is the entry after the operation (the removed entry for a revoke)
	Entry *PointLogEntry
	// Players holds the affected players with their balances after the operation
	Players  []*Player
	Warnings []Warning
}
