package mocks

import (
	"fmt"
	"sync/atomic"

	"github.com/mcoot/stationscore/internal/dependencies/ids"
)

// MockIDs is a mock implementation of Generator returning sequential IDs
type MockIDs struct {
	Prefix string
	next   atomic.Int64
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs producing "<prefix>-0001", "<prefix>-0002", ...
func NewMockIDs(prefix string) *MockIDs {
	return &MockIDs{Prefix: prefix}
}

// NewID returns the next sequential ID. Safe for concurrent use.
func (g *MockIDs) NewID() string {
	return fmt.Sprintf("%s-%04d", g.Prefix, g.next.Add(1))
}
