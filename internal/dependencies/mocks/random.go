package mocks

import (
	"sync"

	"github.com/mcoot/stationscore/internal/dependencies/random"
)

// MockRandom hands out queued login codes in order
type MockRandom struct {
	mu    sync.Mutex
	codes []string
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with an empty queue
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Code returns the next queued code, or "" once the queue is drained.
// The length argument is ignored so tests can queue malformed codes.
func (r *MockRandom) Code(length int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.codes) == 0 {
		return ""
	}
	code := r.codes[0]
	r.codes = r.codes[1:]
	return code
}

// QueueCode appends codes to the queue
func (r *MockRandom) QueueCode(codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, codes...)
}
