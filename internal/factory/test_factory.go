package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/stationscore/internal/dependencies/mocks"
	"github.com/mcoot/stationscore/internal/realtime"
	"github.com/mcoot/stationscore/internal/services/auth"
	"github.com/mcoot/stationscore/internal/services/users"
	"github.com/mcoot/stationscore/internal/session"
	"github.com/mcoot/stationscore/internal/storage/memory"
	"github.com/mcoot/stationscore/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDs
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The realtime hub is running; call Close when done.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockClock.Tick(time.Millisecond)
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDs("id")

	app := newWithDependencies(
		store,
		session.NewMemoryStore(mockClock),
		mockClock,
		mockRandom,
		mockIDs,
		auth.DefaultConfig(),
		users.Config{BcryptCost: bcrypt.MinCost},
		testutil.NopLogger(),
		func(hub *realtime.Hub) (realtime.Notifier, *realtime.RedisRelay) { return hub, nil },
	)
	_ = app.Start(context.Background())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
		Memory:     store,
	}
}
