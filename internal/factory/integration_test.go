package factory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/realtime"
	"github.com/mcoot/stationscore/internal/services/ledger"
	"github.com/mcoot/stationscore/internal/services/roster"
	"github.com/mcoot/stationscore/internal/services/station"
	"github.com/mcoot/stationscore/internal/services/users"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

// Test: staff logs in, registers points, an admin corrects and revokes them
func (s *IntegrationSuite) TestScoringFlow() {
	// Step 1: Bootstrap an admin and create a staff account
	s.app.MockRandom.QueueCode("ADMIN1", "STAFF1")
	created, err := s.app.UserService.EnsureAdmin(s.ctx, "admin", "changeme")
	s.Require().NoError(err)
	s.True(created)
	staff, err := s.app.UserService.Create(s.ctx, users.CreateInput{Username: "staff", Password: "pw", Rank: 1})
	s.Require().NoError(err)

	// Step 2: Staff logs in with their code
	sess, err := s.app.AuthService.LoginWithCode(s.ctx, "STAFF1", "127.0.0.1")
	s.Require().NoError(err)
	s.Equal(staff.ID, sess.User.ID)

	// Step 3: Set up the roster and a station
	red, err := s.app.RosterService.Create(s.ctx, roster.CreateInput{Name: "Red", Number: "07", Class: "A"})
	s.Require().NoError(err)
	blue, err := s.app.RosterService.Create(s.ctx, roster.CreateInput{Name: "Blue", Number: "08", Class: "A"})
	s.Require().NoError(err)
	st, err := s.app.StationManager.Create(s.ctx, station.CreateInput{Name: "Archery", Number: "1", MaxPoints: 20})
	s.Require().NoError(err)

	// Step 4: Register 10 points
	result, err := s.app.LedgerEngine.Register(s.ctx, ledger.RegisterInput{
		PlayerNumber: "07", StationID: st.ID, Points: 10, RecordedBy: sess.User.ID,
	})
	s.Require().NoError(err)
	entryID := result.Entry.ID
	s.Equal(int64(10), result.Players[0].Points)

	// Step 5: Edit to 15 and move to Blue
	points := int64(15)
	result, err = s.app.LedgerEngine.Edit(s.ctx, ledger.EditInput{ID: entryID, PlayerID: &blue.ID, Points: &points})
	s.Require().NoError(err)
	s.Empty(result.Warnings)
	s.balance(red.ID, 0)
	s.balance(blue.ID, 15)

	// Step 6: Revoke
	_, err = s.app.LedgerEngine.Revoke(s.ctx, entryID)
	s.Require().NoError(err)
	s.balance(blue.ID, 0)

	entries, err := s.app.LedgerQuery.Query(s.ctx, model.LogFilter{})
	s.Require().NoError(err)
	s.Empty(entries)

	drifts, err := s.app.LedgerQuery.Audit(s.ctx)
	s.Require().NoError(err)
	s.Empty(drifts)
}

// Test: station changes reach a connected viewer through the running hub
func (s *IntegrationSuite) TestStationChangeReachesViewer() {
	st, err := s.app.StationManager.Create(s.ctx, station.CreateInput{Name: "Archery"})
	s.Require().NoError(err)

	client := realtime.NewClient("viewer")
	s.Require().True(s.app.Hub.Register(client))
	s.Require().Eventually(func() bool { return s.app.Hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err = s.app.StationManager.SetStatus(s.ctx, st.ID, "on")
	s.Require().NoError(err)

	select {
	case msg := <-client.Messages():
		s.Contains(string(msg), "event: stations-changed")
	case <-time.After(time.Second):
		s.Fail("no notification received")
	}
}

// Test: concurrent registrations keep the cached balance equal to the ledger
func (s *IntegrationSuite) TestConcurrentRegistrations() {
	_, err := s.app.RosterService.Create(s.ctx, roster.CreateInput{Name: "Red", Number: "07", Class: "A"})
	s.Require().NoError(err)
	st, err := s.app.StationManager.Create(s.ctx, station.CreateInput{Name: "Archery"})
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.app.LedgerEngine.Register(s.ctx, ledger.RegisterInput{PlayerNumber: "07", StationID: st.ID, Points: 2})
			s.NoError(err)
		}()
	}
	wg.Wait()

	player, err := s.app.RosterService.GetByNumber(s.ctx, "07")
	s.Require().NoError(err)
	s.Equal(int64(50), player.Points)

	drifts, err := s.app.LedgerQuery.Audit(s.ctx)
	s.Require().NoError(err)
	s.Empty(drifts)
}

func (s *IntegrationSuite) balance(id model.PlayerID, want int64) {
	player, err := s.app.RosterService.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(want, player.Points)
}
