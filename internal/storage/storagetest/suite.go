// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
)

// Suite runs backend-independent storage checks. Embed it in a backend suite
// and set NewStorage before the suite runs.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Store storage.Storage
	Ctx   context.Context
	base  time.Time
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Store = s.NewStorage()
	s.Ctx = context.Background()
	s.base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
}

func (s *Suite) player(id, number string) *model.Player {
	p := &model.Player{
		ID:        model.PlayerID(id),
		Name:      "Player " + id,
		Number:    number,
		Class:     "4a",
		CreatedAt: s.base,
		UpdatedAt: s.base,
	}
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))
	return p
}

func (s *Suite) entry(id, playerID, stationID string, points int64, offset time.Duration) *model.PointLogEntry {
	return &model.PointLogEntry{
		ID:          model.PointLogID(id),
		PlayerID:    model.PlayerID(playerID),
		StationID:   model.StationID(stationID),
		Points:      points,
		Timestamp:   s.base.Add(offset),
		Description: "entry " + id,
		RecordedBy:  "user-1",
	}
}

// Player tests

func (s *Suite) TestCreateAndGetPlayer() {
	s.player("p1", "100")

	got, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Player p1", got.Name)
	s.Equal("100", got.Number)
	s.Equal(int64(0), got.Points)

	byNumber, err := s.Store.GetPlayerByNumber(s.Ctx, "100")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), byNumber.ID)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.ErrorIs(err, model.ErrNotFound)

	_, err = s.Store.GetPlayerByNumber(s.Ctx, "999")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestCreatePlayerDuplicateNumber() {
	s.player("p1", "100")
	err := s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p2", Name: "Other", Number: "100"})
	s.ErrorIs(err, model.ErrPlayerNumberTaken)
}

func (s *Suite) TestUpdatePlayerKeepsBalance() {
	s.player("p1", "100")
	s.Require().NoError(s.Store.CreatePointLog(s.Ctx, s.entry("l1", "p1", "s1", 7, 0),
		[]model.BalanceAdjustment{{PlayerID: "p1", Delta: 7, LastStation: "s1"}}))

	err := s.Store.UpdatePlayer(s.Ctx, &model.Player{ID: "p1", Name: "Renamed", Number: "101", Points: 9999})
	s.Require().NoError(err)

	got, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Renamed", got.Name)
	s.Equal(int64(7), got.Points)
	s.Equal(model.StationID("s1"), got.LastStation)

	_, err = s.Store.GetPlayerByNumber(s.Ctx, "100")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.Store.GetPlayerByNumber(s.Ctx, "101")
	s.NoError(err)
}

func (s *Suite) TestUpdatePlayerNotFound() {
	err := s.Store.UpdatePlayer(s.Ctx, &model.Player{ID: "missing", Number: "1"})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletePlayer() {
	s.player("p1", "100")
	s.Require().NoError(s.Store.DeletePlayer(s.Ctx, "p1"))

	_, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.ErrorIs(s.Store.DeletePlayer(s.Ctx, "p1"), model.ErrPlayerNotFound)

	// number is free again
	s.player("p2", "100")
}

func (s *Suite) TestListPlayers() {
	s.player("p1", "100")
	s.player("p2", "200")

	players, err := s.Store.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Len(players, 2)
}

// Station tests

func (s *Suite) TestStationLifecycle() {
	st := &model.Station{ID: "s1", Name: "Archery", Number: "2", MaxPoints: 10, Delay: 30, CreatedAt: s.base}
	s.Require().NoError(s.Store.CreateStation(s.Ctx, st))
	s.Require().NoError(s.Store.CreateStation(s.Ctx, &model.Station{ID: "s2", Name: "Quiz", Number: "1"}))

	got, err := s.Store.GetStation(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal("Archery", got.Name)
	s.Equal(30, got.Delay)
	s.False(got.Status)

	got.Status = true
	s.Require().NoError(s.Store.UpdateStation(s.Ctx, got))
	got, err = s.Store.GetStation(s.Ctx, "s1")
	s.Require().NoError(err)
	s.True(got.Status)

	stations, err := s.Store.ListStations(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(stations, 2)
	s.Equal(model.StationID("s2"), stations[0].ID)

	s.Require().NoError(s.Store.DeleteStation(s.Ctx, "s1"))
	_, err = s.Store.GetStation(s.Ctx, "s1")
	s.ErrorIs(err, model.ErrStationNotFound)
	s.ErrorIs(s.Store.UpdateStation(s.Ctx, &model.Station{ID: "s1"}), model.ErrStationNotFound)
	s.ErrorIs(s.Store.DeleteStation(s.Ctx, "s1"), model.ErrStationNotFound)
}

// Point log tests

func (s *Suite) TestCreatePointLogAppliesAdjustment() {
	s.player("p1", "100")
	e := s.entry("l1", "p1", "s1", 5, 0)
	err := s.Store.CreatePointLog(s.Ctx, e, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 5, LastStation: "s1"}})
	s.Require().NoError(err)

	got, err := s.Store.GetPointLog(s.Ctx, "l1")
	s.Require().NoError(err)
	s.True(storage.SameEntry(e, got))

	p, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(5), p.Points)
	s.Equal(model.StationID("s1"), p.LastStation)
}

func (s *Suite) TestCreatePointLogUnknownPlayerWritesNothing() {
	err := s.Store.CreatePointLog(s.Ctx, s.entry("l1", "ghost", "s1", 5, 0),
		[]model.BalanceAdjustment{{PlayerID: "ghost", Delta: 5}})
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.Store.GetPointLog(s.Ctx, "l1")
	s.ErrorIs(err, model.ErrLogEntryNotFound)
}

func (s *Suite) TestUpdatePointLogMovesBalance() {
	s.player("p1", "100")
	s.player("p2", "200")
	prev := s.entry("l1", "p1", "s1", 5, 0)
	s.Require().NoError(s.Store.CreatePointLog(s.Ctx, prev, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 5}}))

	next := *prev
	next.PlayerID = "p2"
	next.Points = 8
	err := s.Store.UpdatePointLog(s.Ctx, prev, &next, []model.BalanceAdjustment{
		{PlayerID: "p1", Delta: -5},
		{PlayerID: "p2", Delta: 8},
	})
	s.Require().NoError(err)

	p1, _ := s.Store.GetPlayer(s.Ctx, "p1")
	p2, _ := s.Store.GetPlayer(s.Ctx, "p2")
	s.Equal(int64(0), p1.Points)
	s.Equal(int64(8), p2.Points)

	logs, err := s.Store.QueryPointLogs(s.Ctx, model.LogFilter{PlayerID: "p1"})
	s.Require().NoError(err)
	s.Empty(logs)
	logs, err = s.Store.QueryPointLogs(s.Ctx, model.LogFilter{PlayerID: "p2"})
	s.Require().NoError(err)
	s.Len(logs, 1)
}

func (s *Suite) TestUpdatePointLogConflict() {
	s.player("p1", "100")
	prev := s.entry("l1", "p1", "s1", 5, 0)
	s.Require().NoError(s.Store.CreatePointLog(s.Ctx, prev, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 5}}))

	stale := *prev
	stale.Points = 3
	next := *prev
	next.Points = 9
	err := s.Store.UpdatePointLog(s.Ctx, &stale, &next, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 6}})
	s.ErrorIs(err, model.ErrLogEntryConflict)

	p, _ := s.Store.GetPlayer(s.Ctx, "p1")
	s.Equal(int64(5), p.Points)
	got, _ := s.Store.GetPointLog(s.Ctx, "l1")
	s.Equal(int64(5), got.Points)
}

func (s *Suite) TestDeletePointLog() {
	s.player("p1", "100")
	prev := s.entry("l1", "p1", "s1", 5, 0)
	s.Require().NoError(s.Store.CreatePointLog(s.Ctx, prev, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 5}}))

	s.Require().NoError(s.Store.DeletePointLog(s.Ctx, prev, []model.BalanceAdjustment{{PlayerID: "p1", Delta: -5}}))

	_, err := s.Store.GetPointLog(s.Ctx, "l1")
	s.ErrorIs(err, model.ErrLogEntryNotFound)
	p, _ := s.Store.GetPlayer(s.Ctx, "p1")
	s.Equal(int64(0), p.Points)

	s.ErrorIs(s.Store.DeletePointLog(s.Ctx, prev, nil), model.ErrLogEntryNotFound)
}

func (s *Suite) TestDeletePointLogWithoutAdjustment() {
	s.player("p1", "100")
	prev := s.entry("l1", "p1", "s1", 5, 0)
	s.Require().NoError(s.Store.CreatePointLog(s.Ctx, prev, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 5}}))
	s.Require().NoError(s.Store.DeletePlayer(s.Ctx, "p1"))

	s.Require().NoError(s.Store.DeletePointLog(s.Ctx, prev, nil))
	_, err := s.Store.GetPointLog(s.Ctx, "l1")
	s.ErrorIs(err, model.ErrLogEntryNotFound)
}

func (s *Suite) TestQueryPointLogsOrderAndFilter() {
	s.player("p1", "100")
	s.player("p2", "200")
	entries := []*model.PointLogEntry{
		s.entry("a", "p1", "s1", 1, 0),
		s.entry("b", "p1", "s2", 2, time.Minute),
		s.entry("c", "p2", "s1", 3, time.Minute),
		s.entry("d", "p2", "s2", 4, 2*time.Minute),
	}
	for _, e := range entries {
		s.Require().NoError(s.Store.CreatePointLog(s.Ctx, e, []model.BalanceAdjustment{{PlayerID: e.PlayerID, Delta: e.Points}}))
	}

	all, err := s.Store.QueryPointLogs(s.Ctx, model.LogFilter{})
	s.Require().NoError(err)
	s.Equal([]model.PointLogID{"d", "c", "b", "a"}, ids(all))

	again, err := s.Store.QueryPointLogs(s.Ctx, model.LogFilter{})
	s.Require().NoError(err)
	s.Equal(ids(all), ids(again))

	byStation, err := s.Store.QueryPointLogs(s.Ctx, model.LogFilter{StationID: "s1"})
	s.Require().NoError(err)
	s.Equal([]model.PointLogID{"c", "a"}, ids(byStation))

	both, err := s.Store.QueryPointLogs(s.Ctx, model.LogFilter{PlayerID: "p2", StationID: "s2"})
	s.Require().NoError(err)
	s.Equal([]model.PointLogID{"d"}, ids(both))

	none, err := s.Store.QueryPointLogs(s.Ctx, model.LogFilter{PlayerID: "nobody"})
	s.Require().NoError(err)
	s.Empty(none)
}

func ids(entries []*model.PointLogEntry) []model.PointLogID {
	out := make([]model.PointLogID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

// User tests

func (s *Suite) TestUserLifecycle() {
	u := &model.User{ID: "u1", FirstName: "Ann", Username: "ann", PasswordHash: "h", Rank: model.RankAdmin, Code: "ABC123", CreatedAt: s.base}
	s.Require().NoError(s.Store.CreateUser(s.Ctx, u))

	byName, err := s.Store.GetUserByUsername(s.Ctx, "ann")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), byName.ID)

	byCode, err := s.Store.GetUserByCode(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), byCode.ID)

	count, err := s.Store.CountUsersByRank(s.Ctx, model.RankAdmin)
	s.Require().NoError(err)
	s.Equal(1, count)

	byName.Username = "annie"
	byName.Code = "XYZ789"
	s.Require().NoError(s.Store.UpdateUser(s.Ctx, byName))
	_, err = s.Store.GetUserByUsername(s.Ctx, "ann")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.Store.GetUserByCode(s.Ctx, "ABC123")
	s.ErrorIs(err, model.ErrUserNotFound)

	s.Require().NoError(s.Store.DeleteUser(s.Ctx, "u1"))
	_, err = s.Store.GetUser(s.Ctx, "u1")
	s.ErrorIs(err, model.ErrUserNotFound)
	s.ErrorIs(s.Store.DeleteUser(s.Ctx, "u1"), model.ErrUserNotFound)
}

func (s *Suite) TestUserUniqueness() {
	s.Require().NoError(s.Store.CreateUser(s.Ctx, &model.User{ID: "u1", Username: "ann", Code: "C1"}))
	s.ErrorIs(s.Store.CreateUser(s.Ctx, &model.User{ID: "u2", Username: "ann", Code: "C2"}), model.ErrUsernameTaken)
	s.ErrorIs(s.Store.CreateUser(s.Ctx, &model.User{ID: "u3", Username: "bob", Code: "C1"}), model.ErrCodeTaken)
}

func (s *Suite) TestGetUserByEmptyCode() {
	s.Require().NoError(s.Store.CreateUser(s.Ctx, &model.User{ID: "u1", Username: "ann"}))
	_, err := s.Store.GetUserByCode(s.Ctx, "")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Login log tests

func (s *Suite) TestLoginLogsNewestFirst() {
	for i := range 3 {
		err := s.Store.AppendLoginLog(s.Ctx, &model.LoginLogEntry{
			ID:      fmt.Sprintf("ll-%d", i),
			UserID:  "u1",
			Success: i%2 == 0,
			Date:    s.base.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	logs, err := s.Store.ListLoginLogs(s.Ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(logs, 2)
	s.Equal("ll-2", logs[0].ID)
	s.Equal("ll-1", logs[1].ID)
}
