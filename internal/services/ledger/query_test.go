package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage/memory"
)

type QuerySuite struct {
	suite.Suite
	storage *memory.Storage
	query   *QueryService
	ctx     context.Context
	base    time.Time
}

func TestQuerySuite(t *testing.T) {
	suite.Run(t, new(QuerySuite))
}

func (s *QuerySuite) SetupTest() {
	s.storage = memory.New()
	s.query = NewQueryService(s.storage)
	s.ctx = context.Background()
	s.base = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, id := range []model.PlayerID{"p1", "p2"} {
		s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: id, Number: string(id)}))
	}
}

func (s *QuerySuite) add(id, player, station string, offset time.Duration) {
	e := &model.PointLogEntry{
		ID:        model.PointLogID(id),
		PlayerID:  model.PlayerID(player),
		StationID: model.StationID(station),
		Points:    1,
		Timestamp: s.base.Add(offset),
	}
	s.Require().NoError(s.storage.CreatePointLog(s.ctx, e, []model.BalanceAdjustment{{PlayerID: e.PlayerID, Delta: 1}}))
}

func (s *QuerySuite) TestEmptyLedgerReturnsEmptySlice() {
	entries, err := s.query.Query(s.ctx, model.LogFilter{})
	s.Require().NoError(err)
	s.NotNil(entries)
	s.Empty(entries)
}

func (s *QuerySuite) TestNewestFirstWithTieBreak() {
	s.add("a", "p1", "s1", 0)
	s.add("c", "p1", "s1", time.Minute)
	s.add("b", "p1", "s1", time.Minute)
	s.add("d", "p2", "s1", -time.Minute)

	entries, err := s.query.Query(s.ctx, model.LogFilter{})
	s.Require().NoError(err)
	s.Equal([]model.PointLogID{"c", "b", "a", "d"}, entryIDs(entries))
}

func (s *QuerySuite) TestQueryIsRepeatable() {
	for i, id := range []string{"e1", "e2", "e3", "e4", "e5"} {
		s.add(id, "p1", "s1", time.Duration(i%2)*time.Second)
	}

	first, err := s.query.Query(s.ctx, model.LogFilter{PlayerID: "p1"})
	s.Require().NoError(err)
	second, err := s.query.Query(s.ctx, model.LogFilter{PlayerID: "p1"})
	s.Require().NoError(err)
	s.Equal(entryIDs(first), entryIDs(second))
}

func (s *QuerySuite) TestFiltersCombineWithAnd() {
	s.add("a", "p1", "s1", 0)
	s.add("b", "p1", "s2", time.Second)
	s.add("c", "p2", "s1", 2*time.Second)

	byPlayer, err := s.query.Query(s.ctx, model.LogFilter{PlayerID: "p1"})
	s.Require().NoError(err)
	s.Equal([]model.PointLogID{"b", "a"}, entryIDs(byPlayer))

	byStation, err := s.query.Query(s.ctx, model.LogFilter{StationID: "s1"})
	s.Require().NoError(err)
	s.Equal([]model.PointLogID{"c", "a"}, entryIDs(byStation))

	both, err := s.query.Query(s.ctx, model.LogFilter{PlayerID: "p1", StationID: "s1"})
	s.Require().NoError(err)
	s.Equal([]model.PointLogID{"a"}, entryIDs(both))
}

func (s *QuerySuite) TestPlayerTotal() {
	s.add("a", "p1", "s1", 0)
	s.add("b", "p1", "s2", time.Second)

	total, err := s.query.PlayerTotal(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(2), total)
}

func (s *QuerySuite) TestAuditConsistent() {
	s.add("a", "p1", "s1", 0)
	s.add("b", "p2", "s1", time.Second)

	drifts, err := s.query.Audit(s.ctx)
	s.Require().NoError(err)
	s.NotNil(drifts)
	s.Empty(drifts)
}

func (s *QuerySuite) TestAuditReportsDrift() {
	s.add("a", "p1", "s1", 0)
	// An entry written without its balance change
	s.Require().NoError(s.storage.CreatePointLog(s.ctx, &model.PointLogEntry{
		ID: "b", PlayerID: "p2", StationID: "s1", Points: 7, Timestamp: s.base,
	}, nil))

	drifts, err := s.query.Audit(s.ctx)
	s.Require().NoError(err)
	s.Equal([]BalanceDrift{{PlayerID: "p2", Number: "p2", Cached: 0, Ledger: 7}}, drifts)
}

func entryIDs(entries []*model.PointLogEntry) []model.PointLogID {
	ids := make([]model.PointLogID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
