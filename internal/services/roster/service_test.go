package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stationscore/internal/dependencies/mocks"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage/memory"
	"github.com/mcoot/stationscore/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	clock := mocks.NewMockClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	clock.Tick(time.Second)
	s.service = NewService(s.storage, clock, mocks.NewMockIDs("player"), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) create(name, number string) *model.Player {
	p, err := s.service.Create(s.ctx, CreateInput{Name: name, Number: number, Class: "A"})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) TestCreate() {
	p := s.create(" Red Team ", " 07 ")

	s.Equal(model.PlayerID("player-0001"), p.ID)
	s.Equal("Red Team", p.Name)
	s.Equal("07", p.Number)
	s.Equal(int64(0), p.Points)

	got, err := s.service.GetByNumber(s.ctx, "07")
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
}

func (s *ServiceSuite) TestCreateRequiresFields() {
	cases := []CreateInput{
		{Number: "1", Class: "A"},
		{Name: "x", Class: "A"},
		{Name: "x", Number: "1", Class: "  "},
	}
	for _, in := range cases {
		_, err := s.service.Create(s.ctx, in)
		s.ErrorIs(err, model.ErrInvalidInput)
	}
}

func (s *ServiceSuite) TestCreateDuplicateNumber() {
	s.create("Red", "07")
	_, err := s.service.Create(s.ctx, CreateInput{Name: "Blue", Number: "07", Class: "B"})
	s.ErrorIs(err, model.ErrPlayerNumberTaken)
	s.ErrorIs(err, model.ErrConflict)
}

func (s *ServiceSuite) TestListNewestFirst() {
	first := s.create("Red", "01")
	second := s.create("Blue", "02")

	players, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(second.ID, players[0].ID)
	s.Equal(first.ID, players[1].ID)
}

func (s *ServiceSuite) TestListEmptyIsNotNil() {
	players, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.NotNil(players)
	s.Empty(players)
}

func (s *ServiceSuite) TestUpdateKeepsBalance() {
	p := s.create("Red", "07")
	s.Require().NoError(s.storage.CreatePointLog(s.ctx,
		&model.PointLogEntry{ID: "l1", PlayerID: p.ID, StationID: "s1", Points: 15},
		[]model.BalanceAdjustment{{PlayerID: p.ID, Delta: 15, LastStation: "s1"}},
	))

	name := "Crimson"
	number := "70"
	updated, err := s.service.Update(s.ctx, p.ID, UpdateInput{Name: &name, Number: &number})
	s.Require().NoError(err)
	s.Equal("Crimson", updated.Name)
	s.Equal("70", updated.Number)
	s.Equal("A", updated.Class)
	s.Equal(int64(15), updated.Points)

	_, err = s.service.GetByNumber(s.ctx, "07")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestUpdateRejectsEmptyField() {
	p := s.create("Red", "07")
	empty := ""
	_, err := s.service.Update(s.ctx, p.ID, UpdateInput{Class: &empty})
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ServiceSuite) TestUpdateNumberTaken() {
	s.create("Red", "07")
	blue := s.create("Blue", "08")
	taken := "07"
	_, err := s.service.Update(s.ctx, blue.ID, UpdateInput{Number: &taken})
	s.ErrorIs(err, model.ErrPlayerNumberTaken)
}

func (s *ServiceSuite) TestUpdateNotFound() {
	_, err := s.service.Update(s.ctx, "missing", UpdateInput{})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestDeleteLeavesLogEntries() {
	p := s.create("Red", "07")
	s.Require().NoError(s.storage.CreatePointLog(s.ctx,
		&model.PointLogEntry{ID: "l1", PlayerID: p.ID, StationID: "s1", Points: 5},
		[]model.BalanceAdjustment{{PlayerID: p.ID, Delta: 5}},
	))

	s.Require().NoError(s.service.Delete(s.ctx, p.ID))

	_, err := s.service.Get(s.ctx, p.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	entry, err := s.storage.GetPointLog(s.ctx, "l1")
	s.Require().NoError(err)
	s.Equal(p.ID, entry.PlayerID)

	s.ErrorIs(s.service.Delete(s.ctx, p.ID), model.ErrPlayerNotFound)
}
