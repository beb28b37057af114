package redis

import (
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
	"github.com/mcoot/stationscore/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		s.storage = NewWithClient(client, DefaultConfig())
		return s.storage
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestBalanceStoredAsCounter() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p1", Number: "1"}))
	e := &model.PointLogEntry{ID: "l1", PlayerID: "p1", StationID: "s1", Points: 12}
	s.Require().NoError(s.Store.CreatePointLog(s.Ctx, e, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 12, LastStation: "s1"}}))

	s.Equal("12", s.mini.HGet(playerStateKey("p1"), fieldPoints))
	s.Equal("s1", s.mini.HGet(playerStateKey("p1"), fieldLastStation))
}

func (s *StorageSuite) TestPointLogIndexesFollowEdits() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p1", Number: "1"}))
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p2", Number: "2"}))
	prev := &model.PointLogEntry{ID: "l1", PlayerID: "p1", StationID: "s1", Points: 3}
	s.Require().NoError(s.Store.CreatePointLog(s.Ctx, prev, nil))

	next := *prev
	next.PlayerID = "p2"
	next.StationID = "s2"
	s.Require().NoError(s.Store.UpdatePointLog(s.Ctx, prev, &next, nil))

	s.False(s.mini.Exists(pointLogsByPlayerKey("p1")))
	s.False(s.mini.Exists(pointLogsByStationKey("s1")))
	members, err := s.mini.ZMembers(pointLogsByStationKey("s2"))
	s.Require().NoError(err)
	s.Equal([]string{"l1"}, members)
}

func (s *StorageSuite) TestCorruptBalanceIsStorageError() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p1", Number: "1"}))
	s.mini.HSet(playerStateKey("p1"), fieldPoints, "not-a-number")

	_, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrStorage)
}

func (s *StorageSuite) TestConnectionFailureIsStorageError() {
	s.mini.Close()

	_, err := s.Store.GetStation(s.Ctx, "s1")
	s.ErrorIs(err, model.ErrStorage)
	err = s.Store.CreatePointLog(s.Ctx, &model.PointLogEntry{ID: "l1"}, nil)
	s.ErrorIs(err, model.ErrStorage)
}

func (s *StorageSuite) TestConcurrentAdjustments() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p1", Number: "1"}))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := &model.PointLogEntry{ID: model.PointLogID(fmt.Sprintf("l%d", i)), PlayerID: "p1", Points: 1}
			s.NoError(s.Store.CreatePointLog(s.Ctx, e, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 1}}))
		}()
	}
	wg.Wait()

	p, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(20), p.Points)
}
