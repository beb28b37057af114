package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
	"github.com/mcoot/stationscore/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage { return New() }
	suite.Run(t, s)
}

func (s *StorageSuite) TestReturnedRecordsAreCopies() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p1", Number: "1"}))

	p, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	p.Points = 500

	again, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(0), again.Points)
}

func (s *StorageSuite) TestConcurrentAdjustments() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p1", Number: "1"}))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := &model.PointLogEntry{ID: model.PointLogID(fmt.Sprintf("l%d", i)), PlayerID: "p1", Points: 2}
			_ = s.Store.CreatePointLog(s.Ctx, e, []model.BalanceAdjustment{{PlayerID: "p1", Delta: 2}})
		}()
	}
	wg.Wait()

	p, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(100), p.Points)
}
