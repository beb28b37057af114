package realtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stationscore/internal/testutil"
)

type RelaySuite struct {
	suite.Suite
	mini   *miniredis.Miniredis
	ctx    context.Context
	cancel context.CancelFunc
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.ctx, s.cancel = context.WithCancel(context.Background())
}

func (s *RelaySuite) TearDownTest() {
	s.cancel()
}

func (s *RelaySuite) newRelay(instanceID string, counter *atomic.Int32) *RedisRelay {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })
	local := NotifierFunc(func() { counter.Add(1) })
	relay := NewRedisRelay(client, "", instanceID, local, testutil.NopLogger())
	s.Require().NoError(relay.Start(s.ctx))
	return relay
}

func (s *RelaySuite) TestNotificationReachesOtherInstance() {
	var a, b atomic.Int32
	relayA := s.newRelay("instance-a", &a)
	_ = s.newRelay("instance-b", &b)

	relayA.NotifyStationsChanged()

	s.Eventually(func() bool { return b.Load() == 1 }, time.Second, 5*time.Millisecond)
	// The publishing instance is notified once, directly, and ignores its own echo
	s.Never(func() bool { return a.Load() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
	s.Equal(int32(1), a.Load())
}

func (s *RelaySuite) TestCloseStopsRelaying() {
	var a, b atomic.Int32
	relayA := s.newRelay("instance-a", &a)
	relayB := s.newRelay("instance-b", &b)

	s.Require().NoError(relayB.Close())
	relayA.NotifyStationsChanged()

	s.Never(func() bool { return b.Load() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func (s *RelaySuite) TestStartFailsWithoutRedis() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	defer client.Close()
	s.mini.Close()

	relay := NewRedisRelay(client, "", "x", NotifierFunc(func() {}), testutil.NopLogger())
	s.Error(relay.Start(s.ctx))
	s.NoError(relay.Close())
}
