package realtime

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultRelayChannel is the Redis pub/sub channel station notifications travel on
const DefaultRelayChannel = "stscore:events:stations"

// RedisRelay shares station notifications between server instances. Local
// notifications go straight to the local notifier and are published to Redis;
// notifications published by other instances are delivered to the local notifier.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	instanceID string
	local      Notifier
	logger     *slog.Logger

	pubsub *redis.PubSub
	done   chan struct{}
}

// Ensure RedisRelay implements Notifier
var _ Notifier = (*RedisRelay)(nil)

// NewRedisRelay creates a relay. instanceID must be unique per running process.
func NewRedisRelay(client *redis.Client, channel, instanceID string, local Notifier, logger *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{
		client:     client,
		channel:    channel,
		instanceID: instanceID,
		local:      local,
		logger:     logger.With(slog.String("component", "realtime-relay")),
		done:       make(chan struct{}),
	}
}

// Start subscribes to the channel and relays remote notifications until ctx is
// cancelled or Close is called. The subscription is confirmed before Start returns.
func (r *RedisRelay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	r.pubsub = pubsub

	go func() {
		defer close(r.done)
		ch := r.pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = r.pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload == r.instanceID {
					continue
				}
				r.local.NotifyStationsChanged()
			}
		}
	}()

	r.logger.Info("realtime relay subscribed", slog.String("channel", r.channel))
	return nil
}

// NotifyStationsChanged notifies local viewers and publishes to other instances
// in the background.
func (r *RedisRelay) NotifyStationsChanged() {
	r.local.NotifyStationsChanged()
	go func() {
		if err := r.client.Publish(context.Background(), r.channel, r.instanceID).Err(); err != nil {
			r.logger.Warn("failed to publish station notification", slog.Any("error", err))
		}
	}()
}

// Close stops relaying and waits for the subscriber to exit
func (r *RedisRelay) Close() error {
	if r.pubsub == nil {
		return nil
	}
	err := r.pubsub.Close()
	<-r.done
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}
