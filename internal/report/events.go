package report

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis channels the gateway forwards to recruiters over SSE.
const (
	ChannelContactOpened   = "EVENT_CONTACT_OPENED"
	ChannelCooldownExpired = "EVENT_COOLDOWN_EXPIRED"
)

// Publisher sends an event payload on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisPublisher publishes over Redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a Publisher using rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.rdb.Publish(ctx, channel, payload).Err()
}
