package cache

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = goerr.New("cache miss")

// Cache is the keyed TTL store used for presence records, pending-gift
// indexes, inbox lists and shake cooldown markers. The production
// implementation is Redis; tests substitute an in-memory fake.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)

	ZAdd(ctx context.Context, key, member string, score float64) error
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRem(ctx context.Context, key, member string) error
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error

	LPush(ctx context.Context, key, value string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Message is a single pub/sub delivery.
type Message struct {
	Channel string
	Payload string
}

// Bus is the named-channel publish primitive. Delivery is at-most-once
// with no persistence; a publish with no subscriber is silently lost.
type Bus interface {
	Publish(ctx context.Context, channel, payload string) error
	// Subscribe returns a receive channel for the given channels and a
	// close function releasing the subscription.
	Subscribe(ctx context.Context, channels ...string) (<-chan Message, func(), error)
}
