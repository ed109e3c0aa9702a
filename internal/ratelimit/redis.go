package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps attempt windows in Redis so multiple instances of the
// service share one view of each client's attempts.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. The prefix namespaces limiter keys
// away from other application data.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Take implements Store with an INCR plus PEXPIRE fixed window. The expiry
// is set when the first attempt creates the key, so the window runs from the
// first attempt exactly like the in-process store.
func (s *RedisStore) Take(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	k := s.prefix + ":" + key

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		return 1, time.Now().Add(window), nil
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if ttl < 0 {
		// The key lost its expiry, e.g. a crash between INCR and PEXPIRE.
		// Restart the window rather than leaving the key immortal.
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		ttl = window
	}
	return int(count), time.Now().Add(ttl), nil
}
