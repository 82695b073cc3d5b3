package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// monthlyKeyTTL keeps rotated month-window counters from accumulating
// forever. Two months is enough headroom for any late Release.
const monthlyKeyTTL = 62 * 24 * time.Hour

// reserveScript performs the conditional increment server-side so the
// check and the increment are one atomic step for concurrent callers.
// ARGV[1] = ceiling, ARGV[2] = TTL in seconds (0 = no expiry).
var reserveScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local ceiling = tonumber(ARGV[1])
if current >= ceiling then
	return 0
end
redis.call('INCR', KEYS[1])
local ttl = tonumber(ARGV[2])
if ttl > 0 then
	redis.call('EXPIRE', KEYS[1], ttl)
end
return 1
`)

// releaseScript decrements without going below zero.
var releaseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 0 then
	return 0
end
return redis.call('DECR', KEYS[1])
`)

// RedisStore is a Redis-backed Store. Atomicity comes from running the
// conditional increment as a single Lua script, so it holds across
// processes, not just goroutines.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a Store backed by the given Redis client.
// Keys are namespaced under "quota:".
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "quota"}
}

func (s *RedisStore) redisKey(key Key) string {
	return fmt.Sprintf("%s:%s:%s:%s", s.prefix, key.UserID, key.Resource, key.Window)
}

func (s *RedisStore) Reserve(ctx context.Context, key Key, ceiling int64) (bool, error) {
	ttl := int64(0)
	if key.Window != lifetimeWindow {
		ttl = int64(monthlyKeyTTL.Seconds())
	}

	res, err := reserveScript.Run(ctx, s.client, []string{s.redisKey(key)}, ceiling, ttl).Int()
	if err != nil {
		return false, errors.Join(ErrStoreFailure, err)
	}
	return res == 1, nil
}

func (s *RedisStore) Release(ctx context.Context, key Key) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.redisKey(key)}).Err(); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context, key Key) (int64, error) {
	n, err := s.client.Get(ctx, s.redisKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return n, nil
}
