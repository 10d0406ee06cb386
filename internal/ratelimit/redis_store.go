package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript increments the counter, arms the expiry on the first hit of a
// window and returns the count with the remaining TTL in milliseconds.
var hitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RedisStore keeps window counters in Redis so several processes can share a
// budget. The window clock is the Redis server's, not the caller's.
type RedisStore struct {
	rdb    redis.Scripter
	prefix string
}

// NewRedisStore returns a store using rdb. Keys are namespaced under "rl:".
func NewRedisStore(rdb redis.Scripter) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "rl:"}
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration, _ time.Time) (Decision, error) {
	if s.rdb == nil {
		return Decision{}, errors.New("redis client is nil")
	}

	res, err := hitScript.Run(ctx, s.rdb, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit hit %s: %w", key, err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit hit %s: unexpected reply %v", key, res)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	if count > int64(limit) {
		return Decision{Allowed: false, RetryAfter: retryAfterSeconds(ttl)}, nil
	}
	return Decision{Allowed: true}, nil
}
