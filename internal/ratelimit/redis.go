package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ CounterStore = (*RedisStore)(nil)

// KEYS[1] = counter key
// ARGV[1] = limit
// ARGV[2] = window in milliseconds
// Returns {count, pttl, taken}
var takeScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if current >= limit then
	local ttl = redis.call('PTTL', KEYS[1])
	return {current, ttl, 0}
end
current = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if current == 1 or ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	ttl = tonumber(ARGV[2])
end
return {current, ttl, 1}
`)

// RedisStore shares counters between server instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Take implements CounterStore.
func (r *RedisStore) Take(ctx context.Context, key string, limit int64, window time.Duration) (Window, error) {
	vals, err := takeScript.Run(ctx, r.client, []string{key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("redis counter take: %w", err)
	}
	if len(vals) != 3 {
		return Window{}, fmt.Errorf("redis counter take: unexpected reply %v", vals)
	}
	return Window{
		Count:   vals[0],
		ResetIn: time.Duration(vals[1]) * time.Millisecond,
		Taken:   vals[2] == 1,
	}, nil
}
