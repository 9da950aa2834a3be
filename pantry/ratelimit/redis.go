// ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is what the store needs to run its counting script.
// *redis.Client and *redis.ClusterClient satisfy it.
type RedisClient = redis.Scripter

// incrWindow increments the window counter and gives it a TTL in the same
// atomic step. A key found without a TTL gets one, so a counter can never
// outlive its window.
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisStore counts requests per key in fixed windows so every instance
// behind a load balancer shares the same budget.
type RedisStore struct {
	client   RedisClient
	prefix   string
	requests int64
	window   time.Duration
	now      func() time.Time
}

// NewRedis allows requests per window per key. prefix namespaces keys.
func NewRedis(client RedisClient, prefix string, requests int, window time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	if window < time.Second {
		window = time.Second
	}
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		requests: int64(requests),
		window:   window,
		now:      time.Now,
	}
}

// Allow implements Store.
func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	slot := s.now().Unix() / int64(s.window/time.Second)
	k := fmt.Sprintf("%s:%s:%d", s.prefix, key, slot)

	n, err := incrWindow.Run(ctx, s.client, []string{k}, strconv.FormatInt(s.window.Milliseconds(), 10)).Int64()
	if err != nil {
		return false, fmt.Errorf("ratelimit: incr %s: %w", k, err)
	}
	return n <= s.requests, nil
}
