package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// INCR and PEXPIRE run as one script so concurrent callers on different
// replicas cannot both see a fresh window.
var admitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if count == 1 or ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore shares windows across server replicas.
type RedisStore struct {
	client redis.Scripter
	prefix string
	period time.Duration
	limit  int
	now    Clock
}

func NewRedisStore(client redis.Scripter, prefix string, period time.Duration, limit int) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		period: period,
		limit:  limit,
		now:    time.Now,
	}
}

func (s *RedisStore) Admit(ctx context.Context, key string) (Decision, error) {
	res, err := admitScript.Run(ctx, s.client, []string{s.prefix + key}, s.period.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	return Decision{
		Allowed: count <= s.limit,
		Count:   count,
		Limit:   s.limit,
		ResetAt: s.now().Add(ttl),
	}, nil
}
