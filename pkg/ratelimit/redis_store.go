package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Request timestamps live in a sorted set scored by unix milliseconds.
// The prune-count-record sequence runs as a single Lua script so the
// admission decision is atomic across concurrent requests.
var recordScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
	return {0, count}
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {1, count + 1}
`)

// RedisStore implements Store on a Redis sorted set per key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Store backed by the given client. All keys are
// namespaced under "ratelimit:".
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int64, error) {
	nowMs := now.UnixMilli()
	cutoff := nowMs - window.Milliseconds()

	reply, err := recordScript.Run(ctx, s.client, []string{s.prefix + key},
		strconv.FormatInt(cutoff, 10),
		strconv.FormatInt(nowMs, 10),
		strconv.Itoa(limit),
		uuid.NewString(),
		strconv.FormatInt(window.Milliseconds(), 10),
	).Result()
	if err != nil {
		return false, 0, err
	}

	vals, ok := reply.([]any)
	if !ok || len(vals) != 2 {
		return false, 0, ErrUnexpectedReply
	}
	allowed, okA := vals[0].(int64)
	count, okC := vals[1].(int64)
	if !okA || !okC {
		return false, 0, ErrUnexpectedReply
	}

	return allowed == 1, count, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
