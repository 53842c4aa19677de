package idempotency

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Store claims keys for a bounded time. Claim reports false when the key is
// already held.
type Store interface {
	Claim(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

type RedisStore struct {
	client *redis.Client
	script *redis.Script
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{
		client: client,
		script: redis.NewScript(releaseScript),
	}
}

func (s *RedisStore) Claim(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if s == nil || s.client == nil {
		return false, errors.New("idempotency store not configured")
	}
	return s.client.SetNX(ctx, key, token, ttl).Result()
}

// Release deletes key only while it still holds token.
func (s *RedisStore) Release(ctx context.Context, key, token string) error {
	if s == nil || s.client == nil || key == "" || token == "" {
		return nil
	}
	return s.script.Run(ctx, s.client, []string{key}, token).Err()
}

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
