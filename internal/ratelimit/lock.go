package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// unlockScript deletes the key only while it still holds the caller's token
// so an expired holder cannot release a newer lock.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type mutex struct {
	client redis.Cmdable
	unlock *redis.Script
	ttl    time.Duration
}

func newMutex(client redis.Cmdable, ttl time.Duration) *mutex {
	return &mutex{client: client, unlock: redis.NewScript(unlockScript), ttl: ttl}
}

// acquire returns the holder token, or ok=false while someone else holds key.
func (m *mutex) acquire(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	token := uuid.NewString()
	ok, err := m.client.SetNX(ctx, key, token, m.ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (m *mutex) release(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return nil
	}
	return m.unlock.Run(ctx, m.client, []string{key}, token).Err()
}
