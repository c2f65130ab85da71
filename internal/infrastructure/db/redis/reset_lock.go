package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ResetLock implements ports.ResetLocker with SET NX PX and a random owner
// token per holder.
// Key format: reset-lock:<user_id>
type ResetLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetLock returns a lock whose keys expire after ttl so a crashed request
// cannot hold it forever.
func NewResetLock(client *redis.Client, ttl time.Duration) *ResetLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &ResetLock{client: client, ttl: ttl}
}

func (l *ResetLock) Acquire(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(userID), token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("reset lock acquire: %w", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Release is a no-op when the lock expired and another request took it.
func (l *ResetLock) Release(ctx context.Context, userID, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(userID)}, token).Err(); err != nil {
		return fmt.Errorf("reset lock release: %w", err)
	}
	return nil
}

func (l *ResetLock) key(userID string) string {
	return "reset-lock:" + userID
}
