package scheduler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sweepLockKey = "quotes:expiration_sweep:lock"
	// The lock outlives the task timeout so a sweep is cancelled before it
	// can lose the lock.
	sweepLockTTL = sweepTaskTimeout + 5*time.Minute
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a single-holder redis lock with an expiry.
type Lock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewSweepLock(rdb *redis.Client) *Lock {
	return NewLock(rdb, sweepLockKey, sweepLockTTL)
}

func NewLock(rdb *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{rdb: rdb, key: key, ttl: ttl}
}

// Acquire returns a release token when the lock was taken, or "" when another
// holder owns it.
func (l *Lock) Acquire(ctx context.Context) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (l *Lock) Release(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
