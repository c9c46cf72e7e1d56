package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/limcoins/user-service/internal/core/domain"
)

const (
	defaultLockTTL   = 30 * time.Second
	lockRetryBackoff = 25 * time.Millisecond
	releaseTimeout   = 2 * time.Second
)

// releaseScript deletes the lock only while it still carries our token, so an
// expired lock that another workflow re-acquired is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// UserLocker implements ports.UserLocker with one Redis key per user.
// Key format: lock:user:<user_id>
type UserLocker struct {
	client  *redis.Client
	ttl     time.Duration
	maxWait time.Duration
	log     zerolog.Logger
}

// NewUserLocker creates a UserLocker. ttl bounds how long a crashed holder can
// keep a user locked and must exceed the longest workflow, remote call included.
func NewUserLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *UserLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &UserLocker{client: client, ttl: ttl, maxWait: ttl, log: log}
}

// Lock polls SET NX until the key is free. It gives up with domain.ErrUserBusy
// when ctx is done or after waiting longer than the lock TTL.
func (l *UserLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := lockKey(userID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrUserBusy, ctxErr)
			}
			return nil, fmt.Errorf("acquire user lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		if time.Now().After(deadline) {
			return nil, domain.ErrUserBusy
		}

		t := time.NewTimer(lockRetryBackoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("%w: %v", domain.ErrUserBusy, ctx.Err())
		case <-t.C:
		}
	}
}

func (l *UserLocker) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				// The TTL frees the key eventually.
				l.log.Warn().Err(err).Str("key", key).Msg("failed to release user lock")
			}
		})
	}
}

func lockKey(userID string) string {
	return "lock:user:" + userID
}
