// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/ports/adapter"

	"github.com/google/uuid"
)

var _ adapter.Locker = (*RedisLocker)(nil)

// RedisLocker is a SET NX lock shared by every bot instance pointed at the same redis.
type RedisLocker struct {
	client RedisClient
	tries  int
	pause  time.Duration
}

func NewLocker(c RedisClient) *RedisLocker {
	return &RedisLocker{client: c, tries: 5, pause: 50 * time.Millisecond}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < l.tries; i++ {
		ok, err := l.client.SetNX(ctx, key, token, ttl)
		if err == nil && ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.pause):
		}
	}
	return "", domain.ErrBusy
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	return l.client.DelIfEquals(ctx, key, token)
}
