package adapter

import (
	"context"
	"time"
)

// Locker guards work that must not run twice at the same time, such as a notify cycle.
// TryLock returns domain.ErrBusy when the key is already held.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
