package sched

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/ports/adapter"
)

var _ adapter.Locker = (*LocalLocker)(nil)

// LocalLocker guards keys inside a single process. It is used when no redis
// is configured; the ttl is ignored.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]string)}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", domain.ErrBusy
	}
	token := ulid.Make().String()
	l.held[key] = token
	return token, nil
}

func (l *LocalLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}
