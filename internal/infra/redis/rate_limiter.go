package redis

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RateLimiter allows at most limit commands per user and command inside each window.
type RateLimiter struct {
	client RedisClient
	limit  int64
	window time.Duration
}

func NewRateLimiter(client RedisClient, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: int64(limit), window: window}
}

// Allow counts one call of command by userID. The counter lives in redis, so the
// budget is shared between bot instances.
func (r *RateLimiter) Allow(ctx context.Context, userID int64, command string) (bool, error) {
	n, err := r.client.IncrWindow(ctx, commandKey(userID, command), r.window)
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return n <= r.limit, nil
}

func commandKey(userID int64, command string) string {
	return fmt.Sprintf("hhbot:rate:%d:%s", userID, strings.TrimPrefix(command, "/"))
}
