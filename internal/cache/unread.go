// Package cache holds the optional redis cache-aside layer. The forum runs
// fine without redis; every method on a nil cache (or a cache built without
// an address) reports a miss or does nothing.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	unreadKeyPrefix = "notif:unread"
	unreadTTL       = time.Hour
)

// Unread caches per-user unread notification counts.
type Unread struct {
	client *redis.Client
}

// NewUnreadFromEnv connects to REDIS_ADDR when set; otherwise returns a
// cache that always misses.
func NewUnreadFromEnv() *Unread {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return &Unread{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return &Unread{client: client}
}

// NewUnread wraps an existing client. Used by tests.
func NewUnread(client *redis.Client) *Unread {
	return &Unread{client: client}
}

func unreadKey(userID int) string {
	return fmt.Sprintf("%s:%d", unreadKeyPrefix, userID)
}

// Get returns (count, true) on a cache hit.
func (u *Unread) Get(ctx context.Context, userID int) (int64, bool) {
	if u == nil || u.client == nil {
		return 0, false
	}
	val, err := u.client.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		return 0, false
	}
	return val, true
}

// Set backfills the counter after a database read.
func (u *Unread) Set(ctx context.Context, userID int, count int64) {
	if u == nil || u.client == nil {
		return
	}
	_ = u.client.Set(ctx, unreadKey(userID), count, unreadTTL).Err()
}

// Invalidate drops the cached counter. Called on every write that changes
// a user's unread set (new notification, mark-read, mark-all-read); the
// next read rebuilds it from the database.
func (u *Unread) Invalidate(ctx context.Context, userID int) {
	if u == nil || u.client == nil {
		return
	}
	if err := u.client.Del(ctx, unreadKey(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		// Cache failures never surface; the DB remains authoritative.
		return
	}
}
