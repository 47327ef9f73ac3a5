// Package cache keeps event registration counts in Redis for the public
// count endpoint, which event pages poll to render remaining capacity.
// The cache is advisory: the ledger never consults it for admission
// decisions, so a stale entry can only mislead a display, never oversell
// a seat.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	id "campuspass/pkg/domain"
)

const (
	countKeyPrefix = "regcount:event:"
	countTTL       = 30 * time.Second
)

// CountCache caches per-event registration counts. A nil *CountCache is
// valid and disables caching, so callers need no nil checks when Redis is
// not configured.
type CountCache struct {
	client *redis.Client
}

func NewCountCache(client *redis.Client) *CountCache {
	if client == nil {
		return nil
	}
	return &CountCache{client: client}
}

// Get returns the cached count and whether it was present. Errors degrade
// to a miss; the caller falls back to the store.
func (c *CountCache) Get(ctx context.Context, eventID id.EventID) (int, bool) {
	if c == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, countKeyPrefix+eventID.String()).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with a short TTL.
func (c *CountCache) Set(ctx context.Context, eventID id.EventID, count int) {
	if c == nil {
		return
	}
	_ = c.client.Set(ctx, countKeyPrefix+eventID.String(), fmt.Sprintf("%d", count), countTTL).Err()
}

// Invalidate drops the cached count after a successful registration so the
// next read reflects the new seat total immediately.
func (c *CountCache) Invalidate(ctx context.Context, eventID id.EventID) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, countKeyPrefix+eventID.String()).Err()
}
