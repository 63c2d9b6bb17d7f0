// Package cache provides the read-through Redis cache for whitelist
// lookups. The database stays the source of truth; the cache only
// absorbs the per-message IsActive lookups the router performs.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relayline/sms-assistant/internal/config"
)

// Whitelist caches is_active flags per phone. A nil *Whitelist (or one
// built without a Redis client) is valid and behaves as a pass-through,
// mirroring how the rate limiter degrades when Redis is absent.
type Whitelist struct {
	rdb *redis.Client
	ttl time.Duration
	pfx string
}

// NewWhitelist returns nil when caching is disabled or no client is
// available, which callers treat as "no cache".
func NewWhitelist(cfg config.WhitelistCacheConfig, rdb *redis.Client) *Whitelist {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return &Whitelist{rdb: rdb, ttl: cfg.TTL, pfx: cfg.Prefix}
}

func (w *Whitelist) key(phone string) string { return w.pfx + ":active:" + phone }

// GetActive returns (value, ok). ok is false on miss, error, or when
// the cache is disabled.
func (w *Whitelist) GetActive(ctx context.Context, phone string) (bool, bool) {
	if w == nil {
		return false, false
	}
	v, err := w.rdb.Get(ctx, w.key(phone)).Result()
	if err != nil {
		return false, false
	}
	return v == "1", true
}

// SetActive stores the flag with the configured TTL. Failures are
// ignored; the next lookup falls through to the database.
func (w *Whitelist) SetActive(ctx context.Context, phone string, active bool) {
	if w == nil {
		return
	}
	v := "0"
	if active {
		v = "1"
	}
	_ = w.rdb.Set(ctx, w.key(phone), v, w.ttl).Err()
}

// Invalidate drops the cached flag after a ledger transition.
func (w *Whitelist) Invalidate(ctx context.Context, phone string) {
	if w == nil {
		return
	}
	_ = w.rdb.Del(ctx, w.key(phone)).Err()
}
