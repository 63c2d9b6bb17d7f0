package config

import (
	"time"
)

// WhitelistCacheConfig defines settings for the read-through whitelist
// cache.  When Enabled is false or no Redis client is configured, every
// IsActive lookup goes straight to the database.  The store remains the
// source of truth; entries are invalidated on every ledger transition,
// so the TTL only bounds staleness after a missed invalidation.
type WhitelistCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadWhitelistCacheConfig reads environment variables to build a
// WhitelistCacheConfig.  Defaults are used when variables are not set.
func LoadWhitelistCacheConfig() WhitelistCacheConfig {
	return WhitelistCacheConfig{
		Enabled: envBool("WHITELIST_CACHE_ENABLED", true),
		TTL:     envDur("WHITELIST_CACHE_TTL", 5*time.Minute),
		Prefix:  envStr("WHITELIST_CACHE_PREFIX", "wl"),
	}
}
