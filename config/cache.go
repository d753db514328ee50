package config

import "time"

// CacheConfig contains role cache configuration (Redis-based when enabled).
type CacheConfig struct {
	// UseRedis switches the role cache from in-process memory to Redis so
	// multiple processes of one deployment share resolved roles.
	UseRedis bool `env:"CACHE_USE_REDIS" envDefault:"false"`

	// Redis connection settings for the role cache.
	RedisAddr     string `env:"CACHE_REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"CACHE_REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"CACHE_REDIS_DB"       envDefault:"0"`

	// RoleTTL is the TTL for cached role resolutions. Role switches
	// invalidate eagerly; the TTL only bounds staleness from out-of-band
	// role changes.
	RoleTTL time.Duration `env:"CACHE_ROLE_TTL" envDefault:"30m"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.RoleTTL <= 0 {
		c.RoleTTL = 30 * time.Minute
	}
}
