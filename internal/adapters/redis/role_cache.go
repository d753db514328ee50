package redis

// Package redis provides Redis-based adapters for the session core.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
)

// RoleCache is a Redis-backed role cache so multiple processes of one
// deployment share resolved roles. TTL bounds staleness from out-of-band
// role changes; role switches invalidate eagerly through Delete.
type RoleCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRoleCache creates a Redis-backed role cache with the default prefix.
func NewRoleCache(client redis.UniversalClient, ttl time.Duration) *RoleCache {
	return NewRoleCacheWithPrefix(client, "role:", ttl)
}

// NewRoleCacheWithPrefix creates a Redis role cache with a custom key prefix.
func NewRoleCacheWithPrefix(client redis.UniversalClient, prefix string, ttl time.Duration) *RoleCache {
	return &RoleCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RoleCache) Get(ctx context.Context, userID string) (domainauth.Role, bool, error) {
	if userID == "" {
		return domainauth.RoleUnknown, false, nil
	}

	val, err := c.client.Get(ctx, c.prefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.RoleUnknown, false, nil
		}
		return domainauth.RoleUnknown, false, fmt.Errorf("redis get: %w", err)
	}

	// A cached "unset" is a legitimate resolution, not a miss.
	return domainauth.ParseRole(val), true, nil
}

func (c *RoleCache) Set(ctx context.Context, userID string, role domainauth.Role) error {
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}
	return c.client.Set(ctx, c.prefix+userID, string(role), c.ttl).Err()
}

func (c *RoleCache) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return nil // Nothing to delete
	}
	return c.client.Del(ctx, c.prefix+userID).Err()
}
