package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/inthon2025/candy-session-go/config"
	redisadapter "github.com/inthon2025/candy-session-go/internal/adapters/redis"
	"github.com/inthon2025/candy-session-go/internal/client"
	"github.com/inthon2025/candy-session-go/internal/guard"
	"github.com/inthon2025/candy-session-go/internal/ports"
	"github.com/inthon2025/candy-session-go/internal/service"
)

// ClientConfig contains configuration for building the request client.
type ClientConfig struct {
	API       config.APIConfig
	Identity  ports.IdentitySource
	Navigator ports.Navigator
	Notifier  ports.Notifier
	Logger    *slog.Logger
}

// BuildClient creates the authenticated request client.
func BuildClient(cfg ClientConfig) (*client.Client, error) {
	httpClient := http.DefaultClient
	if cfg.API.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}

	c, err := client.New(client.Options{
		Identity:  cfg.Identity,
		Navigator: cfg.Navigator,
		Notifier:  cfg.Notifier,
		BaseURL:   cfg.API.BaseURL(),
		HTTP:      httpClient,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}
	return c, nil
}

// ConnectCache establishes a Redis connection for the role cache.
func ConnectCache(cfg config.CacheConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// BuildRoleService creates the role service, backed by Redis when configured
// and an in-process cache otherwise.
func BuildRoleService(cfg config.CacheConfig, identity ports.IdentitySource, api ports.RoleAPI, logger *slog.Logger) (*service.RoleService, error) {
	var cache ports.RoleCache
	if cfg.UseRedis {
		rdb, err := ConnectCache(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect role cache: %w", err)
		}
		cache = redisadapter.NewRoleCache(rdb, cfg.RoleTTL)
	}

	return service.NewRoleService(service.RoleServiceOptions{
		Identity: identity,
		API:      api,
		Cache:    cache,
		Logger:   logger,
	}), nil
}

// Guards bundles one guard per variant, sharing the identity source and role
// service.
type Guards struct {
	Public    *guard.Guard
	Protected *guard.Guard
	Admin     *guard.Guard
	Child     *guard.Guard
}

// BuildGuards creates the four guard variants.
func BuildGuards(identity ports.IdentitySource, roles guard.RoleResolver, logger *slog.Logger) Guards {
	opts := guard.Options{Identity: identity, Roles: roles, Logger: logger}
	return Guards{
		Public:    guard.NewPublicOnly(opts),
		Protected: guard.NewProtected(opts),
		Admin:     guard.NewAdminOnly(opts),
		Child:     guard.NewChildOnly(opts),
	}
}
