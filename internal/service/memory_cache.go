package service

import (
	"context"
	"sync"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/ports"
)

var _ ports.RoleCache = (*MemoryRoleCache)(nil)

// MemoryRoleCache is the default in-process role cache. It is scoped to the
// process lifetime; deployments that share role state across processes use
// the Redis adapter instead.
type MemoryRoleCache struct {
	mu    sync.RWMutex
	roles map[string]domainauth.Role
}

// NewMemoryRoleCache creates an empty in-process role cache.
func NewMemoryRoleCache() *MemoryRoleCache {
	return &MemoryRoleCache{roles: make(map[string]domainauth.Role)}
}

func (c *MemoryRoleCache) Get(_ context.Context, userID string) (domainauth.Role, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	role, ok := c.roles[userID]
	if !ok {
		return domainauth.RoleUnknown, false, nil
	}
	return role, true, nil
}

func (c *MemoryRoleCache) Set(_ context.Context, userID string, role domainauth.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[userID] = role
	return nil
}

func (c *MemoryRoleCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roles, userID)
	return nil
}
