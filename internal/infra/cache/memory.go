package cache

import (
	"context"
	"sync"
	"time"

	"download-service/internal/rbac"
)

type roleCacheEntry struct {
	role       rbac.Role
	expiryTime time.Time
}

// MemoryRoleCache is the in-process RoleCache used when Redis is not configured.
type MemoryRoleCache struct {
	ttl   time.Duration
	now   func() time.Time
	cache map[string]roleCacheEntry
	mutex sync.RWMutex
}

func NewMemoryRoleCache(ttl time.Duration) *MemoryRoleCache {
	return &MemoryRoleCache{
		ttl:   ttlOrDefault(ttl),
		now:   time.Now,
		cache: make(map[string]roleCacheEntry),
	}
}

func (c *MemoryRoleCache) Get(_ context.Context, identityID string) (rbac.Role, bool, error) {
	c.mutex.RLock()
	entry, found := c.cache[identityID]
	c.mutex.RUnlock()

	if found && c.now().Before(entry.expiryTime) {
		return entry.role, true, nil
	}

	return "", false, nil
}

func (c *MemoryRoleCache) Set(_ context.Context, identityID string, role rbac.Role) error {
	c.mutex.Lock()
	c.cache[identityID] = roleCacheEntry{
		role:       role,
		expiryTime: c.now().Add(c.ttl),
	}
	c.mutex.Unlock()
	return nil
}

// Prune removes expired entries.
func (c *MemoryRoleCache) Prune() {
	now := c.now()
	c.mutex.Lock()
	for key, entry := range c.cache {
		if now.After(entry.expiryTime) {
			delete(c.cache, key)
		}
	}
	c.mutex.Unlock()
}

// StartPruning runs Prune every interval until ctx is done. A non-positive
// interval falls back to the default TTL.
func (c *MemoryRoleCache) StartPruning(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(ttlOrDefault(interval))
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Prune()
			}
		}
	}()
}

func (c *MemoryRoleCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}
