package cache

import (
	"context"
	"time"

	"download-service/internal/rbac"
)

// RoleCache stores the role found for an identity for a short time.
// Get reports a miss with found=false and a nil error.
type RoleCache interface {
	Get(ctx context.Context, identityID string) (role rbac.Role, found bool, err error)
	Set(ctx context.Context, identityID string, role rbac.Role) error
}

const defaultRoleCacheTTL = 30 * time.Second

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultRoleCacheTTL
	}
	return ttl
}
