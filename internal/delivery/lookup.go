package delivery

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"download-service/internal/auth"
	"download-service/internal/domain/post"
	"download-service/internal/infra/cache"
	"download-service/internal/logger"
	"download-service/internal/metrics"
	"download-service/internal/rbac"
	"download-service/internal/repository"
	"download-service/pkg/deadline"
	apperrors "download-service/pkg/errors"
)

const (
	dependencyProfileStore = "profile_store"
	dependencyPostStore    = "post_store"
	dependencySigner       = "object_storage"

	msgPostLookupFailed = "could not load post permissions"
)

// DefaultRoleCacheTimeout bounds each role cache read or write. It is kept
// well below the store budget so a stalled cache degrades to a miss.
const DefaultRoleCacheTimeout = 250 * time.Millisecond

// RoleLookup resolves an identity to its role through the profile store.
type RoleLookup struct {
	profiles     repository.ProfileRepository
	cache        cache.RoleCache
	checker      *rbac.Checker
	timeout      time.Duration
	cacheTimeout time.Duration
	logger       *zap.Logger
	metrics      *metrics.DeliveryMetrics
}

// NewRoleLookup builds a RoleLookup; roleCache may be nil.
func NewRoleLookup(profiles repository.ProfileRepository, roleCache cache.RoleCache, checker *rbac.Checker, timeout time.Duration, lg *zap.Logger, m *metrics.DeliveryMetrics) *RoleLookup {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &RoleLookup{
		profiles:     profiles,
		cache:        roleCache,
		checker:      checker,
		timeout:      timeout,
		cacheTimeout: DefaultRoleCacheTimeout,
		logger:       lg,
		metrics:      m,
	}
}

// WithCacheTimeout overrides the per-operation cache budget.
func (l *RoleLookup) WithCacheTimeout(d time.Duration) *RoleLookup {
	if d > 0 {
		l.cacheTimeout = d
	}
	return l
}

// Lookup returns the default role for a nil identity or a missing profile.
// A failing or slow profile store yields a RoleLookupFailed error; cache
// failures and cache timeouts only cost a store query.
func (l *RoleLookup) Lookup(ctx context.Context, identity *auth.Identity) (rbac.Role, error) {
	if identity == nil {
		return l.checker.DefaultRole(), nil
	}

	lg := logger.FromContext(ctx, l.logger)

	if cached, ok := l.cachedRole(ctx, lg, identity.ID); ok {
		return l.checker.ParseCallerRole(string(cached)), nil
	}

	role, err := deadline.Call(ctx, l.timeout, func(ctx context.Context) (rbac.Role, error) {
		return l.profiles.GetRole(ctx, identity.ID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return l.checker.DefaultRole(), nil
		}
		l.metrics.ObserveDependencyError(dependencyProfileStore)
		lg.Error("role lookup failed", zap.Error(err))
		return "", apperrors.RoleLookupFailed(err)
	}

	l.storeRole(ctx, lg, identity.ID, role)
	return l.checker.ParseCallerRole(string(role)), nil
}

func (l *RoleLookup) cachedRole(ctx context.Context, lg *zap.Logger, id string) (rbac.Role, bool) {
	if l.cache == nil {
		return "", false
	}

	role, err := deadline.Call(ctx, l.cacheTimeout, func(ctx context.Context) (rbac.Role, error) {
		cached, found, err := l.cache.Get(ctx, id)
		if err != nil || !found {
			return "", err
		}
		return cached, nil
	})
	if err != nil {
		lg.Warn("role cache read failed", zap.Error(err))
		return "", false
	}
	return role, role != ""
}

func (l *RoleLookup) storeRole(ctx context.Context, lg *zap.Logger, id string, role rbac.Role) {
	if l.cache == nil {
		return
	}

	_, err := deadline.Call(ctx, l.cacheTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.cache.Set(ctx, id, role)
	})
	if err != nil {
		lg.Warn("role cache write failed", zap.Error(err))
	}
}

// ResourceLookup loads the permission record of a post.
type ResourceLookup struct {
	posts   repository.PostRepository
	checker *rbac.Checker
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.DeliveryMetrics
}

func NewResourceLookup(posts repository.PostRepository, checker *rbac.Checker, timeout time.Duration, lg *zap.Logger, m *metrics.DeliveryMetrics) *ResourceLookup {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &ResourceLookup{
		posts:   posts,
		checker: checker,
		timeout: timeout,
		logger:  lg,
		metrics: m,
	}
}

// Lookup returns ResourceNotFound for unknown posts and a DependencyFailure
// when the post store fails or does not answer in time. An unset or unknown
// required role is replaced by the most restrictive role.
func (l *ResourceLookup) Lookup(ctx context.Context, postID string) (*post.PermissionRecord, error) {
	record, err := deadline.Call(ctx, l.timeout, func(ctx context.Context) (*post.PermissionRecord, error) {
		return l.posts.GetPermission(ctx, postID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound()
		}
		l.metrics.ObserveDependencyError(dependencyPostStore)
		logger.FromContext(ctx, l.logger).Error("post permission lookup failed", zap.Error(err))
		return nil, apperrors.DependencyFailure(msgPostLookupFailed, err)
	}

	normalized := *record
	normalized.RequiredRole = l.checker.ParseRequiredRole(string(record.RequiredRole))
	return &normalized, nil
}
