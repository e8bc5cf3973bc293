package repository

import (
	"context"

	"download-service/internal/domain/post"
	"download-service/internal/domain/profile"
	"download-service/internal/rbac"
)

// ProfileRepository defines profile data access operations
type ProfileRepository interface {
	// GetRole returns an apperrors NotFound error when no profile exists.
	GetRole(ctx context.Context, id string) (rbac.Role, error)
	// Ensure inserts the profile unless one already exists and reports
	// whether this call created it.
	Ensure(ctx context.Context, input profile.EnsureProfileInput) (bool, error)
}

// PostRepository defines post data access operations
type PostRepository interface {
	GetPermission(ctx context.Context, id string) (*post.PermissionRecord, error)
	IncrementDownloadCount(ctx context.Context, id string) (int64, error)
}
