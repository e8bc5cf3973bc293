package post

import "download-service/internal/rbac"

// PermissionRecord is the access-relevant slice of a post.
// An empty RequiredRole means the post never set one.
type PermissionRecord struct {
	PostID        string
	RequiredRole  rbac.Role
	DownloadCount int64
}
