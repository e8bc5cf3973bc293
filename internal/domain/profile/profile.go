package profile

import (
	"time"

	"download-service/internal/rbac"
)

type Profile struct {
	ID          string
	DisplayName string
	Role        rbac.Role
	CreatedAt   time.Time
}

type EnsureProfileInput struct {
	ID          string
	DisplayName string
}
