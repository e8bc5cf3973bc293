package presets

import "download-service/internal/rbac"

const (
	RoleGuest        rbac.Role = "guest"
	RoleUser         rbac.Role = "user"
	RoleVerifiedUser rbac.Role = "verified_user"
	RoleAdmin        rbac.Role = "admin"
)

// Community returns the role hierarchy of the file-sharing community.
// Guests may only fetch files that are explicitly public; posts without a
// required role are treated as admin-only.
func Community() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: RoleGuest, Level: 0},
			{Name: RoleUser, Level: 1},
			{Name: RoleVerifiedUser, Level: 2},
			{Name: RoleAdmin, Level: 3},
		},
		DefaultRole:     RoleGuest,
		RestrictiveRole: RoleAdmin,
	}
}

// All returns the community roles in ascending privilege order
func All() []rbac.Role {
	return []rbac.Role{RoleGuest, RoleUser, RoleVerifiedUser, RoleAdmin}
}
