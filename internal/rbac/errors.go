package rbac

import "errors"

var (
	ErrInvalidRole = errors.New("invalid role")
)

const (
	errConfigRolesEmpty               = "rbac config: roles must not be empty"
	errConfigRoleNameEmpty            = "rbac config: role name must not be empty"
	errConfigDuplicateRoleNameFmt     = "rbac config: duplicate role name: %s"
	errConfigDuplicateRoleLevelFmt    = "rbac config: duplicate role level %d (roles %s and %s)"
	errConfigNegativeRoleLevelFmt     = "rbac config: role %s has negative level %d"
	errConfigDefaultRoleUnknownFmt    = "rbac config: default role is not defined: %s"
	errConfigDefaultRoleNotLowestFmt  = "rbac config: default role %s must have the lowest level"
	errConfigRestrictiveUnknownFmt    = "rbac config: restrictive role is not defined: %s"
	errConfigRestrictiveNotHighestFmt = "rbac config: restrictive role %s must have the highest level"
	errMustNewPanicFmt                = "rbac.MustNew: %v"
)
