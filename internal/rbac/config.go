package rbac

import "fmt"

// Config holds the role hierarchy and its fail-closed defaults
type Config struct {
	Roles []RoleDefinition

	// DefaultRole is assigned to callers whose role cannot be resolved.
	DefaultRole Role

	// RestrictiveRole is required by resources that leave their role unset.
	RestrictiveRole Role
}

// Validate checks internal consistency of the Config
func (c *Config) Validate() error {
	if len(c.Roles) == 0 {
		return fmt.Errorf(errConfigRolesEmpty)
	}

	roleNames := make(map[Role]int, len(c.Roles))
	roleLevels := make(map[int]Role, len(c.Roles))
	minLevel, maxLevel := c.Roles[0].Level, c.Roles[0].Level
	for _, rd := range c.Roles {
		if rd.Name == "" {
			return fmt.Errorf(errConfigRoleNameEmpty)
		}
		if rd.Level < 0 {
			return fmt.Errorf(errConfigNegativeRoleLevelFmt, rd.Name, rd.Level)
		}
		if _, dup := roleNames[rd.Name]; dup {
			return fmt.Errorf(errConfigDuplicateRoleNameFmt, rd.Name)
		}
		if existing, dup := roleLevels[rd.Level]; dup {
			return fmt.Errorf(errConfigDuplicateRoleLevelFmt, rd.Level, existing, rd.Name)
		}
		roleNames[rd.Name] = rd.Level
		roleLevels[rd.Level] = rd.Name
		minLevel = min(minLevel, rd.Level)
		maxLevel = max(maxLevel, rd.Level)
	}

	defaultLevel, ok := roleNames[c.DefaultRole]
	if !ok {
		return fmt.Errorf(errConfigDefaultRoleUnknownFmt, c.DefaultRole)
	}
	if defaultLevel != minLevel {
		return fmt.Errorf(errConfigDefaultRoleNotLowestFmt, c.DefaultRole)
	}

	restrictiveLevel, ok := roleNames[c.RestrictiveRole]
	if !ok {
		return fmt.Errorf(errConfigRestrictiveUnknownFmt, c.RestrictiveRole)
	}
	if restrictiveLevel != maxLevel {
		return fmt.Errorf(errConfigRestrictiveNotHighestFmt, c.RestrictiveRole)
	}

	return nil
}
