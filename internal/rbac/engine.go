package rbac

import (
	"fmt"
	"strings"
)

// Checker compares roles against a validated Config
type Checker struct {
	config    Config
	roleIndex map[Role]int
	baseLevel int
}

// New creates a Checker from a validated Config
func New(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := &Checker{config: cfg}
	rc.buildLookups()
	return rc, nil
}

// MustNew creates a Checker and panics on invalid config
func MustNew(cfg Config) *Checker {
	rc, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return rc
}

func (rc *Checker) buildLookups() {
	rc.roleIndex = make(map[Role]int, len(rc.config.Roles))
	for _, rd := range rc.config.Roles {
		rc.roleIndex[rd.Name] = rd.Level
	}
	rc.baseLevel = rc.roleIndex[rc.config.DefaultRole]
}

// Level returns the privilege level of role. Unknown roles get the level of
// the default role, never a sentinel below it.
func (rc *Checker) Level(role Role) int {
	if level, ok := rc.roleIndex[role]; ok {
		return level
	}
	return rc.baseLevel
}

// IsSufficient reports whether caller is at least as privileged as required
func (rc *Checker) IsSufficient(caller, required Role) bool {
	return rc.Level(caller) >= rc.Level(required)
}

// IsKnown reports whether role is part of the hierarchy
func (rc *Checker) IsKnown(role Role) bool {
	_, ok := rc.roleIndex[role]
	return ok
}

// ValidateRole validates a role string against configured roles
func (rc *Checker) ValidateRole(role string) (Role, error) {
	r := Role(normalize(role))
	if rc.IsKnown(r) {
		return r, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidRole, role)
}

// ParseCallerRole maps a stored role to the hierarchy, falling back to the
// least privileged role.
func (rc *Checker) ParseCallerRole(role string) Role {
	if r, err := rc.ValidateRole(role); err == nil {
		return r
	}
	return rc.config.DefaultRole
}

// ParseRequiredRole maps a resource's required role to the hierarchy,
// falling back to the most restrictive role.
func (rc *Checker) ParseRequiredRole(role string) Role {
	if r, err := rc.ValidateRole(role); err == nil {
		return r
	}
	return rc.config.RestrictiveRole
}

// DefaultRole returns the role assumed for unauthenticated callers
func (rc *Checker) DefaultRole() Role {
	return rc.config.DefaultRole
}

func normalize(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
