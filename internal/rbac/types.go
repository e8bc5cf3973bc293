package rbac

// Role represents a caller's privilege tier (hierarchical)
type Role string

// RoleDefinition defines a role and its privilege level
type RoleDefinition struct {
	Name  Role
	Level int
}

func (r Role) String() string {
	return string(r)
}
