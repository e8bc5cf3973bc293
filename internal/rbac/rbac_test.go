package rbac_test

import (
	"errors"
	"testing"

	"download-service/internal/rbac"
	"download-service/internal/rbac/presets"
)

func newChecker(t *testing.T) *rbac.Checker {
	t.Helper()
	rc, err := rbac.New(presets.Community())
	if err != nil {
		t.Fatalf("failed to create checker: %v", err)
	}
	return rc
}

// ============================================================================
// Role Hierarchy Tests
// ============================================================================

func TestLevel(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		role     rbac.Role
		expected int
	}{
		{presets.RoleGuest, 0},
		{presets.RoleUser, 1},
		{presets.RoleVerifiedUser, 2},
		{presets.RoleAdmin, 3},
		{rbac.Role("moderator"), 0},
		{rbac.Role(""), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := checker.Level(tt.role); got != tt.expected {
				t.Errorf("Level(%q) = %d, expected %d", tt.role, got, tt.expected)
			}
		})
	}
}

func TestIsSufficientMatchesLevelOrder(t *testing.T) {
	checker := newChecker(t)
	roles := append(presets.All(), rbac.Role("unknown"))

	for _, caller := range roles {
		for _, required := range roles {
			expected := checker.Level(caller) >= checker.Level(required)
			if got := checker.IsSufficient(caller, required); got != expected {
				t.Errorf("IsSufficient(%s, %s) = %v, expected %v", caller, required, got, expected)
			}
		}
	}
}

func TestIsSufficient(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name     string
		caller   rbac.Role
		required rbac.Role
		expected bool
	}{
		{"Admin >= Admin", presets.RoleAdmin, presets.RoleAdmin, true},
		{"Admin >= Guest", presets.RoleAdmin, presets.RoleGuest, true},
		{"Verified >= User", presets.RoleVerifiedUser, presets.RoleUser, true},
		{"User < Verified", presets.RoleUser, presets.RoleVerifiedUser, false},
		{"Guest >= Guest", presets.RoleGuest, presets.RoleGuest, true},
		{"Guest < User", presets.RoleGuest, presets.RoleUser, false},
		{"Unknown caller acts as guest", rbac.Role("superuser"), presets.RoleUser, false},
		{"Unknown caller still reaches guest files", rbac.Role("superuser"), presets.RoleGuest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsSufficient(tt.caller, tt.required); got != tt.expected {
				t.Errorf("IsSufficient(%s, %s) = %v, expected %v", tt.caller, tt.required, got, tt.expected)
			}
		})
	}
}

func TestValidateRole(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name      string
		role      string
		expected  rbac.Role
		shouldErr bool
	}{
		{"Valid admin", "admin", presets.RoleAdmin, false},
		{"Valid verified user", "verified_user", presets.RoleVerifiedUser, false},
		{"Mixed case and spaces", " User ", presets.RoleUser, false},
		{"Invalid role", "superuser", "", true},
		{"Empty role", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := checker.ValidateRole(tt.role)
			if tt.shouldErr {
				if !errors.Is(err, rbac.ErrInvalidRole) {
					t.Errorf("ValidateRole(%s) error should wrap ErrInvalidRole, got: %v", tt.role, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateRole(%s) unexpected error: %v", tt.role, err)
			}
			if result != tt.expected {
				t.Errorf("ValidateRole(%s) = %s, expected %s", tt.role, result, tt.expected)
			}
		})
	}
}

func TestParseRolesFailClosed(t *testing.T) {
	checker := newChecker(t)

	if got := checker.ParseCallerRole("nonsense"); got != presets.RoleGuest {
		t.Errorf("unknown caller role should map to guest, got %s", got)
	}
	if got := checker.ParseCallerRole("verified_user"); got != presets.RoleVerifiedUser {
		t.Errorf("expected verified_user, got %s", got)
	}
	if got := checker.ParseRequiredRole(""); got != presets.RoleAdmin {
		t.Errorf("unset required role should map to admin, got %s", got)
	}
	if got := checker.ParseRequiredRole("nonsense"); got != presets.RoleAdmin {
		t.Errorf("unknown required role should map to admin, got %s", got)
	}
	if got := checker.ParseRequiredRole("guest"); got != presets.RoleGuest {
		t.Errorf("expected guest, got %s", got)
	}
}

// ============================================================================
// Config Validation Tests
// ============================================================================

func TestValidatePreset(t *testing.T) {
	cfg := presets.Community()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Community preset should be valid: %v", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	base := func() rbac.Config {
		return rbac.Config{
			Roles:           []rbac.RoleDefinition{{Name: "low", Level: 0}, {Name: "high", Level: 1}},
			DefaultRole:     "low",
			RestrictiveRole: "high",
		}
	}

	tests := []struct {
		name   string
		mutate func(*rbac.Config)
	}{
		{"empty roles", func(c *rbac.Config) { c.Roles = nil }},
		{"empty role name", func(c *rbac.Config) { c.Roles[0].Name = "" }},
		{"duplicate name", func(c *rbac.Config) { c.Roles[1].Name = "low" }},
		{"duplicate level", func(c *rbac.Config) { c.Roles[1].Level = 0 }},
		{"negative level", func(c *rbac.Config) { c.Roles[0].Level = -1 }},
		{"unknown default", func(c *rbac.Config) { c.DefaultRole = "missing" }},
		{"default not lowest", func(c *rbac.Config) { c.DefaultRole = "high" }},
		{"unknown restrictive", func(c *rbac.Config) { c.RestrictiveRole = "missing" }},
		{"restrictive not highest", func(c *rbac.Config) { c.RestrictiveRole = "low" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestMustNewPanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("MustNew should panic on invalid config")
		}
	}()
	rbac.MustNew(rbac.Config{})
}
