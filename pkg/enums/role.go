package enums

import (
	"fmt"
	"strings"
)

// Role is the access level assigned to a user account.
type Role string

const (
	RoleUser     Role = "USER"
	RoleSubAdmin Role = "SUB_ADMIN"
	RoleAdmin    Role = "ADMIN"
)

var validRoles = []Role{
	RoleUser,
	RoleSubAdmin,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	normalized := Role(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validRoles {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
