package enums

import (
	"fmt"
	"strings"
)

// UserRole is the single role a VolunteerLinks account signs in with.
type UserRole string

const (
	UserRoleVolunteer UserRole = "volunteer"
	UserRoleAdmin     UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleVolunteer || r == UserRoleAdmin
}

func (r UserRole) String() string {
	return string(r)
}

// ParseUserRole accepts role names case-insensitively.
func ParseUserRole(value string) (UserRole, error) {
	role := UserRole(strings.ToLower(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid user role %q", value)
	}
	return role, nil
}
