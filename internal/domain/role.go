package domain

import "strings"

// Role is the authorization role attached to a user account.
type Role string

// Supported roles.
const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// IsValid reports whether r is one of the supported roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a case-insensitive role name into a Role.
// An empty name yields RoleUser.
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	case "user":
		return RoleUser, nil
	default:
		return "", NewValidationError("role", "must be Admin or User", ErrInvalidRole)
	}
}
