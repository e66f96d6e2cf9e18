// ABOUTME: Organization member roles
// ABOUTME: Roles gate writes in the CRUD surface; the gateway treats them as opaque

package store

import "fmt"

// Role represents a member's role within an organization
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// ValidRoles lists all valid roles
var ValidRoles = []Role{
	RoleOwner,
	RoleAdmin,
	RoleViewer,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q (want owner, admin, or viewer)", s)
	}
	return r, nil
}
