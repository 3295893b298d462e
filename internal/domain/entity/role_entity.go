package entity

import "time"

// RoleName is one of the fixed authorization roles.
type RoleName string

const (
	RoleUser  RoleName = "ROLE_USER"
	RoleAdmin RoleName = "ROLE_ADMIN"
)

// AllRoles lists the closed role set seeded on startup.
func AllRoles() []RoleName {
	return []RoleName{RoleUser, RoleAdmin}
}

// Valid reports whether r belongs to the closed role set.
func (r RoleName) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Role represents an authorization role
// Many-to-many with User via user_roles
type Role struct {
	ID        int64
	Name      RoleName
	CreatedAt time.Time
	UpdatedAt time.Time
}
