package entity

import (
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in Password field
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	AvatarURL string
	Roles     []RoleName
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the user is a member of role.
func (u *User) HasRole(role RoleName) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleStrings returns role names as plain strings, e.g. for token claims.
func (u *User) RoleStrings() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, string(r))
	}
	return out
}
