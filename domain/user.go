package domain

import "time"

// Role grants access levels. Admins reach the /api/admin surface.
type Role string

const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// Roles lists every assignable role in display order.
var Roles = []Role{RoleUser, RolePremium, RoleAdmin}

// ParseRole validates a role name.
func ParseRole(value string) (Role, error) {
	return parseEnum("role", value, Roles)
}

// IsUpgrade reports whether moving into r warrants an upgrade notification.
func (r Role) IsUpgrade() bool {
	return r == RolePremium || r == RoleAdmin
}

// User represents an authenticated identity in the platform.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         Role         `json:"role"`
	Preferences  *Preferences `json:"preferences,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// EffectivePreferences returns stored preferences, or the default bundle when none were saved.
func (u *User) EffectivePreferences() Preferences {
	if u == nil || u.Preferences == nil {
		return DefaultPreferences()
	}
	return *u.Preferences
}
