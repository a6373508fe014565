package models

import (
	"fmt"
	"time"
)

// Role is the closed set of per-team roles.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole accepts the lowercase wire values only.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsAdminLevel is true for owner and admin.
func (r Role) IsAdminLevel() bool {
	switch r {
	case RoleOwner, RoleAdmin:
		return true
	case RoleMember:
		return false
	}
	return false
}

// IsAssignable reports whether r may be granted through role assignment or
// an invitation. Ownership only moves by transfer.
func (r Role) IsAssignable() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	case RoleOwner:
		return false
	}
	return false
}

// Membership links a user to a team. The composite primary key keeps at most
// one row, and therefore one role, per (team, user).
type Membership struct {
	TeamID    uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"primaryKey;index" json:"-"`
	Role      Role      `gorm:"not null;default:'member'" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

func (Membership) TableName() string {
	return "memberships"
}
