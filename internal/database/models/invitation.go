package models

import "time"

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationDeclined  InvitationStatus = "declined"
	InvitationCancelled InvitationStatus = "cancelled"
)

// Invitation is an offer for an email address to join a team. Rows are never
// deleted. The partial unique index allows a single pending offer per
// (team, email) while keeping the terminal history.
type Invitation struct {
	Base
	TeamID      uint             `gorm:"not null;uniqueIndex:idx_invitations_pending_email,where:status = 'pending'" json:"-"`
	InvitedByID uint             `gorm:"not null;index" json:"-"`
	UserID      *uint            `gorm:"index" json:"-"`
	Email       string           `gorm:"not null;index;uniqueIndex:idx_invitations_pending_email,where:status = 'pending'" json:"email"`
	Token       string           `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Role        Role             `gorm:"not null;default:'member'" json:"role"`
	Status      InvitationStatus `gorm:"not null;default:'pending';index" json:"status"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
	ExpiresAt   time.Time        `gorm:"not null" json:"expires_at"`

	Team      *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	InvitedBy *User `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
}

func (Invitation) TableName() string {
	return "invitations"
}

// IsExpired is derived from the clock; it is never stored.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}
