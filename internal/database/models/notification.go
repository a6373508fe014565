package models

import "time"

const (
	NotificationTeamInvitation = "team_invitation"
	NotificationStoryCompleted = "story_completed"
	NotificationGeneral        = "general"
)

// Notification is an in-app message shown in the user's inbox.
type Notification struct {
	Base
	RecipientID uint       `gorm:"not null;index" json:"-"`
	SenderID    *uint      `gorm:"index" json:"-"`
	Title       string     `gorm:"not null" json:"title"`
	Content     string     `json:"content"`
	Type        string     `gorm:"index" json:"type"`
	Link        string     `json:"link"`
	ReadAt      *time.Time `gorm:"index" json:"read_at,omitempty"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
