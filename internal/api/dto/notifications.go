package dto

import (
	"time"

	"github.com/hugh/teamhub/internal/database/models"
)

type NotificationDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Type      string     `json:"type"`
	Link      string     `json:"link"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewNotificationDTO(n *models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.PublicID.String(),
		Title:     n.Title,
		Content:   n.Content,
		Type:      n.Type,
		Link:      n.Link,
		IsRead:    n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

type InboxDTO struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int64             `json:"unread_count"`
}
