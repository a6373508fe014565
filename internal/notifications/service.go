package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("notification not found")

// InboxLimit caps how many notifications one listing returns.
const InboxLimit = 20

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

type CreateInput struct {
	RecipientID uint
	SenderID    *uint
	Title       string
	Content     string
	Type        string
	Link        string
}

// Inbox is the latest notifications of a user plus the unread total.
type Inbox struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Notification, error) {
	n := models.Notification{
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Title:       in.Title,
		Content:     in.Content,
		Type:        in.Type,
		Link:        in.Link,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	return &n, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) (*Inbox, error) {
	db := s.db.WithContext(ctx)

	inbox := &Inbox{Notifications: []models.Notification{}}
	if err := db.Where("recipient_id = ?", userID).
		Preload("Sender").
		Order("created_at DESC, id DESC").
		Limit(InboxLimit).
		Find(&inbox.Notifications).Error; err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	if err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&inbox.UnreadCount).Error; err != nil {
		return nil, fmt.Errorf("counting unread: %w", err)
	}

	return inbox, nil
}

// MarkRead marks one of the user's notifications as read. Notifications of
// other users read as not found.
func (s *Service) MarkRead(ctx context.Context, userID uint, id uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var n models.Notification
	if err := db.Where("public_id = ? AND recipient_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("loading notification: %w", err)
	}
	if n.IsRead() {
		return nil
	}

	if err := db.Model(&n).Update("read_at", time.Now()).Error; err != nil {
		return fmt.Errorf("marking read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user and returns how
// many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	if res.Error != nil {
		return 0, fmt.Errorf("marking all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
