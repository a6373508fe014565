package teams

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"gorm.io/gorm"
)

// DefaultInvitationTTL is how long an issued invitation can be accepted.
const DefaultInvitationTTL = 7 * 24 * time.Hour

const tokenLength = 64

type Options struct {
	Guard         Guard
	Notifier      Notifier
	InvitationTTL time.Duration
	Now           func() time.Time
}

// Service owns teams, memberships and invitations. Every mutation checks the
// actor's standing inside the same transaction that applies the change.
type Service struct {
	db        *gorm.DB
	logger    *slog.Logger
	guard     Guard
	notifier  Notifier
	inviteTTL time.Duration
	now       func() time.Time
}

func NewService(db *gorm.DB, logger *slog.Logger, opts Options) *Service {
	s := &Service{
		db:        db,
		logger:    logger,
		guard:     opts.Guard,
		notifier:  opts.Notifier,
		inviteTTL: opts.InvitationTTL,
		now:       opts.Now,
	}
	if s.guard == nil {
		s.guard = NopGuard{}
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.inviteTTL <= 0 {
		s.inviteTTL = DefaultInvitationTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// IsOwner reports whether userID owns the team.
func (s *Service) IsOwner(ctx context.Context, userID uint, teamID uuid.UUID) (bool, error) {
	acc, err := loadAccess(s.db.WithContext(ctx), teamID, userID, false)
	if err != nil {
		return false, err
	}
	return acc.isOwner(), nil
}

// IsAdmin reports whether userID holds an admin-level role on the team.
func (s *Service) IsAdmin(ctx context.Context, userID uint, teamID uuid.UUID) (bool, error) {
	acc, err := loadAccess(s.db.WithContext(ctx), teamID, userID, false)
	if err != nil {
		return false, err
	}
	return acc.isAdmin(), nil
}

// NormalizeEmail trims and lowercases an address for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoleOf returns userID's role on the team, or "" when not a member.
func (s *Service) RoleOf(ctx context.Context, userID uint, teamID uuid.UUID) (models.Role, error) {
	acc, err := loadAccess(s.db.WithContext(ctx), teamID, userID, false)
	if err != nil {
		return "", err
	}
	return acc.role(), nil
}
