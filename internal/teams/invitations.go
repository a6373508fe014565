package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/pkg/crypto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const searchLimit = 10

var errAlreadyInvited = NewError(ErrConflict, "An invitation has already been sent to this email")

// Issue invites email to the team with role. When the address belongs to an
// existing account the invitation is linked to it and a notification is
// dispatched after commit; otherwise the token travels out of band.
func (s *Service) Issue(ctx context.Context, actor *models.User, teamID uuid.UUID, email string, role models.Role) (*models.Invitation, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, NewError(ErrInvalidOperation, "Email is required")
	}
	if !role.IsAssignable() {
		return nil, NewError(ErrInvalidOperation, "Invitations can only grant the admin or member role")
	}

	db := s.db.WithContext(ctx)

	// Rights are checked before the quota so a plain member sees Forbidden.
	// Both checks run again under the team lock below.
	pre, err := loadAccess(db, teamID, actor.ID, false)
	if err != nil {
		return nil, err
	}
	if err := checkInviteRights(pre, role); err != nil {
		return nil, err
	}
	team := pre.team
	if err := CheckQuota(ctx, s.guard, QuotaInvitations, team.ID); err != nil {
		return nil, err
	}

	token, err := crypto.GenerateToken(tokenLength)
	if err != nil {
		return nil, err
	}

	inv := models.Invitation{
		InvitedByID: actor.ID,
		Email:       email,
		Token:       token,
		Role:        role,
		Status:      models.InvitationPending,
		ExpiresAt:   s.now().Add(s.inviteTTL),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		acc, err := loadAccess(tx, teamID, actor.ID, true)
		if err != nil {
			return err
		}
		if err := checkInviteRights(acc, role); err != nil {
			return err
		}

		var members int64
		if err := tx.Model(&models.Membership{}).
			Joins("JOIN users ON users.id = memberships.user_id").
			Where("memberships.team_id = ? AND users.email = ?", acc.team.ID, email).
			Count(&members).Error; err != nil {
			return fmt.Errorf("checking membership: %w", err)
		}
		if members > 0 {
			return NewError(ErrConflict, "This user is already a member of the team")
		}

		var pending int64
		if err := tx.Model(&models.Invitation{}).
			Where("team_id = ? AND email = ? AND status = ?", acc.team.ID, email, models.InvitationPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("checking invitations: %w", err)
		}
		if pending > 0 {
			return errAlreadyInvited
		}

		var invitee models.User
		res := tx.Select("id").Where("email = ?", email).Limit(1).Find(&invitee)
		if res.Error != nil {
			return fmt.Errorf("matching account: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			inv.UserID = &invitee.ID
		}

		inv.TeamID = acc.team.ID
		if err := tx.Create(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyInvited
			}
			return fmt.Errorf("creating invitation: %w", err)
		}

		team = acc.team
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv.Team = &team
	inv.InvitedBy = actor

	s.logger.Info("invitation issued", "invitation_id", inv.PublicID, "team_id", teamID, "role", role)

	if inv.UserID != nil {
		if err := s.notifier.InvitationIssued(ctx, &inv); err != nil {
			s.logger.Error("invitation notification failed", "invitation_id", inv.PublicID, "error", err)
		}
	}

	return &inv, nil
}

func checkInviteRights(acc *access, role models.Role) error {
	if !acc.isAdmin() {
		return NewError(ErrForbidden, "Only team admins can invite members")
	}
	if !CanInvite(acc.role(), role) {
		return NewError(ErrForbidden, "Only the team owner can invite admins")
	}
	return nil
}

// loadPending locks and returns a pending invitation. Any other status reads
// as not found.
func loadPending(tx *gorm.DB, invitationID uuid.UUID, scope func(*gorm.DB) *gorm.DB) (*models.Invitation, error) {
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("public_id = ? AND status = ?", invitationID, models.InvitationPending)
	if scope != nil {
		q = scope(q)
	}

	var inv models.Invitation
	res := q.Limit(1).Find(&inv)
	if res.Error != nil {
		return nil, fmt.Errorf("loading invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errInvitationNotFound
	}
	return &inv, nil
}

// transition moves a pending invitation to a terminal status. A concurrent
// transition that got there first reads as not found.
func transition(tx *gorm.DB, inv *models.Invitation, updates map[string]interface{}) error {
	res := tx.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errInvitationNotFound
	}
	return nil
}

func emailMatches(inv *models.Invitation, actor *models.User) bool {
	return strings.EqualFold(inv.Email, NormalizeEmail(actor.Email))
}

// Accept joins actor to the invitation's team with the invited role.
func (s *Service) Accept(ctx context.Context, actor *models.User, invitationID uuid.UUID) (*models.Invitation, error) {
	var inv *models.Invitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = loadPending(tx, invitationID, nil)
		if err != nil {
			return err
		}

		var team models.Team
		res := tx.Where("id = ? AND status <> ?", inv.TeamID, models.TeamStatusDeleted).Limit(1).Find(&team)
		if res.Error != nil {
			return fmt.Errorf("loading team: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errInvitationNotFound
		}

		now := s.now()
		if inv.IsExpired(now) {
			return NewError(ErrExpired, "This invitation has expired")
		}
		if !emailMatches(inv, actor) {
			return NewError(ErrForbidden, "This invitation was not sent to your email address")
		}

		m, err := findMembership(tx, inv.TeamID, actor.ID)
		if err != nil {
			return err
		}
		if m != nil {
			return errAlreadyMember
		}

		if err := transition(tx, inv, map[string]interface{}{
			"status":      models.InvitationAccepted,
			"accepted_at": now,
			"user_id":     actor.ID,
		}); err != nil {
			return err
		}

		membership := models.Membership{TeamID: inv.TeamID, UserID: actor.ID, Role: inv.Role}
		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyMember
			}
			return fmt.Errorf("creating membership: %w", err)
		}

		inv.Status = models.InvitationAccepted
		inv.AcceptedAt = &now
		inv.UserID = &actor.ID
		inv.Team = &team
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invitation accepted", "invitation_id", inv.PublicID, "user_id", actor.PublicID)
	return inv, nil
}

var errAlreadyMember = NewError(ErrConflict, "You are already a member of this team")

// Decline rejects an invitation. Expired offers can still be declined.
func (s *Service) Decline(ctx context.Context, actor *models.User, invitationID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := loadPending(tx, invitationID, nil)
		if err != nil {
			return err
		}
		if !emailMatches(inv, actor) {
			return NewError(ErrForbidden, "This invitation was not sent to your email address")
		}
		return transition(tx, inv, map[string]interface{}{"status": models.InvitationDeclined})
	})
}

// Cancel withdraws a pending invitation on behalf of the team.
func (s *Service) Cancel(ctx context.Context, actor *models.User, teamID, invitationID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := loadAccess(tx, teamID, actor.ID, true)
		if err != nil {
			return err
		}
		if !acc.isAdmin() {
			return NewError(ErrForbidden, "Only team admins can cancel invitations")
		}

		inv, err := loadPending(tx, invitationID, func(q *gorm.DB) *gorm.DB {
			return q.Where("team_id = ?", acc.team.ID)
		})
		if err != nil {
			return err
		}
		return transition(tx, inv, map[string]interface{}{"status": models.InvitationCancelled})
	})
}

// ListPendingForTeam returns the team's pending invitations, newest first.
// Expired ones are included so they can be cancelled.
func (s *Service) ListPendingForTeam(ctx context.Context, actor *models.User, teamID uuid.UUID) ([]models.Invitation, error) {
	db := s.db.WithContext(ctx)
	acc, err := loadAccess(db, teamID, actor.ID, false)
	if err != nil {
		return nil, err
	}
	if !acc.isAdmin() {
		return nil, NewError(ErrForbidden, "Only team admins can view invitations")
	}

	var invs []models.Invitation
	if err := db.Where("team_id = ? AND status = ?", acc.team.ID, models.InvitationPending).
		Preload("InvitedBy").
		Order("created_at DESC, id DESC").
		Find(&invs).Error; err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	return invs, nil
}

// ListPendingForEmail returns pending invitations addressed to email on teams
// that still exist.
func (s *Service) ListPendingForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := s.db.WithContext(ctx).
		Joins("JOIN teams ON teams.id = invitations.team_id").
		Where("invitations.email = ? AND invitations.status = ? AND teams.status <> ?",
			NormalizeEmail(email), models.InvitationPending, models.TeamStatusDeleted).
		Preload("Team").
		Preload("InvitedBy").
		Order("invitations.created_at DESC, invitations.id DESC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	return invs, nil
}

// SearchInvitees finds accounts matching q by name or email that are neither
// members of the team nor already invited.
func (s *Service) SearchInvitees(ctx context.Context, actor *models.User, teamID uuid.UUID, q string) ([]models.User, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < 2 {
		return nil, NewError(ErrInvalidOperation, "Search term must be at least 2 characters")
	}

	db := s.db.WithContext(ctx)
	acc, err := loadAccess(db, teamID, actor.ID, false)
	if err != nil {
		return nil, err
	}
	if !acc.isAdmin() {
		return nil, NewError(ErrForbidden, "Only team admins can invite members")
	}

	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	members := db.Model(&models.Membership{}).Select("user_id").Where("team_id = ?", acc.team.ID)
	invited := db.Model(&models.Invitation{}).Select("email").
		Where("team_id = ? AND status = ?", acc.team.ID, models.InvitationPending)

	var users []models.User
	if err := db.
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern).
		Where("id NOT IN (?)", members).
		Where("email NOT IN (?)", invited).
		Order("name ASC, id ASC").
		Limit(searchLimit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
