package teams

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"gorm.io/gorm"
)

// AssignRole sets the role of another member. Only admin and member can be
// assigned; ownership moves through TransferOwnership.
func (s *Service) AssignRole(ctx context.Context, actor *models.User, teamID, userID uuid.UUID, role models.Role) error {
	if !role.IsAssignable() {
		return NewError(ErrInvalidOperation, "Ownership can only be changed by transferring it")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := loadAccess(tx, teamID, actor.ID, true)
		if err != nil {
			return err
		}
		if !acc.isAdmin() {
			return NewError(ErrForbidden, "Only team admins can change member roles")
		}

		target, m, err := findMember(tx, acc.team.ID, userID)
		if err != nil {
			return err
		}
		if m == nil {
			return errMemberNotFound
		}
		if target.ID == actor.ID {
			return NewError(ErrInvalidOperation, "You cannot change your own role")
		}
		if m.Role == models.RoleOwner || acc.team.IsOwnedBy(target.ID) {
			return NewError(ErrConflict, "Owner role cannot be changed")
		}
		if s.guard.IsProtectedAccount(target.Email) {
			return errProtectedAccount
		}

		return setRole(tx, acc.team.ID, target.ID, role)
	})
	if err != nil {
		return err
	}

	s.logger.Info("member role changed", "team_id", teamID, "user_id", userID, "role", role)
	return nil
}

// RemoveMember detaches another member from the team.
func (s *Service) RemoveMember(ctx context.Context, actor *models.User, teamID, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := loadAccess(tx, teamID, actor.ID, true)
		if err != nil {
			return err
		}
		if !acc.isAdmin() {
			return NewError(ErrForbidden, "Only team admins can remove members")
		}

		target, m, err := findMember(tx, acc.team.ID, userID)
		if err != nil {
			return err
		}
		if m == nil {
			return errMemberNotFound
		}
		if target.ID == actor.ID {
			return NewError(ErrInvalidOperation, "You cannot remove yourself from the team")
		}
		if m.Role == models.RoleOwner || acc.team.IsOwnedBy(target.ID) {
			return NewError(ErrConflict, "Transfer ownership before removing the owner")
		}
		if s.guard.IsProtectedAccount(target.Email) {
			return errProtectedAccount
		}

		if err := tx.Where("team_id = ? AND user_id = ?", acc.team.ID, target.ID).
			Delete(&models.Membership{}).Error; err != nil {
			return fmt.Errorf("removing member: %w", err)
		}
		if err := tx.Model(&models.User{}).
			Where("id = ? AND current_team_id = ?", target.ID, acc.team.ID).
			Update("current_team_id", nil).Error; err != nil {
			return fmt.Errorf("clearing current team: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("member removed", "team_id", teamID, "user_id", userID, "actor_id", actor.PublicID)
	return nil
}

// TransferOwnership hands the team to another member. The previous owner
// stays on as an admin.
func (s *Service) TransferOwnership(ctx context.Context, actor *models.User, teamID, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := loadAccess(tx, teamID, actor.ID, true)
		if err != nil {
			return err
		}
		if !acc.isOwner() {
			return NewError(ErrForbidden, "Only the team owner can transfer ownership")
		}

		target, m, err := findMember(tx, acc.team.ID, userID)
		if err != nil {
			return err
		}
		if m == nil {
			return NewError(ErrInvalidOperation, "The specified user is not a member of this team")
		}
		if target.ID == actor.ID {
			return NewError(ErrInvalidOperation, "You already own this team")
		}

		if err := tx.Model(&acc.team).Update("owner_id", target.ID).Error; err != nil {
			return fmt.Errorf("updating owner: %w", err)
		}
		if err := setRole(tx, acc.team.ID, target.ID, models.RoleOwner); err != nil {
			return err
		}
		return setRole(tx, acc.team.ID, actor.ID, models.RoleAdmin)
	})
	if err != nil {
		return err
	}

	s.logger.Info("ownership transferred", "team_id", teamID, "from", actor.PublicID, "to", userID)
	return nil
}

func setRole(tx *gorm.DB, teamID, userID uint, role models.Role) error {
	if err := tx.Model(&models.Membership{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role).Error; err != nil {
		return fmt.Errorf("setting role: %w", err)
	}
	return nil
}
