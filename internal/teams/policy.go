package teams

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IsOwner reports whether m is the owner membership of team. Both the role
// and the team's owner_id must agree.
func IsOwner(team *models.Team, m *models.Membership) bool {
	return m != nil && m.TeamID == team.ID && m.Role == models.RoleOwner && team.IsOwnedBy(m.UserID)
}

// IsAdmin reports whether m grants admin-level rights. Owners qualify.
func IsAdmin(m *models.Membership) bool {
	return m != nil && m.Role.IsAdminLevel()
}

// CanInvite reports whether a member holding inviter may issue an invitation
// granting role. Admins invite members only; admin invitations need the owner.
func CanInvite(inviter, role models.Role) bool {
	switch inviter {
	case models.RoleOwner:
		return role.IsAssignable()
	case models.RoleAdmin:
		return role == models.RoleMember
	case models.RoleMember:
		return false
	}
	return false
}

// access is one user's standing on one team as read by the current
// transaction.
type access struct {
	team       models.Team
	membership *models.Membership
}

func (a *access) isMember() bool { return a.membership != nil }
func (a *access) isOwner() bool  { return IsOwner(&a.team, a.membership) }
func (a *access) isAdmin() bool  { return IsAdmin(a.membership) }

func (a *access) role() models.Role {
	if a.membership == nil {
		return ""
	}
	return a.membership.Role
}

// loadAccess resolves a non-deleted team by public id together with the
// user's membership. With lock set the team row is held for the rest of the
// transaction so concurrent role changes on the same team serialize.
func loadAccess(tx *gorm.DB, teamID uuid.UUID, userID uint, lock bool) (*access, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var team models.Team
	if err := q.Where("public_id = ? AND status <> ?", teamID, models.TeamStatusDeleted).
		First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errTeamNotFound
		}
		return nil, fmt.Errorf("loading team: %w", err)
	}

	m, err := findMembership(tx, team.ID, userID)
	if err != nil {
		return nil, err
	}

	return &access{team: team, membership: m}, nil
}

func findMembership(tx *gorm.DB, teamID, userID uint) (*models.Membership, error) {
	var m models.Membership
	res := tx.Where("team_id = ? AND user_id = ?", teamID, userID).Limit(1).Find(&m)
	if res.Error != nil {
		return nil, fmt.Errorf("loading membership: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &m, nil
}

// findMember loads a user by public id and requires a membership on teamID.
func findMember(tx *gorm.DB, teamID uint, userID uuid.UUID) (*models.User, *models.Membership, error) {
	var user models.User
	res := tx.Where("public_id = ?", userID).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, nil, fmt.Errorf("loading user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil, nil
	}

	m, err := findMembership(tx, teamID, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &user, m, nil
}
