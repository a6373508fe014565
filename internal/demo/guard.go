package demo

import (
	"context"
	"fmt"

	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/pkg/config"
	"gorm.io/gorm"
)

// Guard enforces demo quotas and keeps the seeded accounts read-only. Every
// check passes when demo mode is off.
type Guard struct {
	db  *gorm.DB
	cfg config.DemoConfig
}

var _ teams.Guard = (*Guard)(nil)

func NewGuard(db *gorm.DB, cfg config.DemoConfig) *Guard {
	return &Guard{db: db, cfg: cfg}
}

func (g *Guard) Enabled() bool {
	return g.cfg.Enabled
}

// QuotaExceeded counts the existing resources of the quota's scope. subjectID
// is ignored for users, is the acting user for teams and the team otherwise.
func (g *Guard) QuotaExceeded(ctx context.Context, quota teams.Quota, subjectID uint) (bool, error) {
	if !g.cfg.Enabled {
		return false, nil
	}

	db := g.db.WithContext(ctx)
	var (
		count int64
		max   int
		err   error
	)

	switch quota {
	case teams.QuotaUsers:
		max = g.cfg.MaxUsers
		err = db.Model(&models.User{}).Count(&count).Error
	case teams.QuotaTeams:
		max = g.cfg.MaxTeamsPerUser
		err = db.Model(&models.Membership{}).
			Joins("JOIN teams ON teams.id = memberships.team_id").
			Where("memberships.user_id = ? AND teams.is_personal = ? AND teams.status <> ?",
				subjectID, false, models.TeamStatusDeleted).
			Count(&count).Error
	case teams.QuotaProjects:
		max = g.cfg.MaxProjectsPerTeam
		err = db.Model(&models.TeamProject{}).Where("team_id = ?", subjectID).Count(&count).Error
	case teams.QuotaInvitations:
		max = g.cfg.MaxInvitationsPerTeam
		err = db.Model(&models.Invitation{}).
			Where("team_id = ? AND status = ?", subjectID, models.InvitationPending).
			Count(&count).Error
	default:
		return false, fmt.Errorf("unknown quota %q", quota)
	}
	if err != nil {
		return false, fmt.Errorf("counting %s: %w", quota, err)
	}

	return count >= int64(max), nil
}

func (g *Guard) LimitMessage(quota teams.Quota) string {
	switch quota {
	case teams.QuotaUsers:
		return fmt.Sprintf("Demo limit reached: maximum of %d user accounts.", g.cfg.MaxUsers)
	case teams.QuotaTeams:
		return fmt.Sprintf("Demo limit reached: maximum of %d teams per user.", g.cfg.MaxTeamsPerUser)
	case teams.QuotaProjects:
		return fmt.Sprintf("Demo limit reached: maximum of %d projects per team.", g.cfg.MaxProjectsPerTeam)
	case teams.QuotaInvitations:
		return fmt.Sprintf("Demo limit reached: maximum of %d pending invitations per team.", g.cfg.MaxInvitationsPerTeam)
	}
	return "Demo limit reached."
}

func (g *Guard) IsProtectedAccount(email string) bool {
	return g.cfg.Enabled && g.cfg.IsProtected(email)
}
