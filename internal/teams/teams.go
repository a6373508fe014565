package teams

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"gorm.io/gorm"
)

type CreateInput struct {
	Label       string
	Description *string
	Email       *string
	Phone       *string
	Website     *string
	Status      models.TeamStatus
}

// UpdateInput carries a partial update; nil fields are left unchanged.
// Blank contact fields are stored as NULL.
type UpdateInput struct {
	Label       *string
	Description *string
	Email       *string
	Phone       *string
	Website     *string
	Status      *models.TeamStatus
}

// Membered is a team together with the caller's role on it.
type Membered struct {
	Team models.Team
	Role models.Role
}

// Create makes a new team owned by actor.
func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.Team, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return nil, NewError(ErrInvalidOperation, "Team name is required")
	}

	status := in.Status
	if status == "" {
		status = models.TeamStatusActive
	}
	if status == models.TeamStatusDeleted {
		return nil, NewError(ErrInvalidOperation, "Invalid team status")
	}

	if err := CheckQuota(ctx, s.guard, QuotaTeams, actor.ID); err != nil {
		return nil, err
	}

	team := models.Team{
		Label:       label,
		Description: blankToNil(in.Description),
		Email:       blankToNil(in.Email),
		Phone:       blankToNil(in.Phone),
		Website:     blankToNil(in.Website),
		Status:      status,
		OwnerID:     &actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return fmt.Errorf("creating team: %w", err)
		}
		return addMember(tx, team.ID, actor.ID, models.RoleOwner)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team created", "team_id", team.PublicID, "owner_id", actor.PublicID)
	return &team, nil
}

// CreatePersonal makes the undeletable default team every account starts
// with. It runs on the caller's transaction.
func CreatePersonal(tx *gorm.DB, user *models.User) (*models.Team, error) {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = strings.SplitN(user.Email, "@", 2)[0]
	}

	team := models.Team{
		Label:      name + "'s Team",
		Status:     models.TeamStatusActive,
		IsPersonal: true,
		OwnerID:    &user.ID,
	}
	if err := tx.Create(&team).Error; err != nil {
		return nil, fmt.Errorf("creating personal team: %w", err)
	}
	if err := addMember(tx, team.ID, user.ID, models.RoleOwner); err != nil {
		return nil, err
	}
	return &team, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func addMember(tx *gorm.DB, teamID, userID uint, role models.Role) error {
	m := models.Membership{TeamID: teamID, UserID: userID, Role: role}
	if err := tx.Create(&m).Error; err != nil {
		return fmt.Errorf("creating membership: %w", err)
	}
	return nil
}

// Update changes team settings. Admins and the owner may update.
func (s *Service) Update(ctx context.Context, actor *models.User, teamID uuid.UUID, in UpdateInput) (*models.Team, error) {
	updates := map[string]interface{}{}
	if in.Label != nil {
		label := strings.TrimSpace(*in.Label)
		if label == "" {
			return nil, NewError(ErrInvalidOperation, "Team name is required")
		}
		updates["label"] = label
	}
	if in.Description != nil {
		updates["description"] = blankToNil(in.Description)
	}
	if in.Email != nil {
		updates["email"] = blankToNil(in.Email)
	}
	if in.Phone != nil {
		updates["phone"] = blankToNil(in.Phone)
	}
	if in.Website != nil {
		updates["website"] = blankToNil(in.Website)
	}
	if in.Status != nil {
		switch *in.Status {
		case models.TeamStatusActive, models.TeamStatusInactive:
			updates["status"] = *in.Status
		default:
			return nil, NewError(ErrInvalidOperation, "Invalid team status")
		}
	}

	var team models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := loadAccess(tx, teamID, actor.ID, true)
		if err != nil {
			return err
		}
		if !acc.isAdmin() {
			return NewError(ErrForbidden, "Only team admins can update team settings")
		}

		team = acc.team
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&team).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating team: %w", err)
		}
		return tx.First(&team, team.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Delete soft-deletes a team. Projects attached to it are removed, members
// are detached and pending invitations are cancelled in the same transaction.
func (s *Service) Delete(ctx context.Context, actor *models.User, teamID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := loadAccess(tx, teamID, actor.ID, true)
		if err != nil {
			return err
		}
		if !acc.isMember() {
			return errNoAccess
		}
		if acc.team.IsPersonal {
			return NewError(ErrConflict, "Your default team cannot be deleted.")
		}
		if !acc.isOwner() {
			return NewError(ErrForbidden, "Only the team owner can delete a team")
		}

		var current models.User
		if err := tx.Select("id", "current_team_id").First(&current, actor.ID).Error; err != nil {
			return fmt.Errorf("loading user: %w", err)
		}
		if current.CurrentTeamID != nil && *current.CurrentTeamID == acc.team.ID {
			return NewError(ErrConflict, "You cannot delete your current active team. Switch to another team first.")
		}

		return Purge(tx, &acc.team)
	})
	if err != nil {
		return err
	}

	s.logger.Info("team deleted", "team_id", teamID, "actor_id", actor.PublicID)
	return nil
}

// Purge deletes the team's projects and memberships, cancels its pending
// invitations and marks it deleted. It runs on the caller's transaction
// without any checks.
func Purge(tx *gorm.DB, team *models.Team) error {
	var projectIDs []uint
	if err := tx.Model(&models.TeamProject{}).Where("team_id = ?", team.ID).
		Pluck("project_id", &projectIDs).Error; err != nil {
		return fmt.Errorf("listing team projects: %w", err)
	}
	if len(projectIDs) > 0 {
		if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.TeamProject{}).Error; err != nil {
			return fmt.Errorf("detaching projects: %w", err)
		}
		if err := tx.Where("id IN ?", projectIDs).Delete(&models.Project{}).Error; err != nil {
			return fmt.Errorf("deleting projects: %w", err)
		}
	}

	if err := tx.Model(&models.Invitation{}).
		Where("team_id = ? AND status = ?", team.ID, models.InvitationPending).
		Update("status", models.InvitationCancelled).Error; err != nil {
		return fmt.Errorf("cancelling invitations: %w", err)
	}

	if err := tx.Model(&models.User{}).Where("current_team_id = ?", team.ID).
		Update("current_team_id", nil).Error; err != nil {
		return fmt.Errorf("clearing current team: %w", err)
	}

	if err := tx.Where("team_id = ?", team.ID).Delete(&models.Membership{}).Error; err != nil {
		return fmt.Errorf("removing members: %w", err)
	}

	if err := tx.Model(team).Update("status", models.TeamStatusDeleted).Error; err != nil {
		return fmt.Errorf("marking team deleted: %w", err)
	}
	return nil
}

// ListForUser returns every non-deleted team userID belongs to, oldest first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]Membered, error) {
	var memberships []models.Membership
	err := s.db.WithContext(ctx).
		Joins("JOIN teams ON teams.id = memberships.team_id").
		Where("memberships.user_id = ? AND teams.status <> ?", userID, models.TeamStatusDeleted).
		Preload("Team").
		Order("teams.created_at ASC, teams.id ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}

	out := make([]Membered, 0, len(memberships))
	for _, m := range memberships {
		if m.Team == nil {
			continue
		}
		out = append(out, Membered{Team: *m.Team, Role: m.Role})
	}
	return out, nil
}

// Get returns a team the actor belongs to.
func (s *Service) Get(ctx context.Context, actor *models.User, teamID uuid.UUID) (*Membered, error) {
	acc, err := loadAccess(s.db.WithContext(ctx), teamID, actor.ID, false)
	if err != nil {
		return nil, err
	}
	if !acc.isMember() {
		return nil, errNoAccess
	}
	return &Membered{Team: acc.team, Role: acc.role()}, nil
}

// Members lists the team's memberships with their users, in join order.
func (s *Service) Members(ctx context.Context, actor *models.User, teamID uuid.UUID) ([]models.Membership, error) {
	db := s.db.WithContext(ctx)
	acc, err := loadAccess(db, teamID, actor.ID, false)
	if err != nil {
		return nil, err
	}
	if !acc.isMember() {
		return nil, errNoAccess
	}

	var members []models.Membership
	if err := db.Where("team_id = ?", acc.team.ID).
		Preload("User").
		Order("joined_at ASC, user_id ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return members, nil
}

// SetCurrent switches the actor's active team.
func (s *Service) SetCurrent(ctx context.Context, actor *models.User, teamID uuid.UUID) (*models.Team, error) {
	db := s.db.WithContext(ctx)
	acc, err := loadAccess(db, teamID, actor.ID, false)
	if err != nil {
		return nil, err
	}
	if !acc.isMember() {
		return nil, errNoAccess
	}

	if err := db.Model(&models.User{}).Where("id = ?", actor.ID).
		Update("current_team_id", acc.team.ID).Error; err != nil {
		return nil, fmt.Errorf("switching team: %w", err)
	}
	id := acc.team.ID
	actor.CurrentTeamID = &id
	return &acc.team, nil
}

// CurrentTeam returns the user's active team, falling back to the personal
// team when none is set or the stored one is no longer reachable.
func (s *Service) CurrentTeam(ctx context.Context, user *models.User) (*models.Team, error) {
	return CurrentTeam(s.db.WithContext(ctx), user)
}

func CurrentTeam(db *gorm.DB, user *models.User) (*models.Team, error) {
	member := db.Model(&models.Team{}).
		Joins("JOIN memberships ON memberships.team_id = teams.id AND memberships.user_id = ?", user.ID).
		Where("teams.status <> ?", models.TeamStatusDeleted)

	if user.CurrentTeamID != nil {
		var team models.Team
		res := member.Session(&gorm.Session{}).Where("teams.id = ?", *user.CurrentTeamID).Limit(1).Find(&team)
		if res.Error != nil {
			return nil, fmt.Errorf("loading current team: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return &team, nil
		}
	}

	var team models.Team
	res := member.Session(&gorm.Session{}).Where("teams.is_personal = ?", true).
		Order("teams.id ASC").Limit(1).Find(&team)
	if res.Error != nil {
		return nil, fmt.Errorf("loading personal team: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &team, nil
}
