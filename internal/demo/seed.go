package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/pkg/crypto"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type sampleUser struct {
	name  string
	email string
}

// Sample collaborators. The first three share a team with the demo user and
// the fourth sends the pending invitation.
var sampleUsers = []sampleUser{
	{"Alex Rivera", "alex@example.com"},
	{"Priya Shah", "priya@example.com"},
	{"Jordan Lee", "jordan@example.com"},
	{"Sam Carter", "sam@example.com"},
}

// Seed makes sure the demo and sample accounts exist and creates the demo
// content: three projects, a shared team, a pending invitation and a few
// notifications.
func (s *Service) Seed(ctx context.Context) error {
	hash, err := auth.HashPassword(s.cfg.UserPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		demoUser, personal, err := ensureUser(tx, s.cfg.UserName, s.cfg.UserEmail, hash)
		if err != nil {
			return err
		}

		others := make([]*models.User, 0, len(sampleUsers))
		for _, su := range sampleUsers {
			u, _, err := ensureUser(tx, su.name, su.email, hash)
			if err != nil {
				return err
			}
			others = append(others, u)
		}

		if err := tx.Model(demoUser).Update("current_team_id", personal.ID).Error; err != nil {
			return fmt.Errorf("setting demo current team: %w", err)
		}

		if err := seedProjects(tx, demoUser, personal); err != nil {
			return err
		}
		if err := seedSharedTeam(tx, demoUser, others[:3]); err != nil {
			return err
		}
		if err := seedInvitation(tx, demoUser, others[3]); err != nil {
			return err
		}
		return seedNotifications(tx, demoUser, others[0])
	})
}

// ensureUser returns the account for email, creating it with a personal team
// when missing.
func ensureUser(tx *gorm.DB, name, email, hash string) (*models.User, *models.Team, error) {
	email = teams.NormalizeEmail(email)

	var user models.User
	res := tx.Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", email, res.Error)
	}

	if res.RowsAffected == 0 {
		user = models.User{Email: email, Name: name, PasswordHash: hash, IsActive: true}
		if err := tx.Create(&user).Error; err != nil {
			return nil, nil, fmt.Errorf("creating %s: %w", email, err)
		}
		personal, err := teams.CreatePersonal(tx, &user)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Model(&user).Update("current_team_id", personal.ID).Error; err != nil {
			return nil, nil, fmt.Errorf("setting current team: %w", err)
		}
		return &user, personal, nil
	}

	var personal models.Team
	if err := tx.Where("owner_id = ? AND is_personal = ?", user.ID, true).
		Order("id ASC").First(&personal).Error; err != nil {
		return nil, nil, fmt.Errorf("loading personal team of %s: %w", email, err)
	}
	return &user, &personal, nil
}

func seedProjects(tx *gorm.DB, user *models.User, team *models.Team) error {
	projects := []struct {
		prefix    string
		label     string
		desc      string
		status    models.ProjectStatus
		step      string
		responses map[string]map[string]string
	}{
		{
			prefix: "demo-draft",
			label:  "Getting Started Guide",
			desc:   "A beginner-friendly guide to help new users get started.",
			status: models.ProjectDraft,
			step:   models.StepIntro,
		},
		{
			prefix: "demo-progress",
			label:  "Vancouver Community Survey",
			desc:   "Gathering feedback from the Vancouver community.",
			status: models.ProjectInProgress,
			step:   models.StepSectionB,
			responses: map[string]map[string]string{
				models.StepIntro: {
					"intro_1": "Community engagement project",
					"intro_2": "Gathering neighbourhood feedback",
					"intro_3": "Vancouver residents",
				},
				models.StepSectionA: {
					"section_a_1": "Parks and recreation",
					"section_a_2": "Public transit improvements",
					"section_a_3": "Community safety",
				},
			},
		},
		{
			prefix: "demo-complete",
			label:  "Annual Team Review",
			desc:   "End-of-year team performance review and retrospective.",
			status: models.ProjectCompleted,
			step:   models.StepComplete,
			responses: map[string]map[string]string{
				models.StepIntro: {
					"intro_1": "Annual performance review",
					"intro_2": "Evaluating team goals and milestones",
					"intro_3": "All team members",
				},
				models.StepSectionC: {
					"section_c_1": "Strong collaboration across teams",
					"section_c_9": "Overall rating: exceeds expectations",
				},
			},
		},
	}

	for _, p := range projects {
		suffix, err := crypto.GenerateToken(6)
		if err != nil {
			return err
		}
		responses := p.responses
		if responses == nil {
			responses = map[string]map[string]string{}
		}
		raw, err := json.Marshal(responses)
		if err != nil {
			return fmt.Errorf("encoding responses: %w", err)
		}

		desc := p.desc
		project := models.Project{
			UserID:      user.ID,
			Key:         p.prefix + "-" + strings.ToLower(suffix),
			Label:       p.label,
			Description: &desc,
			Status:      p.status,
			CurrentStep: p.step,
			Responses:   datatypes.JSON(raw),
		}
		if err := tx.Create(&project).Error; err != nil {
			return fmt.Errorf("creating demo project: %w", err)
		}
		if err := tx.Create(&models.TeamProject{TeamID: team.ID, ProjectID: project.ID}).Error; err != nil {
			return fmt.Errorf("attaching demo project: %w", err)
		}
	}
	return nil
}

func seedTeam(tx *gorm.DB, label string, owner *models.User) (*models.Team, error) {
	id := uuid.New()
	team := models.Team{
		Base:    models.Base{PublicID: id},
		Label:   label,
		Key:     seedKeyPrefix + models.Slugify(label) + "-" + id.String(),
		Status:  models.TeamStatusActive,
		OwnerID: &owner.ID,
	}
	if err := tx.Create(&team).Error; err != nil {
		return nil, fmt.Errorf("creating demo team: %w", err)
	}
	if err := tx.Create(&models.Membership{TeamID: team.ID, UserID: owner.ID, Role: models.RoleOwner}).Error; err != nil {
		return nil, fmt.Errorf("adding demo team owner: %w", err)
	}
	return &team, nil
}

// seedSharedTeam creates a team owned by crew[0] with crew[1] as admin and
// the demo user plus crew[2] as members.
func seedSharedTeam(tx *gorm.DB, demoUser *models.User, crew []*models.User) error {
	team, err := seedTeam(tx, "Demo Collaboration Team", crew[0])
	if err != nil {
		return err
	}

	members := []models.Membership{
		{TeamID: team.ID, UserID: crew[1].ID, Role: models.RoleAdmin},
		{TeamID: team.ID, UserID: demoUser.ID, Role: models.RoleMember},
		{TeamID: team.ID, UserID: crew[2].ID, Role: models.RoleMember},
	}
	if err := tx.Create(&members).Error; err != nil {
		return fmt.Errorf("adding demo team members: %w", err)
	}
	return nil
}

func seedInvitation(tx *gorm.DB, demoUser, inviter *models.User) error {
	team, err := seedTeam(tx, inviter.Name+"'s Project Team", inviter)
	if err != nil {
		return err
	}

	token, err := crypto.GenerateToken(64)
	if err != nil {
		return err
	}

	inv := models.Invitation{
		TeamID:      team.ID,
		InvitedByID: inviter.ID,
		UserID:      &demoUser.ID,
		Email:       demoUser.Email,
		Token:       token,
		Role:        models.RoleAdmin,
		Status:      models.InvitationPending,
		ExpiresAt:   time.Now().Add(teams.DefaultInvitationTTL),
	}
	if err := tx.Create(&inv).Error; err != nil {
		return fmt.Errorf("creating demo invitation: %w", err)
	}
	return nil
}

func seedNotifications(tx *gorm.DB, demoUser, sender *models.User) error {
	readAt := time.Now().Add(-time.Hour)
	notes := []models.Notification{
		{
			RecipientID: demoUser.ID,
			SenderID:    &sender.ID,
			Title:       "Story form completed",
			Content:     `Your "Annual Team Review" story form has been completed successfully.`,
			Type:        models.NotificationStoryCompleted,
			Link:        "/dashboard",
			ReadAt:      &readAt,
		},
		{
			RecipientID: demoUser.ID,
			SenderID:    &sender.ID,
			Title:       "Team invitation received",
			Content:     "You have been invited to join a new team. Check your invitations to respond.",
			Type:        models.NotificationTeamInvitation,
			Link:        "/invitations",
		},
		{
			RecipientID: demoUser.ID,
			SenderID:    &demoUser.ID,
			Title:       "Welcome to the demo",
			Content:     "Explore the dashboard, manage projects, and collaborate with your team.",
			Type:        models.NotificationGeneral,
			Link:        "/dashboard",
		},
	}
	if err := tx.Create(&notes).Error; err != nil {
		return fmt.Errorf("creating demo notifications: %w", err)
	}
	return nil
}
