package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/notifications"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/pkg/crypto"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errProjectNotFound = teams.NewError(teams.ErrNotFound, "Project not found")
	errNoAccess        = teams.NewError(teams.ErrForbidden, "You do not have access to this project")
	errInvalidStep     = teams.NewError(teams.ErrInvalidOperation, "Unknown story step")
	errInvalidStatus   = teams.NewError(teams.ErrInvalidOperation, "Unknown project status")
)

const keySuffixLength = 6

// Service manages story projects. Projects belong to their creator and are
// attached to the creator's current team at creation time.
type Service struct {
	db            *gorm.DB
	logger        *slog.Logger
	guard         teams.Guard
	notifications *notifications.Service
}

func NewService(db *gorm.DB, logger *slog.Logger, guard teams.Guard, notes *notifications.Service) *Service {
	if guard == nil {
		guard = teams.NopGuard{}
	}
	return &Service{db: db, logger: logger, guard: guard, notifications: notes}
}

type ListFilter struct {
	Status string
	Search string
}

type CreateInput struct {
	Title       string
	Description *string
}

// UpdateInput patches a project. A non-nil empty Description clears it.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	CurrentStep *string
}

// List returns the user's projects on their current team, most recently
// updated first. An unknown status filter is ignored.
func (s *Service) List(ctx context.Context, user *models.User, filter ListFilter) ([]models.Project, error) {
	db := s.db.WithContext(ctx)

	team, err := teams.CurrentTeam(db, user)
	if err != nil {
		return nil, err
	}

	query := db.Model(&models.Project{}).Preload("Teams").Where("projects.user_id = ?", user.ID)
	if team != nil {
		query = query.Where("projects.id IN (?)",
			db.Model(&models.TeamProject{}).Select("project_id").Where("team_id = ?", team.ID))
	}
	if status, ok := models.ParseProjectStatus(filter.Status); ok {
		query = query.Where("projects.status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("projects.label LIKE ?", "%"+search+"%")
	}

	var projects []models.Project
	if err := query.Order("projects.updated_at DESC").Order("projects.id DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, user *models.User, id uuid.UUID) (*models.Project, error) {
	project, err := load(s.db.WithContext(ctx), id, false)
	if err != nil {
		return nil, err
	}
	if project.UserID != user.ID {
		return nil, errNoAccess
	}
	return project, nil
}

// Create starts a draft at the intro step. The project quota is charged to
// the current team.
func (s *Service) Create(ctx context.Context, user *models.User, in CreateInput) (*models.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, teams.NewError(teams.ErrInvalidOperation, "Title is required")
	}

	db := s.db.WithContext(ctx)
	team, err := teams.CurrentTeam(db, user)
	if err != nil {
		return nil, err
	}
	if team != nil {
		if err := teams.CheckQuota(ctx, s.guard, teams.QuotaProjects, team.ID); err != nil {
			return nil, err
		}
	}

	suffix, err := crypto.GenerateToken(keySuffixLength)
	if err != nil {
		return nil, err
	}

	project := models.Project{
		UserID:      user.ID,
		Key:         models.Slugify(title) + "-" + strings.ToLower(suffix),
		Label:       title,
		Description: blankToNil(in.Description),
		Status:      models.ProjectDraft,
		CurrentStep: models.StepIntro,
		Responses:   datatypes.JSON("{}"),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		if team == nil {
			return nil
		}
		if err := tx.Create(&models.TeamProject{TeamID: team.ID, ProjectID: project.ID}).Error; err != nil {
			return fmt.Errorf("attaching project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(db, project.ID)
}

func (s *Service) Update(ctx context.Context, user *models.User, id uuid.UUID, in UpdateInput) (*models.Project, error) {
	updates := map[string]interface{}{}

	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title != "" {
			updates["label"] = title
		}
	}
	if in.Description != nil {
		updates["description"] = blankToNil(in.Description)
	}
	if in.Status != nil {
		status, ok := models.ParseProjectStatus(*in.Status)
		if !ok {
			return nil, errInvalidStatus
		}
		updates["status"] = status
	}
	if in.CurrentStep != nil {
		if !models.IsValidStep(*in.CurrentStep) {
			return nil, errInvalidStep
		}
		updates["current_step"] = *in.CurrentStep
	}

	var projectID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := loadOwned(tx, id, user)
		if err != nil {
			return err
		}
		projectID = project.ID
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(project).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(s.db.WithContext(ctx), projectID)
}

func (s *Service) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := loadOwned(tx, id, user)
		if err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.TeamProject{}).Error; err != nil {
			return fmt.Errorf("detaching project: %w", err)
		}
		if err := tx.Delete(project).Error; err != nil {
			return fmt.Errorf("deleting project: %w", err)
		}
		return nil
	})
}

// SaveResponse replaces the answers stored for step, moves the project to
// that step and marks it in progress.
func (s *Service) SaveResponse(ctx context.Context, user *models.User, id uuid.UUID, step string, answers map[string]interface{}) (*models.Project, error) {
	if !models.IsValidStep(step) {
		return nil, errInvalidStep
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encoding responses: %w", err)
	}

	var projectID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := loadOwned(tx, id, user)
		if err != nil {
			return err
		}
		projectID = project.ID

		responses := map[string]json.RawMessage{}
		if len(project.Responses) > 0 && string(project.Responses) != "null" {
			if err := json.Unmarshal(project.Responses, &responses); err != nil {
				return fmt.Errorf("decoding stored responses: %w", err)
			}
		}
		responses[step] = encoded

		merged, err := json.Marshal(responses)
		if err != nil {
			return fmt.Errorf("encoding responses: %w", err)
		}

		return tx.Model(project).Updates(map[string]interface{}{
			"responses":    datatypes.JSON(merged),
			"current_step": step,
			"status":       models.ProjectInProgress,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.reload(s.db.WithContext(ctx), projectID)
}

// Complete closes the story form and notifies its author.
func (s *Service) Complete(ctx context.Context, user *models.User, id uuid.UUID) (*models.Project, error) {
	var project *models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = loadOwned(tx, id, user)
		if err != nil {
			return err
		}
		return tx.Model(project).Updates(map[string]interface{}{
			"status":       models.ProjectCompleted,
			"current_step": models.StepComplete,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.notifications.Create(ctx, notifications.CreateInput{
		RecipientID: project.UserID,
		SenderID:    &project.UserID,
		Title:       "Story form completed",
		Content:     fmt.Sprintf("Your story %q has been completed.", project.Label),
		Type:        models.NotificationStoryCompleted,
		Link:        "/dashboard",
	}); err != nil {
		return nil, err
	}

	s.logger.Info("project completed", "project_id", project.PublicID)
	return s.reload(s.db.WithContext(ctx), project.ID)
}

func load(tx *gorm.DB, id uuid.UUID, lock bool) (*models.Project, error) {
	q := tx.Where("public_id = ?", id)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var project models.Project
	if err := q.First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return &project, nil
}

func loadOwned(tx *gorm.DB, id uuid.UUID, user *models.User) (*models.Project, error) {
	project, err := load(tx, id, true)
	if err != nil {
		return nil, err
	}
	if project.UserID != user.ID {
		return nil, errNoAccess
	}
	return project, nil
}

func (s *Service) reload(db *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project
	if err := db.Preload("Teams").First(&project, id).Error; err != nil {
		return nil, fmt.Errorf("reloading project: %w", err)
	}
	return &project, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
