package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/pkg/config"
	"gorm.io/gorm"
)

var (
	ErrDisabled        = errors.New("demo mode is not enabled")
	ErrDemoUserMissing = errors.New("demo user not found")
)

// seedKeyPrefix marks teams created by Seed so Reset can find them again.
const seedKeyPrefix = "demo-seed-"

// Service resets and seeds the demo dataset.
type Service struct {
	db     *gorm.DB
	cfg    config.DemoConfig
	logger *slog.Logger
}

func NewService(db *gorm.DB, cfg config.DemoConfig, logger *slog.Logger) *Service {
	return &Service{db: db, cfg: cfg, logger: logger}
}

// Reset wipes everything the demo user accumulated and seeds the sample
// content again.
func (s *Service) Reset(ctx context.Context) error {
	if !s.cfg.Enabled {
		return ErrDisabled
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", teams.NormalizeEmail(s.cfg.UserEmail)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDemoUserMissing
		}
		return fmt.Errorf("loading demo user: %w", err)
	}

	s.logger.Info("resetting demo data", "user_id", user.PublicID)

	if err := db.Transaction(func(tx *gorm.DB) error {
		return clean(tx, &user)
	}); err != nil {
		return err
	}

	if err := s.Seed(ctx); err != nil {
		return err
	}

	s.logger.Info("demo reset complete")
	return nil
}

func clean(tx *gorm.DB, user *models.User) error {
	var projectIDs []uint
	if err := tx.Model(&models.Project{}).Where("user_id = ?", user.ID).Pluck("id", &projectIDs).Error; err != nil {
		return fmt.Errorf("listing demo projects: %w", err)
	}
	if len(projectIDs) > 0 {
		if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.TeamProject{}).Error; err != nil {
			return fmt.Errorf("detaching demo projects: %w", err)
		}
		if err := tx.Where("id IN ?", projectIDs).Delete(&models.Project{}).Error; err != nil {
			return fmt.Errorf("deleting demo projects: %w", err)
		}
	}

	if err := tx.Where("recipient_id = ?", user.ID).Delete(&models.Notification{}).Error; err != nil {
		return fmt.Errorf("deleting demo notifications: %w", err)
	}

	if err := tx.Where("user_id = ? OR email = ?", user.ID, user.Email).Delete(&models.Invitation{}).Error; err != nil {
		return fmt.Errorf("deleting demo invitations: %w", err)
	}

	var seeded []models.Team
	if err := tx.Where("teams.key LIKE ? AND teams.status <> ?", seedKeyPrefix+"%", models.TeamStatusDeleted).
		Find(&seeded).Error; err != nil {
		return fmt.Errorf("listing seeded teams: %w", err)
	}
	for i := range seeded {
		if err := teams.Purge(tx, &seeded[i]); err != nil {
			return err
		}
	}

	if err := tx.Exec(
		"DELETE FROM memberships WHERE user_id = ? AND team_id IN (SELECT id FROM teams WHERE is_personal = ?)",
		user.ID, false,
	).Error; err != nil {
		return fmt.Errorf("leaving demo teams: %w", err)
	}

	// Non-personal teams nobody belongs to any more.
	if err := tx.Model(&models.Team{}).
		Where("is_personal = ? AND status <> ?", false, models.TeamStatusDeleted).
		Where("id NOT IN (?)", tx.Model(&models.Membership{}).Select("team_id")).
		Update("status", models.TeamStatusDeleted).Error; err != nil {
		return fmt.Errorf("deleting orphaned teams: %w", err)
	}

	if err := tx.Model(user).Update("current_team_id", nil).Error; err != nil {
		return fmt.Errorf("resetting current team: %w", err)
	}

	subjectType, subjectID := user.AgreementSubject()
	if err := tx.Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Delete(&models.Agreement{}).Error; err != nil {
		return fmt.Errorf("removing terms acceptance: %w", err)
	}

	return nil
}
