package database

import (
	"fmt"
	"log/slog"

	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.SSLMode == "disable" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying db: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to database", "host", cfg.Host, "database", cfg.Name)

	return db, nil
}

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Team{},
		&models.Membership{},
		&models.Invitation{},
		&models.Notification{},
		&models.Agreement{},
		&models.Project{},
		&models.TeamProject{},
	}
}

// AutoMigrate creates or updates the schema, including the partial unique
// index on pending invitations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Project{}, "Teams", &models.TeamProject{}); err != nil {
		return fmt.Errorf("setting up team_projects: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	return nil
}
