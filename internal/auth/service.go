package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/teams"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type Service struct {
	db    *gorm.DB
	jwt   *JWTService
	guard teams.Guard
}

func NewService(db *gorm.DB, jwt *JWTService, guard teams.Guard) *Service {
	if guard == nil {
		guard = teams.NopGuard{}
	}
	return &Service{db: db, jwt: jwt, guard: guard}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates the account together with its personal team, which also
// becomes the current team.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := teams.NormalizeEmail(input.Email)

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if existing > 0 {
		return nil, ErrUserExists
	}

	if err := teams.CheckQuota(ctx, s.guard, teams.QuotaUsers, 0); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserExists
			}
			return err
		}

		team, err := teams.CreatePersonal(tx, &user)
		if err != nil {
			return err
		}

		user.CurrentTeamID = &team.ID
		return tx.Model(&user).Update("current_team_id", team.ID).Error
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.PublicID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", teams.NormalizeEmail(input.Email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.PublicID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByPublicID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("public_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile renames the user. Seeded demo accounts are read-only.
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, name string) error {
	if s.guard.IsProtectedAccount(user.Email) {
		return teams.NewError(teams.ErrProtectedAccount, "Demo accounts cannot be modified.")
	}
	name = strings.TrimSpace(name)
	if err := s.db.WithContext(ctx).Model(user).Update("name", name).Error; err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	user.Name = name
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if s.guard.IsProtectedAccount(user.Email) {
		return teams.NewError(teams.ErrProtectedAccount, "Demo accounts cannot be modified.")
	}
	if !CheckPassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}
