package dto

import (
	"strings"

	"github.com/hugh/teamhub/internal/api/validation"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database/models"
)

func trim(s string) string { return strings.TrimSpace(s) }

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if trim(r.Email) == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(trim(r.Email)) {
		errors["email"] = "Email is invalid"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < auth.MinPasswordLength {
		errors["password"] = "Password must be at least 8 characters"
	}
	if trim(r.Name) == "" {
		errors["name"] = "Name is required"
	} else if validation.TooLong(r.Name, validation.MaxNameLength) {
		errors["name"] = "Name is too long"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if trim(r.Email) == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
	Confirmation    string `json:"password_confirmation"`
}

func (r ChangePasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.CurrentPassword == "" {
		errors["current_password"] = "Current password is required"
	}
	if len(r.Password) < auth.MinPasswordLength {
		errors["password"] = "Password must be at least 8 characters"
	} else if r.Password != r.Confirmation {
		errors["password"] = "Password confirmation does not match"
	}

	return errors
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

func (r UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if trim(r.Name) == "" {
		errors["name"] = "Name is required"
	} else if validation.TooLong(r.Name, validation.MaxNameLength) {
		errors["name"] = "Name is too long"
	}
	return errors
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	CurrentTeamID *string `json:"current_team_id"`
}

// NewUserDTO renders a user. currentTeam may be nil.
func NewUserDTO(u *models.User, currentTeam *models.Team) UserDTO {
	out := UserDTO{
		ID:    u.PublicID.String(),
		Email: u.Email,
		Name:  u.Name,
	}
	if currentTeam != nil {
		id := currentTeam.PublicID.String()
		out.CurrentTeamID = &id
	}
	return out
}

// UserSummaryDTO is the public view of another user.
type UserSummaryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUserSummary(u *models.User) UserSummaryDTO {
	return UserSummaryDTO{ID: u.PublicID.String(), Name: u.Name, Email: u.Email}
}
