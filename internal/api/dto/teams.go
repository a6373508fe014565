package dto

import (
	"time"

	"github.com/hugh/teamhub/internal/api/validation"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/teams"
)

type CreateTeamRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	Status      string  `json:"status"`
}

func (r CreateTeamRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if trim(r.Name) == "" {
		errors["name"] = "Name is required"
	} else if validation.TooLong(r.Name, validation.MaxNameLength) {
		errors["name"] = "Name is too long"
	}
	if r.Status != "" && r.Status != string(models.TeamStatusActive) && r.Status != string(models.TeamStatusInactive) {
		errors["status"] = "Status must be active or inactive"
	}
	validateTeamDetails(errors, r.Description, r.Email, r.Phone, r.Website)

	return errors
}

func (r CreateTeamRequest) Input() teams.CreateInput {
	return teams.CreateInput{
		Label:       trim(r.Name),
		Description: trimmedPtr(r.Description),
		Email:       r.Email,
		Phone:       r.Phone,
		Website:     r.Website,
		Status:      models.TeamStatus(r.Status),
	}
}

// UpdateTeamRequest is a patch: absent fields are left unchanged.
type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	Status      *string `json:"status"`
}

func (r UpdateTeamRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil {
		if trim(*r.Name) == "" {
			errors["name"] = "Name cannot be empty"
		} else if validation.TooLong(*r.Name, validation.MaxNameLength) {
			errors["name"] = "Name is too long"
		}
	}
	if r.Status != nil && *r.Status != string(models.TeamStatusActive) && *r.Status != string(models.TeamStatusInactive) {
		errors["status"] = "Status must be active or inactive"
	}
	validateTeamDetails(errors, r.Description, r.Email, r.Phone, r.Website)

	return errors
}

func (r UpdateTeamRequest) Input() teams.UpdateInput {
	in := teams.UpdateInput{
		Label:       trimmedPtr(r.Name),
		Description: trimmedPtr(r.Description),
		Email:       r.Email,
		Phone:       r.Phone,
		Website:     r.Website,
	}
	if r.Status != nil {
		st := models.TeamStatus(*r.Status)
		in.Status = &st
	}
	return in
}

func validateTeamDetails(errors map[string]string, description, email, phone, website *string) {
	if description != nil && validation.TooLong(*description, validation.MaxDescriptionLength) {
		errors["description"] = "Description is too long"
	}
	if email != nil && trim(*email) != "" && !validation.IsValidEmail(trim(*email)) {
		errors["email"] = "Email is invalid"
	}
	if phone != nil && trim(*phone) != "" && !validation.IsValidPhone(trim(*phone)) {
		errors["phone"] = "Phone number is invalid"
	}
	if website != nil && trim(*website) != "" && !validation.IsValidWebsite(trim(*website)) {
		errors["website"] = "Website must be an http or https URL"
	}
}

type AssignRoleRequest struct {
	Role string `json:"role"`
}

func (r AssignRoleRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Role != string(models.RoleAdmin) && r.Role != string(models.RoleMember) {
		errors["role"] = "Role must be admin or member"
	}
	return errors
}

type TransferOwnershipRequest struct {
	UserID string `json:"user_id"`
}

func (r TransferOwnershipRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.IsValidUUID(r.UserID) {
		errors["user_id"] = "A valid user id is required"
	}
	return errors
}

type TeamDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Description *string   `json:"description"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	Website     *string   `json:"website"`
	Status      string    `json:"status"`
	IsPersonal  bool      `json:"is_personal"`
	Role        string    `json:"role,omitempty"`
	IsOwner     bool      `json:"is_owner"`
	IsCurrent   bool      `json:"is_current"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTeamDTO renders team as seen by viewer. role is empty when unknown.
func NewTeamDTO(team *models.Team, role models.Role, viewer *models.User) TeamDTO {
	return TeamDTO{
		ID:          team.PublicID.String(),
		Name:        team.Label,
		Key:         team.Key,
		Description: team.Description,
		Email:       team.Email,
		Phone:       team.Phone,
		Website:     team.Website,
		Status:      string(team.Status),
		IsPersonal:  team.IsPersonal,
		Role:        string(role),
		IsOwner:     viewer != nil && team.IsOwnedBy(viewer.ID),
		IsCurrent:   viewer != nil && viewer.CurrentTeamID != nil && *viewer.CurrentTeamID == team.ID,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
}

type MemberDTO struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsAdmin  bool      `json:"is_admin"`
	IsOwner  bool      `json:"is_owner"`
	JoinedAt time.Time `json:"joined_at"`
}

func NewMemberDTO(m *models.Membership) MemberDTO {
	out := MemberDTO{
		Role:     string(m.Role),
		IsAdmin:  m.Role.IsAdminLevel(),
		IsOwner:  m.Role == models.RoleOwner,
		JoinedAt: m.JoinedAt,
	}
	if m.User != nil {
		out.ID = m.User.PublicID.String()
		out.Name = m.User.Name
		out.Email = m.User.Email
	}
	return out
}

type SetCurrentTeamRequest struct {
	TeamID string `json:"team_id"`
}

func (r SetCurrentTeamRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.IsValidUUID(r.TeamID) {
		errors["team_id"] = "A valid team id is required"
	}
	return errors
}
