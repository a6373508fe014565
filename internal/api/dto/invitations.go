package dto

import (
	"time"

	"github.com/hugh/teamhub/internal/api/validation"
	"github.com/hugh/teamhub/internal/database/models"
)

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r InviteRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if trim(r.Email) == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(trim(r.Email)) {
		errors["email"] = "Email is invalid"
	}
	if r.Role != "" && r.Role != string(models.RoleAdmin) && r.Role != string(models.RoleMember) {
		errors["role"] = "Role must be admin or member"
	}

	return errors
}

// RoleOrDefault returns the requested role, member when omitted.
func (r InviteRequest) RoleOrDefault() models.Role {
	if r.Role == "" {
		return models.RoleMember
	}
	return models.Role(r.Role)
}

type InvitationDTO struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	Role       string          `json:"role"`
	Status     string          `json:"status"`
	IsExpired  bool            `json:"is_expired"`
	ExpiresAt  time.Time       `json:"expires_at"`
	AcceptedAt *time.Time      `json:"accepted_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Team       *InviteTeamDTO  `json:"team,omitempty"`
	InvitedBy  *UserSummaryDTO `json:"invited_by,omitempty"`
}

type InviteTeamDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewInvitationDTO(inv *models.Invitation, now time.Time) InvitationDTO {
	out := InvitationDTO{
		ID:         inv.PublicID.String(),
		Email:      inv.Email,
		Role:       string(inv.Role),
		Status:     string(inv.Status),
		IsExpired:  inv.IsExpired(now),
		ExpiresAt:  inv.ExpiresAt,
		AcceptedAt: inv.AcceptedAt,
		CreatedAt:  inv.CreatedAt,
	}
	if inv.Team != nil {
		out.Team = &InviteTeamDTO{ID: inv.Team.PublicID.String(), Name: inv.Team.Label}
	}
	if inv.InvitedBy != nil {
		s := NewUserSummary(inv.InvitedBy)
		out.InvitedBy = &s
	}
	return out
}
