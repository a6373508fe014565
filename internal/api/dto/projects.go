package dto

import (
	"encoding/json"
	"time"

	"github.com/hugh/teamhub/internal/api/validation"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/projects"
)

type CreateProjectRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (r CreateProjectRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if trim(r.Title) == "" {
		errors["title"] = "Title is required"
	} else if validation.TooLong(r.Title, validation.MaxNameLength) {
		errors["title"] = "Title is too long"
	}
	if r.Description != nil && validation.TooLong(*r.Description, validation.MaxDescriptionLength) {
		errors["description"] = "Description is too long"
	}
	return errors
}

type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	CurrentStep *string `json:"current_step"`
}

func (r UpdateProjectRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Title != nil && validation.TooLong(*r.Title, validation.MaxNameLength) {
		errors["title"] = "Title is too long"
	}
	if r.Status != nil {
		if _, ok := models.ParseProjectStatus(*r.Status); !ok {
			errors["status"] = "Status must be draft, in_progress or completed"
		}
	}
	if r.CurrentStep != nil && !models.IsValidStep(*r.CurrentStep) {
		errors["current_step"] = "Unknown step"
	}
	return errors
}

func (r UpdateProjectRequest) Input() projects.UpdateInput {
	return projects.UpdateInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		CurrentStep: r.CurrentStep,
	}
}

type SaveResponseRequest struct {
	Step      string                 `json:"step"`
	Responses map[string]interface{} `json:"responses"`
}

func (r SaveResponseRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Step == "" {
		errors["step"] = "Step is required"
	} else if !models.IsValidStep(r.Step) {
		errors["step"] = "Unknown step"
	}
	if r.Responses == nil {
		errors["responses"] = "Responses are required"
	}
	return errors
}

type ProjectDTO struct {
	ID          string          `json:"id"`
	TeamID      *string         `json:"team_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Status      string          `json:"status"`
	CurrentStep string          `json:"current_step"`
	Responses   json.RawMessage `json:"responses"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewProjectDTO(p *models.Project) ProjectDTO {
	out := ProjectDTO{
		ID:          p.PublicID.String(),
		Title:       p.Label,
		Description: p.Description,
		Status:      string(p.Status),
		CurrentStep: p.CurrentStep,
		Responses:   json.RawMessage("{}"),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if len(p.Responses) > 0 && string(p.Responses) != "null" {
		out.Responses = json.RawMessage(p.Responses)
	}
	if len(p.Teams) > 0 {
		id := p.Teams[0].PublicID.String()
		out.TeamID = &id
	}
	return out
}
