package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/teams"
)

const teamNotFound = "Team not found"

type TeamHandler struct {
	teams  *teams.Service
	logger *slog.Logger
}

func NewTeamHandler(teamService *teams.Service, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{teams: teamService, logger: logger}
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	list, err := h.teams.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]dto.TeamDTO, 0, len(list))
	for i := range list {
		out = append(out, dto.NewTeamDTO(&list[i].Team, list[i].Role, user))
	}
	writeData(w, http.StatusOK, out, "")
}

// Create handles POST /api/v1/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	var req dto.CreateTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	team, err := h.teams.Create(r.Context(), user, req.Input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, dto.NewTeamDTO(team, models.RoleOwner, user), "Team created successfully")
}

// Current handles GET /api/v1/teams/current
func (h *TeamHandler) Current(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	team, err := h.teams.CurrentTeam(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if team == nil {
		writeError(w, http.StatusNotFound, teamNotFound)
		return
	}

	role, err := h.teams.RoleOf(r.Context(), user.ID, team.PublicID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewTeamDTO(team, role, user), "")
}

// SetCurrent handles POST /api/v1/teams/current
func (h *TeamHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	var req dto.SetCurrentTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	team, err := h.teams.SetCurrent(r.Context(), user, uuid.MustParse(req.TeamID))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	role, err := h.teams.RoleOf(r.Context(), user.ID, team.PublicID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewTeamDTO(team, role, user), "Current team updated")
}

// Get handles GET /api/v1/teams/{teamID}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}

	m, err := h.teams.Get(r.Context(), user, teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewTeamDTO(&m.Team, m.Role, user), "")
}

// Update handles PUT /api/v1/teams/{teamID}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	team, err := h.teams.Update(r.Context(), user, teamID, req.Input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	role, err := h.teams.RoleOf(r.Context(), user.ID, teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewTeamDTO(team, role, user), "Team updated successfully")
}

// Delete handles DELETE /api/v1/teams/{teamID}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}

	if err := h.teams.Delete(r.Context(), user, teamID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Team deleted successfully")
}

// Members handles GET /api/v1/teams/{teamID}/members
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}

	members, err := h.teams.Members(r.Context(), user, teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]dto.MemberDTO, 0, len(members))
	for i := range members {
		out = append(out, dto.NewMemberDTO(&members[i]))
	}
	writeData(w, http.StatusOK, out, "")
}

// UpdateRole handles PUT /api/v1/teams/{teamID}/members/{userID}/role
func (h *TeamHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}
	memberID, ok := urlID(w, r, "userID", "Member not found")
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	if err := h.teams.AssignRole(r.Context(), user, teamID, memberID, models.Role(req.Role)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Member role updated")
}

// RemoveMember handles DELETE /api/v1/teams/{teamID}/members/{userID}
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}
	memberID, ok := urlID(w, r, "userID", "Member not found")
	if !ok {
		return
	}

	if err := h.teams.RemoveMember(r.Context(), user, teamID, memberID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Member removed from team")
}

// TransferOwnership handles POST /api/v1/teams/{teamID}/transfer-ownership
func (h *TeamHandler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}

	var req dto.TransferOwnershipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	if err := h.teams.TransferOwnership(r.Context(), user, teamID, uuid.MustParse(req.UserID)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Team ownership transferred")
}
