package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/api/validation"
	"github.com/hugh/teamhub/internal/teams"
)

const invitationNotFound = "Invitation not found"

type InvitationHandler struct {
	teams  *teams.Service
	logger *slog.Logger
	now    func() time.Time
}

func NewInvitationHandler(teamService *teams.Service, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{teams: teamService, logger: logger, now: time.Now}
}

// TeamList handles GET /api/v1/teams/{teamID}/invitations
func (h *InvitationHandler) TeamList(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}

	invs, err := h.teams.ListPendingForTeam(r.Context(), user, teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	now := h.now()
	out := make([]dto.InvitationDTO, 0, len(invs))
	for i := range invs {
		out = append(out, dto.NewInvitationDTO(&invs[i], now))
	}
	writeData(w, http.StatusOK, out, "")
}

// Create handles POST /api/v1/teams/{teamID}/invitations
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}

	var req dto.InviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	inv, err := h.teams.Issue(r.Context(), user, teamID, req.Email, req.RoleOrDefault())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, dto.NewInvitationDTO(inv, h.now()), "Invitation sent successfully")
}

// Cancel handles DELETE /api/v1/teams/{teamID}/invitations/{invitationID}
func (h *InvitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	teamID, ok := urlID(w, r, "teamID", teamNotFound)
	if !ok {
		return
	}
	invitationID, ok := urlID(w, r, "invitationID", invitationNotFound)
	if !ok {
		return
	}

	if err := h.teams.Cancel(r.Context(), user, teamID, invitationID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Invitation cancelled")
}

// List handles GET /api/v1/invitations, the caller's own pending offers.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	invs, err := h.teams.ListPendingForEmail(r.Context(), user.Email)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	now := h.now()
	out := make([]dto.InvitationDTO, 0, len(invs))
	for i := range invs {
		out = append(out, dto.NewInvitationDTO(&invs[i], now))
	}
	writeData(w, http.StatusOK, out, "")
}

// Accept handles POST /api/v1/invitations/{invitationID}/accept
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	invitationID, ok := urlID(w, r, "invitationID", invitationNotFound)
	if !ok {
		return
	}

	inv, err := h.teams.Accept(r.Context(), user, invitationID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewInvitationDTO(inv, h.now()), "Invitation accepted successfully")
}

// Decline handles POST /api/v1/invitations/{invitationID}/decline
func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	invitationID, ok := urlID(w, r, "invitationID", invitationNotFound)
	if !ok {
		return
	}

	if err := h.teams.Decline(r.Context(), user, invitationID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Invitation declined")
}

// SearchUsers handles GET /api/v1/users/search?q=&team_id=
func (h *InvitationHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	q := r.URL.Query().Get("q")
	rawTeam := r.URL.Query().Get("team_id")

	errors := make(map[string]string)
	if len([]rune(q)) < validation.MinSearchLength {
		errors["q"] = "Search term must be at least 2 characters"
	}
	if !validation.IsValidUUID(rawTeam) {
		errors["team_id"] = "A valid team id is required"
	}
	if len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	users, err := h.teams.SearchInvitees(r.Context(), user, uuid.MustParse(rawTeam), q)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]dto.UserSummaryDTO, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserSummary(&users[i]))
	}
	writeData(w, http.StatusOK, out, "")
}
