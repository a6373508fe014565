package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/terms"
)

type TermsHandler struct {
	terms  *terms.Service
	logger *slog.Logger
}

func NewTermsHandler(svc *terms.Service, logger *slog.Logger) *TermsHandler {
	return &TermsHandler{terms: svc, logger: logger}
}

// Show handles GET /api/v1/terms
func (h *TermsHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	accepted, err := h.terms.HasAcceptedCurrent(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, h.render(accepted), "")
}

// Accept handles POST /api/v1/terms/accept
func (h *TermsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	if err := h.terms.Accept(r.Context(), user); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, h.render(true), "Terms accepted")
}

func (h *TermsHandler) render(accepted bool) dto.TermsDTO {
	current := h.terms.Current()
	return dto.TermsDTO{
		Version:     current.Version,
		Label:       current.Label,
		URL:         current.URL,
		HasAccepted: accepted,
	}
}
