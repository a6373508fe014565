package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/projects"
)

const projectNotFound = "Project not found"

type ProjectHandler struct {
	projects *projects.Service
	logger   *slog.Logger
}

func NewProjectHandler(svc *projects.Service, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: svc, logger: logger}
}

// List handles GET /api/v1/projects?status=&search=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	list, err := h.projects.List(r.Context(), user, projects.ListFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]dto.ProjectDTO, 0, len(list))
	for i := range list {
		out = append(out, dto.NewProjectDTO(&list[i]))
	}
	writeData(w, http.StatusOK, out, "")
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	var req dto.CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	p, err := h.projects.Create(r.Context(), user, projects.CreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, dto.NewProjectDTO(p), "Project created successfully")
}

// Get handles GET /api/v1/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	id, ok := urlID(w, r, "id", projectNotFound)
	if !ok {
		return
	}

	p, err := h.projects.Get(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewProjectDTO(p), "")
}

// Update handles PUT /api/v1/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	id, ok := urlID(w, r, "id", projectNotFound)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	p, err := h.projects.Update(r.Context(), user, id, req.Input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewProjectDTO(p), "Project updated successfully")
}

// Delete handles DELETE /api/v1/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	id, ok := urlID(w, r, "id", projectNotFound)
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), user, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Project deleted successfully")
}

// SaveResponse handles POST /api/v1/projects/{id}/responses
func (h *ProjectHandler) SaveResponse(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	id, ok := urlID(w, r, "id", projectNotFound)
	if !ok {
		return
	}

	var req dto.SaveResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	p, err := h.projects.SaveResponse(r.Context(), user, id, req.Step, req.Responses)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewProjectDTO(p), "Responses saved")
}

// Complete handles POST /api/v1/projects/{id}/complete
func (h *ProjectHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	id, ok := urlID(w, r, "id", projectNotFound)
	if !ok {
		return
	}

	p, err := h.projects.Complete(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewProjectDTO(p), "Project completed")
}
