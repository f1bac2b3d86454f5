package handler

import (
	"log/slog"
	"net/http"

	"timevault/internal/domain/services"
	"timevault/internal/httputil"
)

// ProjectHandler handles HTTP requests for projects.
type ProjectHandler struct {
	projects services.ProjectService
	logger   *slog.Logger
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projects services.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// RegisterRoutes registers project routes on the mux.
func (h *ProjectHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects", h.Create)
	mux.HandleFunc("GET /api/projects", h.List)
	mux.HandleFunc("GET /api/projects/{id}", h.Get)
	mux.HandleFunc("PATCH /api/projects/{id}", h.Update)
	mux.HandleFunc("DELETE /api/projects/{id}", h.Delete)
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projects.Create(r.Context(), tenantID, &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}

// Get handles GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), r.PathValue("id"), tenantID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// List handles GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	projects, err := h.projects.List(r.Context(), tenantID, listOptionsFromQuery(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

// Update handles PATCH /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projects.Update(r.Context(), r.PathValue("id"), tenantID, &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.projects.SoftDelete(r.Context(), r.PathValue("id"), tenantID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
