package handler

import (
	"log/slog"
	"net/http"

	"timevault/internal/domain/services"
	"timevault/internal/httputil"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	tasks  services.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// RegisterRoutes registers task routes on the mux.
func (h *TaskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tasks", h.Create)
	mux.HandleFunc("GET /api/tasks", h.List)
	mux.HandleFunc("GET /api/tasks/{id}", h.Get)
	mux.HandleFunc("PATCH /api/tasks/{id}", h.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.Delete)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tasks.Create(r.Context(), tenantID, &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, task)
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), r.PathValue("id"), tenantID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, task)
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), tenantID, listOptionsFromQuery(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// Update handles PATCH /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tasks.Update(r.Context(), r.PathValue("id"), tenantID, &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.tasks.SoftDelete(r.Context(), r.PathValue("id"), tenantID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
