package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"timevault/internal/config"
	"timevault/internal/domain/repositories"
	"timevault/internal/domain/services"
	"timevault/internal/httputil"
)

// TimeEntryHandler handles HTTP requests for time entries.
type TimeEntryHandler struct {
	entries services.TimeEntryService
	logger  *slog.Logger
}

// NewTimeEntryHandler creates a new time entry handler.
func NewTimeEntryHandler(entries services.TimeEntryService, logger *slog.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{entries: entries, logger: logger}
}

// RegisterRoutes registers time entry routes on the mux.
func (h *TimeEntryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/time-entries", h.Create)
	mux.HandleFunc("POST /api/time-entries/batch", h.CreateBatch)
	mux.HandleFunc("GET /api/time-entries", h.List)
	mux.HandleFunc("GET /api/time-entries/overlaps", h.FindOverlapping)
	mux.HandleFunc("GET /api/time-entries/{id}", h.Get)
	mux.HandleFunc("PATCH /api/time-entries/{id}", h.Update)
	mux.HandleFunc("DELETE /api/time-entries/{id}", h.Delete)
}

// Create handles POST /api/time-entries
func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req services.CreateTimeEntryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Callers record their own time; the token decides whose entry this is.
	if req.UserID == "" {
		req.UserID = userID
	}

	entry, err := h.entries.Create(r.Context(), tenantID, &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, entry)
}

// CreateBatch handles POST /api/time-entries/batch
func (h *TimeEntryHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req struct {
		Entries []services.CreateTimeEntryRequest `json:"entries"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.entries.CreateBatch(r.Context(), tenantID, userID, req.Entries)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// Get handles GET /api/time-entries/{id}
func (h *TimeEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	entry, err := h.entries.Get(r.Context(), tenantID, r.PathValue("id"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entry)
}

// List handles GET /api/time-entries
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, err := listRequestFromQuery(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.entries.List(r.Context(), tenantID, req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// Update handles PATCH /api/time-entries/{id}
func (h *TimeEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req services.UpdateTimeEntryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.entries.Update(r.Context(), tenantID, r.PathValue("id"), &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/time-entries/{id}
func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.entries.SoftDelete(r.Context(), tenantID, r.PathValue("id")); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FindOverlapping handles GET /api/time-entries/overlaps. Clients use it to
// pre-check an interval before submitting; the answer is advisory since the
// data can change before the write.
func (h *TimeEntryHandler) FindOverlapping(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "start must be an RFC 3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "end must be an RFC 3339 timestamp")
		return
	}

	entries, err := h.entries.FindOverlapping(r.Context(), tenantID, userID, start, end, q.Get("exclude_id"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// listRequestFromQuery parses the time entry listing parameters.
func listRequestFromQuery(r *http.Request) (*services.ListTimeEntriesRequest, error) {
	q := r.URL.Query()

	req := &services.ListTimeEntriesRequest{
		Page:    1,
		PerPage: config.DefaultPageSize,
	}

	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			req.Page = n
		}
	}
	if v := q.Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			req.PerPage = n
		}
	}
	if v := q.Get("order_by"); v != "" {
		req.OrderBy = v
	}
	req.OrderDesc = q.Get("order") == "desc"

	f := repositories.TimeEntryFilter{}
	if v := q.Get("user_id"); v != "" {
		f.UserID = &v
	}
	if v := q.Get("project_id"); v != "" {
		f.ProjectID = &v
	}
	if v := q.Get("task_id"); v != "" {
		f.TaskID = &v
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		f.To = &t
	}
	req.Filter = f

	return req, nil
}
