package handler

import (
	"log/slog"
	"net/http"

	"timevault/internal/domain/services"
	"timevault/internal/httputil"
)

// ClientHandler handles HTTP requests for clients.
type ClientHandler struct {
	clients services.ClientService
	logger  *slog.Logger
}

// NewClientHandler creates a new client handler.
func NewClientHandler(clients services.ClientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, logger: logger}
}

// RegisterRoutes registers client routes on the mux.
func (h *ClientHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/clients", h.Create)
	mux.HandleFunc("GET /api/clients", h.List)
	mux.HandleFunc("GET /api/clients/{id}", h.Get)
	mux.HandleFunc("PATCH /api/clients/{id}", h.Update)
	mux.HandleFunc("DELETE /api/clients/{id}", h.Delete)
}

// Create handles POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req services.CreateClientRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.clients.Create(r.Context(), tenantID, &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, client)
}

// Get handles GET /api/clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	client, err := h.clients.Get(r.Context(), r.PathValue("id"), tenantID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, client)
}

// List handles GET /api/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	clients, err := h.clients.List(r.Context(), tenantID, listOptionsFromQuery(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"clients": clients,
		"count":   len(clients),
	})
}

// Update handles PATCH /api/clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req services.UpdateClientRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.clients.Update(r.Context(), r.PathValue("id"), tenantID, &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, client)
}

// Delete handles DELETE /api/clients/{id}
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.clients.SoftDelete(r.Context(), r.PathValue("id"), tenantID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
