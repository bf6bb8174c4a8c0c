package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"focusflow/internal/service"
	"focusflow/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// ContextHandler handles context endpoints
type ContextHandler struct {
	contextSvc *service.ContextService
}

// NewContextHandler creates a new context handler
func NewContextHandler(contextSvc *service.ContextService) *ContextHandler {
	return &ContextHandler{contextSvc: contextSvc}
}

// ContextRequest is the request body for creating or updating a context
type ContextRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create handles POST /v1/contexts
func (h *ContextHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.contextSvc.Create(r.Context(), userID, req.Title, req.Description)
	if err == service.ErrTitleRequired {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// List handles GET /v1/contexts
func (h *ContextHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contexts, err := h.contextSvc.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"contexts": contexts})
}

// Get handles GET /v1/contexts/{id}
func (h *ContextHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	c, err := h.contextSvc.Get(r.Context(), id, userID)
	if err != nil {
		writeRepoError(w, err, "context not found")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Update handles PUT /v1/contexts/{id}
func (h *ContextHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.contextSvc.Update(r.Context(), id, userID, req.Title, req.Description)
	if err == service.ErrTitleRequired {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeRepoError(w, err, "context not found")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Sessions handles GET /v1/contexts/{id}/sessions
func (h *ContextHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	sessions, err := h.contextSvc.Sessions(r.Context(), id, userID, limit)
	if err != nil {
		writeRepoError(w, err, "context not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// SessionCount handles GET /v1/contexts/{id}/sessions/count
func (h *ContextHandler) SessionCount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.contextSvc.SessionCount(r.Context(), id, userID)
	if err != nil {
		writeRepoError(w, err, "context not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
