package handler

import (
	"encoding/json"
	"math"
	"net/http"

	"focusflow/internal/model"
	"focusflow/internal/service"
	"focusflow/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// CreateSessionRequest is the request body for starting a session
type CreateSessionRequest struct {
	ContextID string `json:"contextId"`
	Intention string `json:"intention"`
}

// NotesRequest is the request body for saving notes
type NotesRequest struct {
	Notes string `json:"notes"`
}

// DurationRequest is the request body for the duration checkpoint endpoint.
// A pointer so an absent field is distinguishable from zero.
type DurationRequest struct {
	Duration *float64 `json:"duration"`
}

// CompleteSessionRequest is the request body for finalizing a session
type CompleteSessionRequest struct {
	Reflection model.ReflectionPayload `json:"reflection"`
	Notes      string                  `json:"notes"`
	Duration   int                     `json:"duration"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContextID == "" {
		writeError(w, http.StatusBadRequest, "contextId is required")
		return
	}

	session, err := h.sessionSvc.Create(r.Context(), userID, req.ContextID, req.Intention)
	if err != nil {
		writeRepoError(w, err, "context not found")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.sessionSvc.Get(r.Context(), id, userID)
	if err != nil {
		writeRepoError(w, err, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// SaveNotes handles PUT /v1/sessions/{id}/notes
func (h *SessionHandler) SaveNotes(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.SaveNotes(r.Context(), id, userID, req.Notes)
	if err != nil {
		writeRepoError(w, err, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// SaveDuration handles POST /v1/sessions/{id}/duration. This is the
// checkpoint and exit-flush target: the body must carry a finite number,
// which is floored and clamped to >= 0 before any store write.
func (h *SessionHandler) SaveDuration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req DurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Duration == nil {
		writeError(w, http.StatusBadRequest, "invalid duration")
		return
	}
	raw := *req.Duration
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		writeError(w, http.StatusBadRequest, "invalid duration")
		return
	}
	duration := int(math.Max(0, math.Floor(raw)))

	session, err := h.sessionSvc.SaveDuration(r.Context(), id, userID, duration)
	if err != nil {
		writeRepoError(w, err, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

// Complete handles POST /v1/sessions/{id}/complete
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CompleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.sessionSvc.Complete(r.Context(), id, userID, req.Reflection, req.Notes, req.Duration)
	if err == service.ErrSessionCompleted {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeRepoError(w, err, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Summary handles GET /v1/sessions/{id}/summary
func (h *SessionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.sessionSvc.Summary(r.Context(), id, userID)
	if err != nil {
		writeRepoError(w, err, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
