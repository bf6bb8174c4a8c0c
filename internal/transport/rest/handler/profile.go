package handler

import (
	"encoding/json"
	"net/http"

	"focusflow/internal/service"
	"focusflow/internal/transport/rest/middleware"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profileSvc *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileSvc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// UpdateProfileRequest is the request body for profile updates
type UpdateProfileRequest struct {
	Username string `json:"username"`
}

// Get handles GET /v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.profileSvc.Get(r.Context(), userID)
	if err != nil {
		writeRepoError(w, err, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Update handles PUT /v1/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.profileSvc.Update(r.Context(), userID, req.Username)
	if err != nil {
		writeRepoError(w, err, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
