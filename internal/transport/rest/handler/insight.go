package handler

import (
	"errors"
	"net/http"

	"focusflow/internal/service"
	"focusflow/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// InsightHandler handles insight-report endpoints
type InsightHandler struct {
	insightSvc *service.InsightService
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightSvc *service.InsightService) *InsightHandler {
	return &InsightHandler{insightSvc: insightSvc}
}

// Generate handles POST /v1/contexts/{id}/insights
func (h *InsightHandler) Generate(w http.ResponseWriter, r *http.Request) {
	contextID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.insightSvc.GenerateForContext(r.Context(), contextID, userID)
	if err != nil {
		var upstream *service.UpstreamError
		switch {
		case err == service.ErrNoSessions:
			writeError(w, http.StatusBadRequest, err.Error())
		case err == service.ErrNotConfigured:
			writeError(w, http.StatusInternalServerError, err.Error())
		case errors.As(err, &upstream):
			// The raw upstream body is included for diagnostics
			writeErrorWithDetails(w, http.StatusBadGateway, upstream.Message, upstream.Details)
		default:
			writeRepoError(w, err, "context not found")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// List handles GET /v1/contexts/{id}/insights
func (h *InsightHandler) List(w http.ResponseWriter, r *http.Request) {
	contextID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reports, err := h.insightSvc.Reports(r.Context(), contextID, userID)
	if err != nil {
		writeRepoError(w, err, "context not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}
