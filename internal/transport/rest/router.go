package rest

import (
	"net/http"
	"os"

	"focusflow/internal/service"
	"focusflow/internal/transport/rest/handler"
	"focusflow/internal/transport/rest/middleware"
	"focusflow/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	ProfileService *service.ProfileService
	ContextService *service.ContextService
	SessionService *service.SessionService
	InsightService *service.InsightService
	WSHub          *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	profileHandler := handler.NewProfileHandler(c.ProfileService)
	contextHandler := handler.NewContextHandler(c.ContextService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	insightHandler := handler.NewInsightHandler(c.InsightService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionFeed).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireUser)

	authed.HandleFunc("/auth/change-password", authHandler.ChangePassword).Methods("POST", "OPTIONS")
	authed.HandleFunc("/profile", profileHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/profile", profileHandler.Update).Methods("PUT", "OPTIONS")

	authed.HandleFunc("/contexts", contextHandler.Create).Methods("POST", "OPTIONS")
	authed.HandleFunc("/contexts", contextHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/contexts/{id}", contextHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/contexts/{id}", contextHandler.Update).Methods("PUT", "OPTIONS")
	authed.HandleFunc("/contexts/{id}/sessions", contextHandler.Sessions).Methods("GET", "OPTIONS")
	authed.HandleFunc("/contexts/{id}/sessions/count", contextHandler.SessionCount).Methods("GET", "OPTIONS")
	authed.HandleFunc("/contexts/{id}/insights", insightHandler.Generate).Methods("POST", "OPTIONS")
	authed.HandleFunc("/contexts/{id}/insights", insightHandler.List).Methods("GET", "OPTIONS")

	authed.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	authed.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/sessions/{id}/notes", sessionHandler.SaveNotes).Methods("PUT", "OPTIONS")
	authed.HandleFunc("/sessions/{id}/duration", sessionHandler.SaveDuration).Methods("POST", "OPTIONS")
	authed.HandleFunc("/sessions/{id}/complete", sessionHandler.Complete).Methods("POST", "OPTIONS")
	authed.HandleFunc("/sessions/{id}/summary", sessionHandler.Summary).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
