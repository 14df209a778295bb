package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"agricensus/internal/service"
	"agricensus/internal/transport/rest/handler"
	"agricensus/internal/transport/rest/middleware"
	"agricensus/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	QuestionnaireService *service.QuestionnaireService
	InterviewService     *service.InterviewService
	WSHub                *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	questionnaireHandler := handler.NewQuestionnaireHandler(c.QuestionnaireService)
	interviewHandler := handler.NewInterviewHandler(c.InterviewService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/questionnaires/{id}/progress", wsHandler.SupervisorWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/auth/enumerator-token", authHandler.EnumeratorToken).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires", questionnaireHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{id}", questionnaireHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{id}/versions", questionnaireHandler.ListVersions).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{id}/versions/{version}/validation", questionnaireHandler.Validate).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{id}/publish", questionnaireHandler.Publish).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{id}/questions/{code}/goto", questionnaireHandler.SetGoto).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{id}/responses", interviewHandler.ListResponses).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{id}/no-match-audits", interviewHandler.ListNoMatchAudits).Methods("GET", "OPTIONS")

	// Enumerator routes (require enumerator auth)
	enumeratorRoutes := v1.NewRoute().Subrouter()
	enumeratorRoutes.Use(authMW.RequireEnumerator)

	enumeratorRoutes.HandleFunc("/interviews", interviewHandler.Start).Methods("POST", "OPTIONS")
	enumeratorRoutes.HandleFunc("/interviews/{id}", interviewHandler.Progress).Methods("GET", "OPTIONS")
	enumeratorRoutes.HandleFunc("/interviews/{id}/question", interviewHandler.Current).Methods("GET", "OPTIONS")
	enumeratorRoutes.HandleFunc("/interviews/{id}/answers", interviewHandler.Submit).Methods("POST", "OPTIONS")
	enumeratorRoutes.HandleFunc("/interviews/{id}/abandon", interviewHandler.Abandon).Methods("POST", "OPTIONS")

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
