package api

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hiver-ai/email-triage/internal/api/recovery"
	"github.com/hiver-ai/email-triage/internal/api/respond"
	"github.com/hiver-ai/email-triage/internal/services"
)

// NewRouter wires every HTTP route onto a mux router. health may be nil.
func NewRouter(svc *services.EmailService, health ServiceHealth, log zerolog.Logger) http.Handler {
	root := mux.NewRouter()

	root.Use(Metrics)
	root.Use(chimw.RequestID)
	root.Use(Logger(log))
	root.Use(recovery.Middleware(log))

	emails := NewEmailHandler(svc, log)

	// Lifecycle
	root.HandleFunc("/ingest-email", emails.IngestEmail).Methods("POST")
	root.HandleFunc("/reassign-email/{id}", emails.ReassignEmail).Methods("POST")
	root.HandleFunc("/generate-reply", emails.GenerateReply).Methods("POST")
	root.HandleFunc("/save-reply/{id}", emails.SaveReply).Methods("POST")
	root.HandleFunc("/generate-feedback/{id}", emails.GenerateFeedback).Methods("POST")

	// Reads
	root.HandleFunc("/emails", emails.ListEmails).Methods("GET")
	root.HandleFunc("/emails/{id}", emails.GetEmail).Methods("GET")
	root.HandleFunc("/random-sample-email", emails.RandomSample).Methods("GET")

	// Health and metrics
	healthHandler := NewHealthHandler(health)
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	root.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// mux skips Use middleware when nothing matched, so the fallbacks carry
	// their own metrics and logging.
	root.NotFoundHandler = Metrics(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteNotFound(w, "route not found")
	})))
	root.MethodNotAllowedHandler = Metrics(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})))

	// CORS wraps the router so preflight requests never reach method matching.
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})(root)
}
