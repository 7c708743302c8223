// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"convosense/internal/config"
	"convosense/internal/domain/analysis"
	"convosense/internal/server/handlers"
)

// Health describes process-level status reported by the health endpoint.
type Health struct {
	MockMode       bool
	ToxicityAPISet bool
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	runner handlers.AnalysisRunner,
	reportStore analysis.ReportStore,
	userStore analysis.UserStore,
	health Health,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	analysisHandler := handlers.NewAnalysisHandler(runner, reportStore)
	userHandler := handlers.NewUserHandler(userStore)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			toxicityKey := "Missing"
			if health.ToxicityAPISet {
				toxicityKey = "Set"
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"status":"ok","mock_mode":%t,"perspective_key":%q}`,
				health.MockMode, toxicityKey)
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Analysis API
			r.Post("/analyze", analysisHandler.StartAnalysis)
			r.Get("/reports", analysisHandler.ListReports)

			// Users API
			r.Route("/users", func(r chi.Router) {
				r.Post("/", userHandler.SaveUser)
				r.Get("/{uid}", userHandler.GetUser)
			})
		})
	})

	// WebSocket endpoint for real-time progress streaming
	router.Get("/ws/analysis/{session}", handlers.AnalysisWebSocketHandler(natsConn))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
