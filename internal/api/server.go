package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/specsift/specsift/internal/config"
	"github.com/specsift/specsift/internal/pipeline"
)

// Server is the HTTP API server for specsift.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.SpecsiftAPIKey, s.log))

		r.Post("/api/specs", s.handleSubmitSpec)
		r.Get("/api/specs/{jobID}/status", s.handleSpecStatus)
		r.Get("/api/specs/{jobID}/pages", s.handleSpecPages)
		r.Get("/api/specs/{jobID}/summary", s.handleSpecSummary)
		r.Get("/api/specs/{jobID}/report", s.handleSpecReport)
		r.Get("/api/specs/{jobID}/sections/{division}", s.handleDivisionSections)
		r.Post("/api/specs/{jobID}/sections/{division}/extract", s.handleDivisionExtract)
		r.Get("/api/stats/oracle", s.handleOracleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
