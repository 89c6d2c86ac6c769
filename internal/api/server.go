package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/JakeFAU/horde-relay/internal/metrics"
	"github.com/JakeFAU/horde-relay/internal/relay"
)

// Preferences stores each caller's model choice.
type Preferences interface {
	Get(key string) string
	Set(key, model string) string
	Reset(key string)
}

// Catalog answers sampler and model listings.
type Catalog interface {
	Samplers() []string
	Models(ctx context.Context) ([]string, error)
}

// Generator runs a generation to completion.
type Generator interface {
	GenerateImage(ctx context.Context, req relay.ImageRequest, callerKey string) (string, error)
}

// DocRenderer renders the landing page for a hostname.
type DocRenderer interface {
	Render(host string) (string, error)
}

// IDGenerator produces request IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Options holds the handler policy knobs.
type Options struct {
	// BestEffort answers every generation with 200, using an empty image on
	// failure, and flushes headers before the wait begins.
	BestEffort     bool
	AllowedOrigins []string
}

// Server wires HTTP handlers to the relay components.
type Server struct {
	router    chi.Router
	prefs     Preferences
	catalog   Catalog
	generator Generator
	docs      DocRenderer
	idGen     IDGenerator
	opts      Options
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	prefs Preferences,
	catalog Catalog,
	generator Generator,
	docs DocRenderer,
	idGen IDGenerator,
	opts Options,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		prefs:     prefs,
		catalog:   catalog,
		generator: generator,
		docs:      docs,
		idGen:     idGen,
		opts:      opts,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.index)
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.callerKeyMiddleware)
		r.Get("/modules", s.listModules)
		r.Post("/image", s.generateImage)
		r.Get("/image/samplers", s.listSamplers)
		r.Get("/image/model", s.getModel)
		r.Post("/image/model", s.setModel)
		r.Get("/image/models", s.listModels)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// No downstream is probed; the remote network is checked per request.
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
