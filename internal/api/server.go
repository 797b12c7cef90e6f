// Package api provides the HTTP API server and handlers for the card tracker.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/birdwell/trading-cards/internal/ratelimit"
	"github.com/birdwell/trading-cards/internal/sse"
	"github.com/birdwell/trading-cards/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         store.Store
	services      *Services
	importLimiter *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// Options configures the HTTP layer.
type Options struct {
	Version     string
	CORSOrigins []string
	// Events enables the live change stream at /api/v1/events.
	Events *sse.Manager
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, importLimiter *ratelimit.KeyedRateLimiter, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	router := chi.NewRouter()
	s := &Server{
		store:         st,
		services:      services,
		importLimiter: importLimiter,
		router:        router,
		logger:        logger,
	}
	s.setupMiddleware(opts.CORSOrigins)

	humaConfig := huma.DefaultConfig("Trading Cards API", opts.Version)
	humaConfig.Info.Description = "Checklist import, set and card catalog, and brand completion statistics."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler(logger)

	s.registerRoutes()
	if opts.Events != nil {
		// Streams bypass huma: the response is not an envelope.
		router.Get("/api/v1/events", sse.NewHandler(opts.Events, logger).ServeHTTP)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, e.g. for dumping the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerBrandRoutes()
	s.registerSetRoutes()
	s.registerCardRoutes()
	s.registerImportRoutes()
	s.registerSearchRoutes()
}
