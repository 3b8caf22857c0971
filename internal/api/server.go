package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/spacefrags/kopia-status/internal/api/handler"
	mw "github.com/spacefrags/kopia-status/internal/api/middleware"
	"github.com/spacefrags/kopia-status/internal/state"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	registry *state.Registry
	bus      *state.Bus
}

func NewServer(logger zerolog.Logger, registry *state.Registry, bus *state.Bus) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		registry: registry,
		bus:      bus,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// Webhook ingestion (the per-instance path segment is the only guard,
	// matching the host-platform webhook model).
	webhook := handler.NewWebhook(s.registry, s.logger)
	s.router.Post("/api/webhook/{webhookID}", webhook.Receive)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Instances
		instance := handler.NewInstance(s.registry)
		r.Get("/instances", instance.List)
		r.Post("/instances", instance.Create)
		r.Get("/instances/{id}", instance.Get)
		r.Delete("/instances/{id}", instance.Delete)
		r.Get("/instances/{id}/history", instance.History)

		// Sensor states
		states := handler.NewStates(s.registry)
		r.Get("/states", states.List)
		r.Get("/states/{entityID}", states.Get)

		// Event stream
		stream := handler.NewStream(s.bus, s.logger)
		r.Get("/stream", stream.Connect)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	checks := map[string]string{}
	healthy := true

	if err := s.registry.StateDirWritable(); err != nil {
		checks["state_dir"] = err.Error()
		healthy = false
	} else {
		checks["state_dir"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
