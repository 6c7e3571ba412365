// Package server exposes the flightdeck panel service over HTTP: the
// adjust-ui agent endpoint, deterministic layout computation, a health
// probe, and a websocket telemetry stream.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/flightdeck/internal/config"
	"github.com/matzehuels/flightdeck/pkg/agent"
	"github.com/matzehuels/flightdeck/pkg/panel/layout"
	"github.com/matzehuels/flightdeck/pkg/telemetry"
)

const shutdownTimeout = 10 * time.Second

// ModelInfo is implemented by adjusters that can describe their
// backing model, used by the health endpoint. The agent.Client
// satisfies it; stub adjusters need not.
type ModelInfo interface {
	Model() string
	Configured() bool
}

// Server wires the panel service endpoints together.
type Server struct {
	log      *log.Logger
	cfg      config.Config
	adjuster agent.Adjuster
	engine   *layout.Engine
	sim      *telemetry.Simulator
	upgrader websocket.Upgrader
}

// New creates a server. The simulator may be nil to disable the
// telemetry endpoint.
func New(cfg config.Config, logger *log.Logger, adj agent.Adjuster, engine *layout.Engine, sim *telemetry.Simulator) *Server {
	s := &Server{
		log:      logger,
		cfg:      cfg,
		adjuster: adj,
		engine:   engine,
		sim:      sim,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originAllowed,
	}
	return s
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)
	r.Post("/api/adjust-ui", s.handleAdjustUI)
	r.Post("/api/layout", s.handleLayout)
	if s.sim != nil {
		r.Get("/api/telemetry", s.handleTelemetry)
	}
	return r
}

// Run serves until the context is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// originAllowed implements the websocket origin check against the
// configured CORS origins. Requests without an Origin header (curl,
// tests) are allowed.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.CORSOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
