// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/churnboard/internal/adapters/plot"
	service "github.com/okian/churnboard/internal/app"
	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/internal/domain/predict"
	"github.com/okian/churnboard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict runs encode, classify and render for one input.
	Predict(ctx context.Context, in employee.Input) (Outcome, error)

	// ModelInfo describes the loaded classifier.
	ModelInfo() predict.ModelInfo
}

// Outcome mirrors the pipeline result served by the handlers.
type Outcome = service.Outcome

// Server wires HTTP routes for the dashboard and its API.
type Server struct {
	log              logger.Logger
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	dashboardHandler *dashboardHandler
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	log   logger.Logger
	plots *plot.Renderer
}

// WithLogger sets the logger used for request logs.
func WithLogger(l logger.Logger) ServerOption {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPlotRenderer sets how dashboard charts are drawn.
func WithPlotRenderer(r *plot.Renderer) ServerOption {
	return func(c *serverConfig) {
		if r != nil {
			c.plots = r
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{plots: plot.New()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.Get()
	}
	log := cfg.log.Named("http")
	return &Server{
		log:              log,
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		predictHandler:   NewPredictHandler(deps),
		dashboardHandler: newDashboardHandler(deps, cfg.plots),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", s.route("stats", s.statsHandler.HandleStats))
	mux.HandleFunc("/api/predict", s.route("api_predict", s.predictHandler.HandlePredict))
	mux.HandleFunc("/predict", s.route("predict", s.dashboardHandler.HandlePredict))
	mux.HandleFunc("/", s.route("dashboard", s.dashboardHandler.HandleIndex))
}

func (s *Server) route(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return MetricsMiddleware(RequestMiddleware(h, s.log), endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
