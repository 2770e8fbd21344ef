// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/internal/domain/roster"
	"github.com/okian/datastrike/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	KPIDependencies
	RosterDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	kpiHandler    *KPIHandler
	rosterHandler *RosterHandler

	requestTimeout time.Duration
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := options{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Named("api")
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		kpiHandler:     NewKPIHandler(deps, cfg.maxUploadBytes, cfg.logger),
		rosterHandler:  NewRosterHandler(deps, cfg.logger),
		requestTimeout: cfg.requestTimeout,
		logger:         cfg.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /api/kpis/by-equipo/{id}",
		MetricsMiddleware(s.timeout(s.kpiHandler.HandleTeamKPIs), "kpis_by_team"))
	mux.HandleFunc("POST /api/kpis/por-periodo",
		MetricsMiddleware(s.timeout(s.kpiHandler.HandlePeriodKPIs), "kpis_by_period"))

	mux.HandleFunc("GET /api/equipos",
		MetricsMiddleware(s.timeout(s.rosterHandler.HandleTeams), "teams"))
	mux.HandleFunc("GET /api/equipos/{id}/jugadores",
		MetricsMiddleware(s.timeout(s.rosterHandler.HandlePlayers), "team_players"))
}

// Handler returns mux wrapped with the request id middleware.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	return RequestIDMiddleware(mux, s.logger)
}

func (s *Server) timeout(next http.HandlerFunc) http.HandlerFunc {
	if s.requestTimeout <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// KPIDependencies computes KPI reports from uploaded match files.
type KPIDependencies interface {
	TeamKPIs(ctx context.Context, teamID int64, filename string, r io.Reader) (*kpi.Report, error)
	PeriodKPIs(ctx context.Context, filename string, r io.Reader) (map[string]kpi.PeriodSummary, error)
}

// RosterDependencies exposes the stored teams and players.
type RosterDependencies interface {
	Teams(ctx context.Context) ([]roster.Team, error)
	PlayersByTeam(ctx context.Context, teamID int64) ([]roster.Player, error)
}
