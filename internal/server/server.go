package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportService is the analytics surface the HTTP API exposes.
// *report.Service satisfies it.
type ReportService interface {
	Daily(ctx context.Context, now time.Time) (*report.DailyReport, error)
	SleepSummary(ctx context.Context, days int) (analytics.SleepSummary, error)
	MetricTrend(ctx context.Context, metric string, days int) (*report.MetricTrend, error)
	MetricAverage(ctx context.Context, metric string, days int) (analytics.MetricAverage, error)
	FatiguePattern(ctx context.Context) (analytics.FatiguePattern, error)
	MaxHRWorkout(ctx context.Context) (*models.WorkoutHeartRate, error)
	LastWorkout(ctx context.Context) (*models.LastWorkout, error)
}

var _ ReportService = (*report.Service)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc      ReportService
	log      *slog.Logger
	apiKey   string
	router   chi.Router
	registry *prometheus.Registry
	metrics  *Metrics
	now      func() time.Time
}

// New creates a new Server with all routes configured.
func New(svc ReportService, apiKey string, log *slog.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		svc:      svc,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
		registry: reg,
		metrics:  NewMetrics(reg),
		now:      time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.metrics.Instrument)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Get("/report", s.handleReport)
		r.Get("/load", s.handleLoad)
		r.Get("/readiness", s.handleReadiness)
		r.Get("/forecast", s.handleForecast)
		r.Get("/zones", s.handleZones)
		r.Get("/energy", s.handleEnergy)
		r.Get("/fatigue", s.handleFatigue)
		r.Get("/sleep/summary", s.handleSleepSummary)
		r.Get("/metrics/{metric}/trend", s.handleMetricTrend)
		r.Get("/metrics/{metric}/average", s.handleMetricAverage)
		r.Get("/workouts/latest", s.handleLastWorkout)
		r.Get("/workouts/max-hr", s.handleMaxHRWorkout)
	})
}

// SetMCP mounts an MCP transport (streamable HTTP) at /mcp behind the API key.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", h)
}
