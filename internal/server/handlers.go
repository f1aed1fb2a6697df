package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/report"
	"github.com/go-chi/chi/v5"
)

// maxWindowDays bounds the days query parameter.
const maxWindowDays = 365

// loadResponse is the /load payload.
type loadResponse struct {
	TRIMPMode  string                 `json:"trimp_mode"`
	LoadModel  string                 `json:"load_model"`
	WeeklyLoad []analytics.WeeklyLoad `json:"weekly_load"`
	LoadStates []analytics.LoadState  `json:"load_states"`
	Current    analytics.LoadState    `json:"current"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// daily computes today's report and writes the error response on failure.
func (s *Server) daily(w http.ResponseWriter, r *http.Request) (*report.DailyReport, bool) {
	rep, err := s.svc.Daily(r.Context(), s.now())
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	s.metrics.observeReport(rep.Readiness.Score, rep.Current.Form, rep.Skipped)
	return rep, true
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.daily(w, r); ok {
		s.respond(w, http.StatusOK, rep)
	}
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.daily(w, r)
	if !ok {
		return
	}
	s.respond(w, http.StatusOK, loadResponse{
		TRIMPMode:  rep.TRIMPMode,
		LoadModel:  rep.LoadModel,
		WeeklyLoad: rep.WeeklyLoad,
		LoadStates: rep.LoadStates,
		Current:    rep.Current,
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.daily(w, r); ok {
		s.respond(w, http.StatusOK, rep.Readiness)
	}
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.daily(w, r); ok {
		s.respond(w, http.StatusOK, rep.Forecast)
	}
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.daily(w, r); ok {
		s.respond(w, http.StatusOK, rep.Zones)
	}
}

func (s *Server) handleEnergy(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.daily(w, r); ok {
		s.respond(w, http.StatusOK, rep.DailyEnergy)
	}
}

func (s *Server) handleFatigue(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.FatiguePattern(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, p)
}

func (s *Server) handleSleepSummary(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r, 7)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sum, err := s.svc.SleepSummary(r.Context(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, sum)
}

func (s *Server) handleMetricTrend(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r, 30)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	trend, err := s.svc.MetricTrend(r.Context(), chi.URLParam(r, "metric"), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, trend)
}

func (s *Server) handleMetricAverage(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r, 7)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	avg, err := s.svc.MetricAverage(r.Context(), chi.URLParam(r, "metric"), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, avg)
}

func (s *Server) handleLastWorkout(w http.ResponseWriter, r *http.Request) {
	wk, err := s.svc.LastWorkout(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, wk)
}

func (s *Server) handleMaxHRWorkout(w http.ResponseWriter, r *http.Request) {
	wk, err := s.svc.MaxHRWorkout(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, wk)
}

// writeError maps service errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownMetric), errors.Is(err, report.ErrInvalidWindow):
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		s.respond(w, http.StatusNotFound, map[string]string{"error": "no workouts recorded"})
	default:
		s.log.Error("request failed", "error", err)
		s.respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// respond writes v as JSON and logs encoding or write failures.
func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		s.log.Error("writing response", "status", status, "error", err)
	}
}

// writeJSON encodes v before the status line is sent, so a value that cannot
// be encoded becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encoding response"}` + "\n"))
		return fmt.Errorf("encoding response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

// parseDays reads the days query parameter, falling back to def.
func parseDays(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return def, nil
	}
	days, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("days must be an integer: %q", v)
	}
	if days < 1 || days > maxWindowDays {
		return 0, fmt.Errorf("days must be between 1 and %d", maxWindowDays)
	}
	return days, nil
}
