package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/report"
)

const testKey = "secret"

type fakeService struct {
	report   *report.DailyReport
	err      error
	gotDays  int
	gotName  string
	workout  *models.LastWorkout
	maxHR    *models.WorkoutHeartRate
	gotNow   time.Time
}

func (f *fakeService) Daily(_ context.Context, now time.Time) (*report.DailyReport, error) {
	f.gotNow = now
	return f.report, f.err
}

func (f *fakeService) SleepSummary(_ context.Context, days int) (analytics.SleepSummary, error) {
	f.gotDays = days
	return analytics.SleepSummary{Nights: days}, f.err
}

func (f *fakeService) MetricTrend(_ context.Context, metric string, days int) (*report.MetricTrend, error) {
	f.gotName, f.gotDays = metric, days
	if metric == "bogus" {
		return nil, fmt.Errorf("metric %q: %w", metric, models.ErrUnknownMetric)
	}
	return &report.MetricTrend{Metric: metric, Days: days, Points: []analytics.DailyAverage{}}, f.err
}

func (f *fakeService) MetricAverage(_ context.Context, metric string, days int) (analytics.MetricAverage, error) {
	f.gotName, f.gotDays = metric, days
	if metric == "bogus" {
		return analytics.MetricAverage{}, fmt.Errorf("metric %q: %w", metric, models.ErrUnknownMetric)
	}
	return analytics.MetricAverage{Metric: metric, Days: days, Average: 52.5, RecordsUsed: 4}, f.err
}

func (f *fakeService) FatiguePattern(context.Context) (analytics.FatiguePattern, error) {
	return analytics.FatiguePattern{Reasons: []string{analytics.ReasonLowHRV}}, f.err
}

func (f *fakeService) MaxHRWorkout(context.Context) (*models.WorkoutHeartRate, error) {
	if f.maxHR == nil {
		return nil, models.ErrNotFound
	}
	return f.maxHR, nil
}

func (f *fakeService) LastWorkout(context.Context) (*models.LastWorkout, error) {
	if f.workout == nil {
		return nil, models.ErrNotFound
	}
	return f.workout, nil
}

func sampleReport() *report.DailyReport {
	return &report.DailyReport{
		Date:       "2024-04-10",
		TRIMPMode:  "heuristic",
		LoadModel:  "decay",
		WeeklyLoad: []analytics.WeeklyLoad{{Week: "2024-W15", TRIMP: 100}},
		LoadStates: []analytics.LoadState{{Week: "2024-W15", Fitness: 2, Fatigue: 13, Form: -11}},
		Current:    analytics.LoadState{Week: "2024-W15", Fitness: 2, Fatigue: 13, Form: -11},
		Readiness:  analytics.Readiness{Score: 80, Badge: "ready"},
		Forecast:   []analytics.ForecastDay{{Date: "2024-04-11", RecoveryScore: 97}},
		Zones:      analytics.ZoneDistribution{Basis: analytics.ReserveBasis, Zones: make([]analytics.Zone, 5)},
		DailyEnergy: []analytics.DailyEnergy{
			{Date: "2024-04-08", Kcal: 500},
		},
		Skipped: 2,
	}
}

func newTestServer(svc ReportService) *Server {
	s := New(svc, testKey, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func get(t *testing.T, h http.Handler, path string, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestRoutesStatus verifies status codes for every API route.
func TestRoutesStatus(t *testing.T) {
	svc := &fakeService{
		report:  sampleReport(),
		workout: &models.LastWorkout{Type: "Running"},
	}
	s := newTestServer(svc)

	tests := []struct {
		path string
		key  string
		want int
	}{
		{"/healthz", "", http.StatusOK},
		{"/api/v1/report", "", http.StatusUnauthorized},
		{"/api/v1/report", "wrong", http.StatusForbidden},
		{"/api/v1/report", testKey, http.StatusOK},
		{"/api/v1/load", testKey, http.StatusOK},
		{"/api/v1/readiness", testKey, http.StatusOK},
		{"/api/v1/forecast", testKey, http.StatusOK},
		{"/api/v1/zones", testKey, http.StatusOK},
		{"/api/v1/energy", testKey, http.StatusOK},
		{"/api/v1/fatigue", testKey, http.StatusOK},
		{"/api/v1/sleep/summary", testKey, http.StatusOK},
		{"/api/v1/sleep/summary?days=0", testKey, http.StatusBadRequest},
		{"/api/v1/sleep/summary?days=week", testKey, http.StatusBadRequest},
		{"/api/v1/sleep/summary?days=366", testKey, http.StatusBadRequest},
		{"/api/v1/metrics/resting_heart_rate/trend?days=14", testKey, http.StatusOK},
		{"/api/v1/metrics/bogus/trend", testKey, http.StatusBadRequest},
		{"/api/v1/metrics/vo2_max/average", testKey, http.StatusOK},
		{"/api/v1/metrics/bogus/average", testKey, http.StatusBadRequest},
		{"/api/v1/workouts/latest", testKey, http.StatusOK},
		{"/api/v1/workouts/max-hr", testKey, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path, tt.key)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %q", ct)
			}
		})
	}
}

// TestLoadResponse verifies the /load payload shape.
func TestLoadResponse(t *testing.T) {
	svc := &fakeService{report: sampleReport()}
	s := newTestServer(svc)

	rec := get(t, s, "/api/v1/load", testKey)
	var got loadResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got.LoadModel != "decay" || len(got.WeeklyLoad) != 1 || got.Current.Form != -11 {
		t.Errorf("load = %+v", got)
	}
	if !svc.gotNow.Equal(time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("now = %v", svc.gotNow)
	}
}

// TestDaysParameter verifies the days query value reaches the service.
func TestDaysParameter(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc)

	get(t, s, "/api/v1/metrics/heart_rate_variability/trend?days=14", testKey)
	if svc.gotName != "heart_rate_variability" || svc.gotDays != 14 {
		t.Errorf("trend args = %q, %d", svc.gotName, svc.gotDays)
	}
	get(t, s, "/api/v1/metrics/vo2_max/average", testKey)
	if svc.gotDays != 7 {
		t.Errorf("average default days = %d, want 7", svc.gotDays)
	}
	get(t, s, "/api/v1/metrics/vo2_max/trend", testKey)
	if svc.gotDays != 30 {
		t.Errorf("trend default days = %d, want 30", svc.gotDays)
	}
}

// TestServiceError verifies unexpected errors become 500s.
func TestServiceError(t *testing.T) {
	s := newTestServer(&fakeService{err: errors.New("connection refused")})

	rec := get(t, s, "/api/v1/readiness", testKey)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !strings.Contains(body["error"], "connection refused") {
		t.Errorf("error = %q", body["error"])
	}
}

// TestMetricsEndpoint verifies request and report collectors are exported.
func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeService{report: sampleReport()})

	get(t, s, "/api/v1/report", testKey)
	rec := get(t, s, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`trainready_http_requests_total{code="200",method="GET",route="/api/v1/report"} 1`,
		"trainready_readiness_score 80",
		"trainready_training_form -11",
		"trainready_skipped_records_total 2",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

// TestMCPMountRequiresKey verifies the MCP transport sits behind the API key.
func TestMCPMountRequiresKey(t *testing.T) {
	s := newTestServer(&fakeService{})
	s.SetMCP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	if rec := get(t, s, "/mcp", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key status = %d, want 401", rec.Code)
	}
	if rec := get(t, s, "/mcp", testKey); rec.Code != http.StatusAccepted {
		t.Errorf("with key status = %d, want 202", rec.Code)
	}
}

// TestUnencodableResponse verifies a payload that cannot be encoded yields a
// 500 with a JSON error body and is logged.
func TestUnencodableResponse(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"report", "/api/v1/report"},
		{"load", "/api/v1/load"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := sampleReport()
			rep.Current.Form = math.Inf(1)

			var logs bytes.Buffer
			s := New(&fakeService{report: rep}, testKey, slog.New(slog.NewTextHandler(&logs, nil)))
			s.now = func() time.Time { return time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC) }

			rec := get(t, s, tt.path, testKey)
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body %q: %v", rec.Body.String(), err)
			}
			if body["error"] != "encoding response" {
				t.Errorf("error = %q, want %q", body["error"], "encoding response")
			}
			if !strings.Contains(logs.String(), "writing response") {
				t.Errorf("logs = %q, want encoding failure logged", logs.String())
			}
		})
	}
}
