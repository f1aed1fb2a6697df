package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the collectors exported on /metrics.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	readiness prometheus.Gauge
	form      prometheus.Gauge
	skipped   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trainready",
				Name:      "http_requests_total",
				Help:      "HTTP requests by route pattern, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "trainready",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies by route pattern.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		readiness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trainready",
			Name:      "readiness_score",
			Help:      "Readiness score of the most recently computed report.",
		}),
		form: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trainready",
			Name:      "training_form",
			Help:      "Form (fitness minus fatigue) of the most recently computed report.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trainready",
			Name:      "skipped_records_total",
			Help:      "Malformed signal records skipped while computing reports.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.readiness, m.form, m.skipped)
	return m
}

// Instrument records request count and latency per chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) observeReport(score int, form float64, skipped int) {
	m.readiness.Set(float64(score))
	m.form.Set(form)
	m.skipped.Add(float64(skipped))
}
