// Package report loads a snapshot of signals and runs the training-load
// pipeline over it. It is the only place that combines storage with the
// pure functions in package analytics.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/config"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/storage"
)

// ErrInvalidWindow is returned when a day window is not positive.
var ErrInvalidWindow = errors.New("window must be a positive number of days")

// fatigueWindowDays is the look-back of the fatigue-pattern check.
const fatigueWindowDays = 3

// Source supplies typed signal slices. Both storage.DB (PostgreSQL) and
// storage.SQLite satisfy it.
type Source interface {
	Workouts(ctx context.Context, since time.Time) (models.WorkoutSet, error)
	SleepSessions(ctx context.Context, since time.Time) (models.SleepLog, error)
	RecentSamples(ctx context.Context, metric string, limit int) (models.ScalarSeries, error)
	SamplesSince(ctx context.Context, metric string, since time.Time) (models.ScalarSeries, error)
	MaxHRWorkout(ctx context.Context) (*models.WorkoutHeartRate, error)
	LastWorkout(ctx context.Context) (*models.LastWorkout, error)
}

var (
	_ Source = (*storage.DB)(nil)
	_ Source = (*storage.SQLite)(nil)
)

// Config selects the analytics models and windows of a Service.
type Config struct {
	Mode         analytics.TRIMPMode
	Model        analytics.LoadModel
	Zones        analytics.ZoneConfig
	Forecast     analytics.ForecastConfig
	WindowDays   int
	SignalWindow int
	Location     *time.Location
}

// DefaultConfig returns the heuristic/decay pipeline over 90 days of data.
func DefaultConfig() Config {
	return Config{
		Mode:         analytics.DefaultHeuristic(),
		Model:        analytics.DefaultDecay(),
		Zones:        analytics.ZoneConfig{Basis: analytics.ReserveBasis, RestingHR: 55},
		Forecast:     analytics.DefaultForecastConfig(),
		WindowDays:   90,
		SignalWindow: 7,
		Location:     time.UTC,
	}
}

// ConfigFrom translates the loaded application config.
func ConfigFrom(c *config.Config) (Config, error) {
	a := c.Analytics
	loc, err := a.Location()
	if err != nil {
		return Config{}, fmt.Errorf("loading timezone: %w", err)
	}

	heuristic := analytics.Heuristic{Multipliers: a.IntensityMultipliers, Default: a.DefaultMultiplier}
	var mode analytics.TRIMPMode = heuristic
	if a.TRIMPMode == "physiological" {
		mode = analytics.Physiological{
			RestingHR:    c.Athlete.RestingHR,
			MaxHR:        c.Athlete.MaxHR,
			GenderFactor: c.Athlete.Factor(),
			Fallback:     heuristic,
		}
	}

	var model analytics.LoadModel = analytics.DefaultDecay()
	if a.LoadModel == "simple" {
		model = analytics.SimpleAverage{Window: a.SimpleWindow}
	}

	return Config{
		Mode:  mode,
		Model: model,
		Zones: analytics.ZoneConfig{
			Basis:     analytics.ZoneBasis(a.ZoneBasis),
			MaxHR:     a.ZoneMaxHR,
			RestingHR: c.Athlete.RestingHR,
		},
		Forecast:     a.Forecast,
		WindowDays:   a.WindowDays,
		SignalWindow: a.SignalWindow,
		Location:     loc,
	}, nil
}

// Service runs the analytics pipeline against a Source.
type Service struct {
	src Source
	cfg Config
	agg analytics.LoadAggregator
	log *slog.Logger
	now func() time.Time
}

// New creates a Service. Zero-valued fields of cfg take DefaultConfig values.
func New(src Source, cfg Config, log *slog.Logger) *Service {
	def := DefaultConfig()
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = def.WindowDays
	}
	if cfg.SignalWindow <= 0 {
		cfg.SignalWindow = def.SignalWindow
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.Forecast.Horizon == 0 {
		cfg.Forecast = def.Forecast
	}
	return &Service{
		src: src,
		cfg: cfg,
		agg: analytics.NewLoadAggregator(cfg.Mode, cfg.Model),
		log: log,
		now: time.Now,
	}
}

// startOfDay returns local midnight days before t.
func (s *Service) startOfDay(t time.Time, daysBack int) time.Time {
	t = t.In(s.cfg.Location)
	return time.Date(t.Year(), t.Month(), t.Day()-daysBack, 0, 0, 0, 0, s.cfg.Location)
}
