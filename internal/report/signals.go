package report

import (
	"context"
	"fmt"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/storage"
	"golang.org/x/sync/errgroup"
)

// MetricTrend is a per-day series of one scalar metric.
type MetricTrend struct {
	Metric string                   `json:"metric"`
	Days   int                      `json:"days"`
	Points []analytics.DailyAverage `json:"points"`
}

// SleepSummary summarizes sleep over the last days.
func (s *Service) SleepSummary(ctx context.Context, days int) (analytics.SleepSummary, error) {
	if days <= 0 {
		return analytics.SleepSummary{}, ErrInvalidWindow
	}
	sleep, err := s.src.SleepSessions(ctx, s.startOfDay(s.now(), days))
	if err != nil {
		return analytics.SleepSummary{}, fmt.Errorf("loading sleep: %w", err)
	}
	return analytics.SummarizeSleep(sleep.Sessions), nil
}

// MetricTrend returns daily averages of metric over the last days. Unknown
// metrics return an error wrapping models.ErrUnknownMetric.
func (s *Service) MetricTrend(ctx context.Context, metric string, days int) (*MetricTrend, error) {
	samples, err := s.window(ctx, metric, days)
	if err != nil {
		return nil, err
	}
	return &MetricTrend{Metric: metric, Days: days, Points: analytics.DailyAverages(samples)}, nil
}

// MetricAverage returns the mean of metric over the last days.
func (s *Service) MetricAverage(ctx context.Context, metric string, days int) (analytics.MetricAverage, error) {
	samples, err := s.window(ctx, metric, days)
	if err != nil {
		return analytics.MetricAverage{}, err
	}
	return analytics.AverageMetric(metric, days, samples), nil
}

func (s *Service) window(ctx context.Context, metric string, days int) ([]models.ScalarSample, error) {
	if !storage.IsMetricAllowed(metric) {
		return nil, fmt.Errorf("metric %q: %w", metric, models.ErrUnknownMetric)
	}
	if days <= 0 {
		return nil, ErrInvalidWindow
	}
	series, err := s.src.SamplesSince(ctx, metric, s.startOfDay(s.now(), days))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", metric, err)
	}
	return series.Samples, nil
}

// FatiguePattern checks the last three days of resting heart rate, HRV,
// sleep and step count for a combined fatigue signal.
func (s *Service) FatiguePattern(ctx context.Context) (analytics.FatiguePattern, error) {
	since := s.startOfDay(s.now(), fatigueWindowDays)

	var (
		rhr, hrv, steps models.ScalarSeries
		sleep           models.SleepLog
	)
	g, gctx := errgroup.WithContext(ctx)
	for metric, dst := range map[string]*models.ScalarSeries{
		storage.MetricRestingHR: &rhr,
		storage.MetricHRV:       &hrv,
		storage.MetricSteps:     &steps,
	} {
		g.Go(func() error {
			series, err := s.src.SamplesSince(gctx, metric, since)
			if err != nil {
				return fmt.Errorf("loading %s: %w", metric, err)
			}
			*dst = series
			return nil
		})
	}
	g.Go(func() error {
		var err error
		sleep, err = s.src.SleepSessions(gctx, since)
		if err != nil {
			return fmt.Errorf("loading sleep: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return analytics.FatiguePattern{}, err
	}

	p := analytics.DetectFatigue(rhr.Samples, hrv.Samples, steps.Samples, sleep.Sessions)
	if p.Detected {
		s.log.Info("fatigue pattern detected", "reasons", p.Reasons)
	}
	return p, nil
}

// MaxHRWorkout returns the workout with the highest recorded heart rate.
func (s *Service) MaxHRWorkout(ctx context.Context) (*models.WorkoutHeartRate, error) {
	return s.src.MaxHRWorkout(ctx)
}

// LastWorkout returns the most recent workout with its heart-rate summary.
func (s *Service) LastWorkout(ctx context.Context) (*models.LastWorkout, error) {
	return s.src.LastWorkout(ctx)
}
