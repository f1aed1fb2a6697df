package report

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/storage"
	"golang.org/x/sync/errgroup"
)

// DailyReport is one run of the full pipeline.
type DailyReport struct {
	Date        string                     `json:"date"`
	TRIMPMode   string                     `json:"trimp_mode"`
	LoadModel   string                     `json:"load_model"`
	WeeklyLoad  []analytics.WeeklyLoad     `json:"weekly_load"`
	LoadStates  []analytics.LoadState      `json:"load_states"`
	Current     analytics.LoadState        `json:"current"`
	Readiness   analytics.Readiness        `json:"readiness"`
	Forecast    []analytics.ForecastDay    `json:"forecast"`
	Zones       analytics.ZoneDistribution `json:"hr_zones"`
	DailyEnergy []analytics.DailyEnergy    `json:"daily_energy"`
	Workouts    int                        `json:"workouts"`
	Skipped     int                        `json:"skipped_records"`
}

// snapshot is every signal one report is computed from.
type snapshot struct {
	workouts models.WorkoutSet
	sleep    models.SleepLog
	rhr      models.ScalarSeries
	hrv      models.ScalarSeries
}

func (s *Service) load(ctx context.Context, since time.Time) (snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.workouts, err = s.src.Workouts(ctx, since)
		if err != nil {
			return fmt.Errorf("loading workouts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.sleep, err = s.src.SleepSessions(ctx, since)
		if err != nil {
			return fmt.Errorf("loading sleep: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.rhr, err = s.src.RecentSamples(ctx, storage.MetricRestingHR, s.cfg.SignalWindow)
		if err != nil {
			return fmt.Errorf("loading resting heart rate: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.hrv, err = s.src.RecentSamples(ctx, storage.MetricHRV, s.cfg.SignalWindow)
		if err != nil {
			return fmt.Errorf("loading heart rate variability: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// Daily loads the configured window ending at now and runs every stage of
// the pipeline over it.
func (s *Service) Daily(ctx context.Context, now time.Time) (*DailyReport, error) {
	today := now.In(s.cfg.Location)
	snap, err := s.load(ctx, s.startOfDay(today, s.cfg.WindowDays))
	if err != nil {
		return nil, err
	}

	workouts := localize(snap.workouts.Workouts, s.cfg.Location)
	weeks, states := s.agg.Compute(workouts)
	current := analytics.Latest(states)

	var sleepHours float64
	if last, ok := snap.sleep.Latest(); ok {
		sleepHours = last.Hours()
	}

	r := &DailyReport{
		Date:        today.Format("2006-01-02"),
		TRIMPMode:   s.agg.Mode.Name(),
		LoadModel:   s.agg.Model.Name(),
		WeeklyLoad:  weeks,
		LoadStates:  states,
		Current:     current,
		Readiness:   analytics.ScoreReadiness(current.Form, snap.rhr.Samples, snap.hrv.Samples, sleepHours),
		Forecast:    analytics.ForecastRecovery(snap.rhr.Samples, snap.hrv.Samples, snap.sleep.Sessions, current.Form, current.Fatigue, today, s.cfg.Forecast),
		Zones:       analytics.DistributeZones(snap.workouts.Samples(), s.cfg.Zones),
		DailyEnergy: analytics.SortDailyEnergy(analytics.AggregateDailyEnergy(workouts)),
		Workouts:    len(workouts),
		Skipped:     snap.workouts.Skipped + snap.sleep.Skipped + snap.rhr.Skipped + snap.hrv.Skipped,
	}

	s.log.Debug("daily report computed",
		"date", r.Date,
		"workouts", r.Workouts,
		"weeks", len(weeks),
		"readiness", r.Readiness.Score,
		"skipped", r.Skipped,
	)
	return r, nil
}

// localize returns a copy of workouts with start times in loc, so week
// keys follow the athlete's calendar.
func localize(workouts []models.Workout, loc *time.Location) []models.Workout {
	out := make([]models.Workout, len(workouts))
	for i, w := range workouts {
		w.Start = w.Start.In(loc)
		out[i] = w
	}
	return out
}
