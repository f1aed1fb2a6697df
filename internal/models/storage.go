package models

import (
	"time"

	"github.com/google/uuid"
)

// HRKind tags a per-workout heart-rate sample. Raw samples carry an empty kind.
type HRKind string

const (
	HRMin HRKind = "Min"
	HRAvg HRKind = "Avg"
	HRMax HRKind = "Max"
	HRRaw HRKind = ""
)

// Workout is a row read from the workouts table together with its
// heart_rate_workout_data samples.
type Workout struct {
	ID          uuid.UUID         `json:"id"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Type        string            `json:"type"`
	DurationMin float64           `json:"duration_min"`
	EnergyKcal  *float64          `json:"energy_kcal,omitempty"`
	DistanceKm  *float64          `json:"distance_km,omitempty"`
	Steps       *float64          `json:"steps,omitempty"`
	Samples     []HeartRateSample `json:"samples,omitempty"`
}

// HeartRateSample is a row of heart_rate_workout_data.
type HeartRateSample struct {
	WorkoutID uuid.UUID `json:"workout_id"`
	Time      time.Time `json:"timestamp"`
	Value     float64   `json:"qty"`
	Kind      HRKind    `json:"type,omitempty"`
}

// SleepSession is a row of sleep_data.
type SleepSession struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DurationMin float64   `json:"duration_min"`
}

// Hours returns the session length in hours.
func (s SleepSession) Hours() float64 {
	return s.DurationMin / 60
}

// ScalarSample is a (timestamp, qty) row of a scalar metric table such as
// resting_heart_rate or heart_rate_variability.
type ScalarSample struct {
	Time time.Time `json:"timestamp"`
	Qty  float64   `json:"qty"`
}

// WorkoutSet is the loader result for workouts. Skipped counts rows that
// could not be decoded and were left out.
type WorkoutSet struct {
	Workouts []Workout
	Skipped  int
}

// Samples flattens the heart-rate samples of every workout in the set.
func (s WorkoutSet) Samples() []HeartRateSample {
	var n int
	for _, w := range s.Workouts {
		n += len(w.Samples)
	}
	out := make([]HeartRateSample, 0, n)
	for _, w := range s.Workouts {
		out = append(out, w.Samples...)
	}
	return out
}

// SleepLog is the loader result for sleep sessions, oldest first.
type SleepLog struct {
	Sessions []SleepSession
	Skipped  int
}

// Latest returns the most recent session, if any.
func (l SleepLog) Latest() (SleepSession, bool) {
	if len(l.Sessions) == 0 {
		return SleepSession{}, false
	}
	return l.Sessions[len(l.Sessions)-1], true
}

// ScalarSeries is the loader result for a scalar metric window.
// Samples are ordered most-recent-first.
type ScalarSeries struct {
	Metric  string
	Samples []ScalarSample
	Skipped int
}

// WorkoutHeartRate is the peak heart rate recorded for a single workout.
type WorkoutHeartRate struct {
	WorkoutID    uuid.UUID `json:"workout_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Type         string    `json:"type"`
	MaxHeartRate float64   `json:"max_heart_rate"`
}

// HeartRateSummary holds the Min/Avg/Max samples of a workout.
type HeartRateSummary struct {
	Min *float64 `json:"min,omitempty"`
	Avg *float64 `json:"avg,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// LastWorkout is the most recently finished workout with its HR summary.
type LastWorkout struct {
	ID        uuid.UUID         `json:"id"`
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	Type      string            `json:"type"`
	HeartRate *HeartRateSummary `json:"heart_rate,omitempty"`
}
