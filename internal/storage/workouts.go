package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/trainready/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Workouts returns workouts starting at or after since, oldest first, with
// their heart-rate samples attached. Rows with a missing or negative
// duration and samples with a missing or non-positive value are skipped.
func (db *DB) Workouts(ctx context.Context, since time.Time) (models.WorkoutSet, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, start, "end", type, duration_min, energy_kcal, distance_km, steps
		 FROM workouts
		 WHERE start >= $1
		 ORDER BY start ASC`,
		since)
	if err != nil {
		return models.WorkoutSet{}, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var set models.WorkoutSet
	for rows.Next() {
		var (
			w        models.Workout
			duration *float64
		)
		if err := rows.Scan(&w.ID, &w.Start, &w.End, &w.Type, &duration, &w.EnergyKcal, &w.DistanceKm, &w.Steps); err != nil {
			return models.WorkoutSet{}, fmt.Errorf("scanning workout: %w", err)
		}
		if !validDuration(duration) || !validEnergy(w.EnergyKcal) {
			set.Skipped++
			continue
		}
		w.DurationMin = *duration
		set.Workouts = append(set.Workouts, w)
	}
	if err := rows.Err(); err != nil {
		return models.WorkoutSet{}, fmt.Errorf("reading workouts: %w", err)
	}

	samples, skipped, err := db.workoutSamples(ctx, since)
	if err != nil {
		return models.WorkoutSet{}, err
	}
	set.Skipped += skipped
	attachSamples(&set, samples)

	if set.Skipped > 0 {
		db.log.Warn("skipped malformed workout rows", "count", set.Skipped)
	}
	return set, nil
}

func (db *DB) workoutSamples(ctx context.Context, since time.Time) ([]models.HeartRateSample, int, error) {
	rows, err := db.q.Query(ctx,
		`SELECT h.workout_id, h.timestamp, h.qty, h.type
		 FROM heart_rate_workout_data h
		 JOIN workouts w ON w.id = h.workout_id
		 WHERE w.start >= $1
		 ORDER BY h.timestamp ASC`,
		since)
	if err != nil {
		return nil, 0, fmt.Errorf("querying workout heart rate: %w", err)
	}
	defer rows.Close()

	var (
		samples []models.HeartRateSample
		skipped int
	)
	for rows.Next() {
		var (
			s    models.HeartRateSample
			qty  *float64
			kind string
		)
		if err := rows.Scan(&s.WorkoutID, &s.Time, &qty, &kind); err != nil {
			return nil, 0, fmt.Errorf("scanning workout heart rate: %w", err)
		}
		if !validHeartRate(qty) {
			skipped++
			continue
		}
		s.Value = *qty
		s.Kind = models.HRKind(kind)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading workout heart rate: %w", err)
	}
	return samples, skipped, nil
}

// MaxHRWorkout returns the workout holding the highest "Max" heart-rate
// sample. It returns models.ErrNotFound when there is none.
func (db *DB) MaxHRWorkout(ctx context.Context) (*models.WorkoutHeartRate, error) {
	var r models.WorkoutHeartRate
	err := db.q.QueryRow(ctx,
		`SELECT h.workout_id, w.start, w."end", w.type, h.qty
		 FROM heart_rate_workout_data h
		 JOIN workouts w ON w.id = h.workout_id
		 WHERE h.type = 'Max' AND h.qty > 0 AND h.qty < 'Infinity'
		 ORDER BY h.qty DESC
		 LIMIT 1`).Scan(&r.WorkoutID, &r.Start, &r.End, &r.Type, &r.MaxHeartRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("querying max heart rate workout: %w", err)
	}
	return &r, nil
}

// LastWorkout returns the most recently finished workout with a summary of
// its Min/Avg/Max samples. It returns models.ErrNotFound when there is none.
func (db *DB) LastWorkout(ctx context.Context) (*models.LastWorkout, error) {
	var w models.LastWorkout
	err := db.q.QueryRow(ctx,
		`SELECT id, start, "end", type
		 FROM workouts
		 ORDER BY "end" DESC
		 LIMIT 1`).Scan(&w.ID, &w.Start, &w.End, &w.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("querying last workout: %w", err)
	}

	rows, err := db.q.Query(ctx,
		`SELECT type, qty
		 FROM heart_rate_workout_data
		 WHERE workout_id = $1 AND type IN ('Min', 'Avg', 'Max')`,
		w.ID)
	if err != nil {
		return nil, fmt.Errorf("querying last workout heart rate: %w", err)
	}
	defer rows.Close()

	var samples []models.HeartRateSample
	for rows.Next() {
		var (
			kind string
			qty  *float64
		)
		if err := rows.Scan(&kind, &qty); err != nil {
			return nil, fmt.Errorf("scanning last workout heart rate: %w", err)
		}
		if validHeartRate(qty) {
			samples = append(samples, models.HeartRateSample{WorkoutID: w.ID, Value: *qty, Kind: models.HRKind(kind)})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading last workout heart rate: %w", err)
	}

	w.HeartRate = summarizeHeartRate(samples)
	return &w, nil
}

// attachSamples distributes samples onto their workouts by id. Samples of
// workouts outside the set are dropped.
func attachSamples(set *models.WorkoutSet, samples []models.HeartRateSample) {
	index := make(map[uuid.UUID]int, len(set.Workouts))
	for i, w := range set.Workouts {
		index[w.ID] = i
	}
	for _, s := range samples {
		if i, ok := index[s.WorkoutID]; ok {
			set.Workouts[i].Samples = append(set.Workouts[i].Samples, s)
		}
	}
}
