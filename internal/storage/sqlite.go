package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/claude/trainready/internal/models"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// sqliteTimeLayout is the fixed-width UTC layout timestamps are compared in.
const sqliteTimeLayout = "2006-01-02T15:04:05.000Z"

// sqliteReadLayouts are tried in order when decoding stored timestamps.
var sqliteReadLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// SQLite reads signal tables from a local SQLite file. Quantities and
// timestamps are stored as text, so every value is decoded explicitly and
// rows that fail to decode are skipped. Windows and orderings compare
// julianday() values so mixed timestamp layouts sort by instant.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}
	return &SQLite{db: db, log: log}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Migrate applies all pending embedded SQLite migrations.
func (s *SQLite) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	defer src.Close()

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}
	// The migrator is not closed: closing it would close s.db.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Exec runs a statement against the database.
func (s *SQLite) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Workouts returns workouts starting at or after since, oldest first, with
// their heart-rate samples attached.
func (s *SQLite) Workouts(ctx context.Context, since time.Time) (models.WorkoutSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start, "end", type, duration_min, energy_kcal, distance_km, steps
		 FROM workouts
		 WHERE julianday(start) >= julianday(?) OR julianday(start) IS NULL
		 ORDER BY julianday(start) ASC`,
		sqliteTime(since))
	if err != nil {
		return models.WorkoutSet{}, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var set models.WorkoutSet
	for rows.Next() {
		var id, start, end, typ string
		var duration, energy, distance, steps sql.NullString
		if err := rows.Scan(&id, &start, &end, &typ, &duration, &energy, &distance, &steps); err != nil {
			return models.WorkoutSet{}, fmt.Errorf("scanning workout: %w", err)
		}

		w, ok := decodeWorkout(id, start, end, typ, duration, energy, distance, steps)
		if !ok {
			set.Skipped++
			continue
		}
		set.Workouts = append(set.Workouts, w)
	}
	if err := rows.Err(); err != nil {
		return models.WorkoutSet{}, fmt.Errorf("reading workouts: %w", err)
	}

	samples, skipped, err := s.workoutSamples(ctx, since)
	if err != nil {
		return models.WorkoutSet{}, err
	}
	set.Skipped += skipped
	attachSamples(&set, samples)

	if set.Skipped > 0 {
		s.log.Warn("skipped malformed workout rows", "count", set.Skipped)
	}
	return set, nil
}

func decodeWorkout(id, start, end, typ string, duration, energy, distance, steps sql.NullString) (models.Workout, bool) {
	var (
		w   models.Workout
		err error
	)
	if w.ID, err = uuid.Parse(id); err != nil {
		return w, false
	}
	if w.Start, err = parseSQLiteTime(start); err != nil {
		return w, false
	}
	if w.End, err = parseSQLiteTime(end); err != nil {
		return w, false
	}
	d, ok := parseOptional(duration)
	if !ok || !validDuration(d) {
		return w, false
	}
	w.DurationMin = *d
	w.Type = typ

	if w.EnergyKcal, ok = parseOptional(energy); !ok || !validEnergy(w.EnergyKcal) {
		return w, false
	}
	if w.DistanceKm, ok = parseOptional(distance); !ok {
		return w, false
	}
	if w.Steps, ok = parseOptional(steps); !ok {
		return w, false
	}
	return w, true
}

func (s *SQLite) workoutSamples(ctx context.Context, since time.Time) ([]models.HeartRateSample, int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT h.workout_id, h.timestamp, h.qty, h.type
		 FROM heart_rate_workout_data h
		 JOIN workouts w ON w.id = h.workout_id
		 WHERE julianday(w.start) >= julianday(?)
		 ORDER BY julianday(h.timestamp) ASC`,
		sqliteTime(since))
	if err != nil {
		return nil, 0, fmt.Errorf("querying workout heart rate: %w", err)
	}
	defer rows.Close()

	var (
		samples []models.HeartRateSample
		skipped int
	)
	for rows.Next() {
		var id, ts, kind string
		var qty sql.NullString
		if err := rows.Scan(&id, &ts, &qty, &kind); err != nil {
			return nil, 0, fmt.Errorf("scanning workout heart rate: %w", err)
		}

		workoutID, err := uuid.Parse(id)
		if err != nil {
			skipped++
			continue
		}
		t, err := parseSQLiteTime(ts)
		if err != nil {
			skipped++
			continue
		}
		v, ok := parseOptional(qty)
		if !ok || !validHeartRate(v) {
			skipped++
			continue
		}
		samples = append(samples, models.HeartRateSample{WorkoutID: workoutID, Time: t, Value: *v, Kind: models.HRKind(kind)})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading workout heart rate: %w", err)
	}
	return samples, skipped, nil
}

// SleepSessions returns sleep sessions starting at or after since, oldest first.
func (s *SQLite) SleepSessions(ctx context.Context, since time.Time) (models.SleepLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start, "end", duration_min
		 FROM sleep_data
		 WHERE julianday(start) >= julianday(?) OR julianday(start) IS NULL
		 ORDER BY julianday(start) ASC`,
		sqliteTime(since))
	if err != nil {
		return models.SleepLog{}, fmt.Errorf("querying sleep sessions: %w", err)
	}
	defer rows.Close()

	var out models.SleepLog
	for rows.Next() {
		var start, end string
		var duration sql.NullString
		if err := rows.Scan(&start, &end, &duration); err != nil {
			return models.SleepLog{}, fmt.Errorf("scanning sleep session: %w", err)
		}

		st, errStart := parseSQLiteTime(start)
		en, errEnd := parseSQLiteTime(end)
		d, ok := parseOptional(duration)
		if errStart != nil || errEnd != nil || !ok || !validDuration(d) {
			out.Skipped++
			continue
		}
		out.Sessions = append(out.Sessions, models.SleepSession{Start: st, End: en, DurationMin: *d})
	}
	if err := rows.Err(); err != nil {
		return models.SleepLog{}, fmt.Errorf("reading sleep sessions: %w", err)
	}

	if out.Skipped > 0 {
		s.log.Warn("skipped malformed sleep rows", "count", out.Skipped)
	}
	return out, nil
}

// RecentSamples returns up to limit of the most recent samples of a scalar
// metric, most recent first.
func (s *SQLite) RecentSamples(ctx context.Context, metric string, limit int) (models.ScalarSeries, error) {
	if err := checkMetric(metric); err != nil {
		return models.ScalarSeries{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT timestamp, qty FROM %s ORDER BY julianday(timestamp) DESC LIMIT ?`, metric),
		limit)
	if err != nil {
		return models.ScalarSeries{}, fmt.Errorf("querying %s: %w", metric, err)
	}
	defer rows.Close()

	return s.scanScalars(metric, rows)
}

// SamplesSince returns every sample of a scalar metric at or after since,
// most recent first.
func (s *SQLite) SamplesSince(ctx context.Context, metric string, since time.Time) (models.ScalarSeries, error) {
	if err := checkMetric(metric); err != nil {
		return models.ScalarSeries{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT timestamp, qty FROM %s
			 WHERE julianday(timestamp) >= julianday(?) OR julianday(timestamp) IS NULL
			 ORDER BY julianday(timestamp) DESC`, metric),
		sqliteTime(since))
	if err != nil {
		return models.ScalarSeries{}, fmt.Errorf("querying %s: %w", metric, err)
	}
	defer rows.Close()

	return s.scanScalars(metric, rows)
}

func (s *SQLite) scanScalars(metric string, rows *sql.Rows) (models.ScalarSeries, error) {
	series := models.ScalarSeries{Metric: metric}
	for rows.Next() {
		var ts string
		var qty sql.NullString
		if err := rows.Scan(&ts, &qty); err != nil {
			return models.ScalarSeries{}, fmt.Errorf("scanning %s: %w", metric, err)
		}

		t, err := parseSQLiteTime(ts)
		v, ok := parseOptional(qty)
		if err != nil || !ok || !validQty(v) {
			series.Skipped++
			continue
		}
		series.Samples = append(series.Samples, models.ScalarSample{Time: t, Qty: *v})
	}
	if err := rows.Err(); err != nil {
		return models.ScalarSeries{}, fmt.Errorf("reading %s: %w", metric, err)
	}

	if series.Skipped > 0 {
		s.log.Warn("skipped malformed metric rows", "metric", metric, "count", series.Skipped)
	}
	return series, nil
}

// MaxHRWorkout returns the workout holding the highest "Max" heart-rate
// sample. It returns models.ErrNotFound when there is none.
func (s *SQLite) MaxHRWorkout(ctx context.Context) (*models.WorkoutHeartRate, error) {
	var id, start, end, typ, qty string
	err := s.db.QueryRowContext(ctx,
		`SELECT h.workout_id, w.start, w."end", w.type, h.qty
		 FROM heart_rate_workout_data h
		 JOIN workouts w ON w.id = h.workout_id
		 WHERE h.type = 'Max' AND CAST(h.qty AS REAL) > 0 AND CAST(h.qty AS REAL) < 1e308
		 ORDER BY CAST(h.qty AS REAL) DESC
		 LIMIT 1`).Scan(&id, &start, &end, &typ, &qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("querying max heart rate workout: %w", err)
	}

	r := models.WorkoutHeartRate{Type: typ}
	if r.WorkoutID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decoding workout id %q: %w", id, err)
	}
	if r.Start, err = parseSQLiteTime(start); err != nil {
		return nil, fmt.Errorf("decoding workout start: %w", err)
	}
	if r.End, err = parseSQLiteTime(end); err != nil {
		return nil, fmt.Errorf("decoding workout end: %w", err)
	}
	v, ok := parseOptional(sql.NullString{String: qty, Valid: true})
	if !ok || !validHeartRate(v) {
		return nil, fmt.Errorf("decoding max heart rate %q", qty)
	}
	r.MaxHeartRate = *v
	return &r, nil
}

// LastWorkout returns the most recently finished workout with a summary of
// its Min/Avg/Max samples. It returns models.ErrNotFound when there is none.
func (s *SQLite) LastWorkout(ctx context.Context) (*models.LastWorkout, error) {
	var id, start, end, typ string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, start, "end", type
		 FROM workouts
		 ORDER BY julianday("end") DESC
		 LIMIT 1`).Scan(&id, &start, &end, &typ)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("querying last workout: %w", err)
	}

	w := models.LastWorkout{Type: typ}
	if w.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decoding workout id %q: %w", id, err)
	}
	if w.Start, err = parseSQLiteTime(start); err != nil {
		return nil, fmt.Errorf("decoding workout start: %w", err)
	}
	if w.End, err = parseSQLiteTime(end); err != nil {
		return nil, fmt.Errorf("decoding workout end: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT type, qty
		 FROM heart_rate_workout_data
		 WHERE workout_id = ? AND type IN ('Min', 'Avg', 'Max')`,
		id)
	if err != nil {
		return nil, fmt.Errorf("querying last workout heart rate: %w", err)
	}
	defer rows.Close()

	var samples []models.HeartRateSample
	for rows.Next() {
		var kind string
		var qty sql.NullString
		if err := rows.Scan(&kind, &qty); err != nil {
			return nil, fmt.Errorf("scanning last workout heart rate: %w", err)
		}
		if v, ok := parseOptional(qty); ok && validHeartRate(v) {
			samples = append(samples, models.HeartRateSample{WorkoutID: w.ID, Value: *v, Kind: models.HRKind(kind)})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading last workout heart rate: %w", err)
	}

	w.HeartRate = summarizeHeartRate(samples)
	return &w, nil
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range sqliteReadLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseOptional decodes a nullable numeric text column. NULL and empty
// strings decode to nil; anything unparseable or non-finite reports ok == false.
func parseOptional(v sql.NullString) (*float64, bool) {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String), 64)
	if err != nil || !finite(f) {
		return nil, false
	}
	return &f, true
}
