package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/trainready/internal/config"
	"github.com/claude/trainready/internal/models"
)

// Backend is the read surface shared by DB and SQLite.
type Backend interface {
	Workouts(ctx context.Context, since time.Time) (models.WorkoutSet, error)
	SleepSessions(ctx context.Context, since time.Time) (models.SleepLog, error)
	RecentSamples(ctx context.Context, metric string, limit int) (models.ScalarSeries, error)
	SamplesSince(ctx context.Context, metric string, since time.Time) (models.ScalarSeries, error)
	MaxHRWorkout(ctx context.Context) (*models.WorkoutHeartRate, error)
	LastWorkout(ctx context.Context) (*models.LastWorkout, error)
}

var (
	_ Backend = (*DB)(nil)
	_ Backend = (*SQLite)(nil)
)

// Open migrates and connects the configured database. The returned func
// releases the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (Backend, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.Path, log)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, nil, err
		}
		log.Info("sqlite database ready", "path", cfg.Path)
		return s, func() { _ = s.Close() }, nil

	case config.DriverPostgres, "":
		dsn := cfg.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, nil, err
		}
		db, err := New(ctx, dsn, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connected", "host", cfg.Host, "name", cfg.Name)
		return db, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
