package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/trainready/internal/config"
	"github.com/claude/trainready/internal/models"
)

// TestOpenSQLite verifies the sqlite driver is opened and migrated.
func TestOpenSQLite(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "open.db")}

	b, closeFn, err := Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	set, err := b.Workouts(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Workouts on fresh database: %v", err)
	}
	if len(set.Workouts) != 0 {
		t.Errorf("workouts = %d, want 0", len(set.Workouts))
	}
	if _, err := b.LastWorkout(context.Background()); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("LastWorkout err = %v, want ErrNotFound", err)
	}
}

// TestOpenUnknownDriver verifies unsupported drivers are rejected.
func TestOpenUnknownDriver(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, _, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"}, log); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
