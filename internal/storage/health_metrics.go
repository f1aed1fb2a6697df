package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/trainready/internal/models"
	"github.com/jackc/pgx/v5"
)

// RecentSamples returns up to limit of the most recent samples of a scalar
// metric, most recent first.
func (db *DB) RecentSamples(ctx context.Context, metric string, limit int) (models.ScalarSeries, error) {
	if err := checkMetric(metric); err != nil {
		return models.ScalarSeries{}, err
	}
	rows, err := db.q.Query(ctx,
		fmt.Sprintf(`SELECT timestamp, qty FROM %s ORDER BY timestamp DESC LIMIT $1`, metric),
		limit)
	if err != nil {
		return models.ScalarSeries{}, fmt.Errorf("querying %s: %w", metric, err)
	}
	defer rows.Close()

	return db.scanScalars(metric, rows)
}

// SamplesSince returns every sample of a scalar metric at or after since,
// most recent first.
func (db *DB) SamplesSince(ctx context.Context, metric string, since time.Time) (models.ScalarSeries, error) {
	if err := checkMetric(metric); err != nil {
		return models.ScalarSeries{}, err
	}
	rows, err := db.q.Query(ctx,
		fmt.Sprintf(`SELECT timestamp, qty FROM %s WHERE timestamp >= $1 ORDER BY timestamp DESC`, metric),
		since)
	if err != nil {
		return models.ScalarSeries{}, fmt.Errorf("querying %s: %w", metric, err)
	}
	defer rows.Close()

	return db.scanScalars(metric, rows)
}

func (db *DB) scanScalars(metric string, rows pgx.Rows) (models.ScalarSeries, error) {
	series := models.ScalarSeries{Metric: metric}
	for rows.Next() {
		var (
			ts  time.Time
			qty *float64
		)
		if err := rows.Scan(&ts, &qty); err != nil {
			return models.ScalarSeries{}, fmt.Errorf("scanning %s: %w", metric, err)
		}
		if !validQty(qty) {
			series.Skipped++
			continue
		}
		series.Samples = append(series.Samples, models.ScalarSample{Time: ts, Qty: *qty})
	}
	if err := rows.Err(); err != nil {
		return models.ScalarSeries{}, fmt.Errorf("reading %s: %w", metric, err)
	}

	if series.Skipped > 0 {
		db.log.Warn("skipped malformed metric rows", "metric", metric, "count", series.Skipped)
	}
	return series, nil
}
