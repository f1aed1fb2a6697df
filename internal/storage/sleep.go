package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/trainready/internal/models"
)

// SleepSessions returns sleep sessions starting at or after since, oldest
// first. Rows with a missing or negative duration are skipped.
func (db *DB) SleepSessions(ctx context.Context, since time.Time) (models.SleepLog, error) {
	rows, err := db.q.Query(ctx,
		`SELECT start, "end", duration_min
		 FROM sleep_data
		 WHERE start >= $1
		 ORDER BY start ASC`,
		since)
	if err != nil {
		return models.SleepLog{}, fmt.Errorf("querying sleep sessions: %w", err)
	}
	defer rows.Close()

	var out models.SleepLog
	for rows.Next() {
		var (
			s        models.SleepSession
			duration *float64
		)
		if err := rows.Scan(&s.Start, &s.End, &duration); err != nil {
			return models.SleepLog{}, fmt.Errorf("scanning sleep session: %w", err)
		}
		if !validDuration(duration) {
			out.Skipped++
			continue
		}
		s.DurationMin = *duration
		out.Sessions = append(out.Sessions, s)
	}
	if err := rows.Err(); err != nil {
		return models.SleepLog{}, fmt.Errorf("reading sleep sessions: %w", err)
	}

	if out.Skipped > 0 {
		db.log.Warn("skipped malformed sleep rows", "count", out.Skipped)
	}
	return out, nil
}
