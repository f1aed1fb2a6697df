package mcp

import (
	"context"
	"time"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/report"
)

// DataSource abstracts the analytics layer for MCP tools. Both
// *report.Service (local) and HTTPClient (remote via REST API) satisfy
// this interface.
type DataSource interface {
	Daily(ctx context.Context, now time.Time) (*report.DailyReport, error)
	SleepSummary(ctx context.Context, days int) (analytics.SleepSummary, error)
	MetricTrend(ctx context.Context, metric string, days int) (*report.MetricTrend, error)
	MetricAverage(ctx context.Context, metric string, days int) (analytics.MetricAverage, error)
	FatiguePattern(ctx context.Context) (analytics.FatiguePattern, error)
	MaxHRWorkout(ctx context.Context) (*models.WorkoutHeartRate, error)
	LastWorkout(ctx context.Context) (*models.LastWorkout, error)
}

// Compile-time check: *report.Service satisfies DataSource.
var _ DataSource = (*report.Service)(nil)
