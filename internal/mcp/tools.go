package mcp

import (
	"context"
	"errors"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// maxDays bounds the days argument of windowed tools.
const maxDays = 365

// daysArg reads the days argument, falling back to def.
func daysArg(req mcp.CallToolRequest, def int) (int, bool) {
	days := req.GetInt("days", def)
	return days, days >= 1 && days <= maxDays
}

func metricNames() []string {
	allowed := storage.AllowedMetrics()
	names := make([]string, len(allowed))
	for i, m := range allowed {
		names[i] = m.MetricName
	}
	return names
}

// --- Tool definitions ---

var toolGetDailyReport = mcp.NewTool("get_daily_report",
	mcp.WithDescription("Full daily report: weekly TRIMP load, fitness/fatigue/form series, readiness score with sub-scores and labels, 3-day recovery forecast, heart-rate zone distribution and daily workout energy."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetLoadSeries = mcp.NewTool("get_load_series",
	mcp.WithDescription("Weekly training load (TRIMP) and the fitness (CTL), fatigue (ATL) and form (TSB = fitness - fatigue) series, oldest week first."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetRecoveryForecast = mcp.NewTool("get_recovery_forecast",
	mcp.WithDescription("Predicted recovery score (0-100) for each of the next days, with today's readiness for context. Empty when fewer than three resting heart rate or HRV samples exist."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetHRZones = mcp.NewTool("get_hr_zones",
	mcp.WithDescription("Distribution of workout heart-rate samples over five zones (50-60, 60-70, 70-80, 80-90, 90-100 %) with bpm bounds."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetSleepSummary = mcp.NewTool("get_sleep_summary",
	mcp.WithDescription("Sleep over the last days: nights recorded, average hours, last night and number of nights under six hours."),
	mcp.WithNumber("days", mcp.Description("Number of days to look back. Defaults to 7."), mcp.Min(1), mcp.Max(maxDays)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetRHRTrend = mcp.NewTool("get_rhr_trend",
	mcp.WithDescription("Daily average resting heart rate (bpm) over the last days."),
	mcp.WithNumber("days", mcp.Description("Number of days to look back. Defaults to 30."), mcp.Min(1), mcp.Max(maxDays)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetHRVTrend = mcp.NewTool("get_hrv_trend",
	mcp.WithDescription("Daily average heart rate variability (ms) over the last days."),
	mcp.WithNumber("days", mcp.Description("Number of days to look back. Defaults to 30."), mcp.Min(1), mcp.Max(maxDays)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetVO2MaxTrend = mcp.NewTool("get_vo2_max_trend",
	mcp.WithDescription("Daily average VO2 max (ml/kg/min) over the last days."),
	mcp.WithNumber("days", mcp.Description("Number of days to look back. Defaults to 30."), mcp.Min(1), mcp.Max(maxDays)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetMetricAverage = mcp.NewTool("get_metric_average",
	mcp.WithDescription("Average of a scalar health metric over the last days and the number of records used."),
	mcp.WithString("metric", mcp.Required(), mcp.Description("Metric name"), mcp.Enum(metricNames()...)),
	mcp.WithNumber("days", mcp.Description("Number of days to look back. Defaults to 7."), mcp.Min(1), mcp.Max(maxDays)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolDetectFatiguePattern = mcp.NewTool("detect_fatigue_pattern",
	mcp.WithDescription("Checks the last three days for combined fatigue: elevated resting heart rate (>60), low HRV (<40), short sleep (<6.5h) and low activity (<4000 steps). Lists every signal out of range."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetMaxHRWorkout = mcp.NewTool("get_max_hr_workout",
	mcp.WithDescription("The workout with the highest recorded maximum heart rate."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toolGetLastWorkout = mcp.NewTool("get_last_workout",
	mcp.WithDescription("The most recent workout with its min/avg/max heart rate."),
	mcp.WithReadOnlyHintAnnotation(true),
)

// --- Tool handlers ---

func (h *handlers) getDailyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := h.ds.Daily(ctx, h.now())
	if err != nil {
		h.log.Error("mcp get_daily_report", "error", err)
		return mcp.NewToolResultError("report failed: " + err.Error()), nil
	}
	return toolJSON(rep)
}

func (h *handlers) getLoadSeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := h.ds.Daily(ctx, h.now())
	if err != nil {
		h.log.Error("mcp get_load_series", "error", err)
		return mcp.NewToolResultError("report failed: " + err.Error()), nil
	}
	return toolJSON(map[string]any{
		"trimp_mode":  rep.TRIMPMode,
		"load_model":  rep.LoadModel,
		"weekly_load": rep.WeeklyLoad,
		"load_states": rep.LoadStates,
		"current":     rep.Current,
		"form_state":  analytics.FormState(rep.Current.Form),
	})
}

func (h *handlers) getRecoveryForecast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := h.ds.Daily(ctx, h.now())
	if err != nil {
		h.log.Error("mcp get_recovery_forecast", "error", err)
		return mcp.NewToolResultError("report failed: " + err.Error()), nil
	}
	return toolJSON(map[string]any{
		"date":      rep.Date,
		"readiness": rep.Readiness,
		"forecast":  rep.Forecast,
	})
}

func (h *handlers) getHRZones(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := h.ds.Daily(ctx, h.now())
	if err != nil {
		h.log.Error("mcp get_hr_zones", "error", err)
		return mcp.NewToolResultError("report failed: " + err.Error()), nil
	}
	return toolJSON(rep.Zones)
}

func (h *handlers) getSleepSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, ok := daysArg(req, 7)
	if !ok {
		return mcp.NewToolResultError("days must be between 1 and 365"), nil
	}

	sum, err := h.ds.SleepSummary(ctx, days)
	if err != nil {
		h.log.Error("mcp get_sleep_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(sum)
}

// metricTrend returns a handler for a fixed-metric trend tool.
func (h *handlers) metricTrend(metric string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days, ok := daysArg(req, 30)
		if !ok {
			return mcp.NewToolResultError("days must be between 1 and 365"), nil
		}

		trend, err := h.ds.MetricTrend(ctx, metric, days)
		if err != nil {
			h.log.Error("mcp metric trend", "metric", metric, "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		return toolJSON(trend)
	}
}

func (h *handlers) getMetricAverage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := req.RequireString("metric")
	if err != nil {
		return mcp.NewToolResultError("metric parameter is required"), nil
	}
	days, ok := daysArg(req, 7)
	if !ok {
		return mcp.NewToolResultError("days must be between 1 and 365"), nil
	}

	avg, err := h.ds.MetricAverage(ctx, metric, days)
	if err != nil {
		if errors.Is(err, models.ErrUnknownMetric) {
			return mcp.NewToolResultError("unknown metric: " + metric), nil
		}
		h.log.Error("mcp get_metric_average", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(avg)
}

func (h *handlers) detectFatiguePattern(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.FatiguePattern(ctx)
	if err != nil {
		h.log.Error("mcp detect_fatigue_pattern", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(p)
}

func (h *handlers) getMaxHRWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, err := h.ds.MaxHRWorkout(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return mcp.NewToolResultError("no workouts with heart-rate data recorded"), nil
		}
		h.log.Error("mcp get_max_hr_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(w)
}

func (h *handlers) getLastWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, err := h.ds.LastWorkout(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return mcp.NewToolResultError("no workouts recorded"), nil
		}
		h.log.Error("mcp get_last_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(w)
}

func toolJSON[T any](v T) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
