package mcp

import (
	"log/slog"
	"time"

	"github.com/claude/trainready/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TrainReady", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TrainReady training-load server. Query training load (fitness, fatigue, form), readiness, recovery forecasts, heart-rate zones, sleep and recovery signals. Scores are 0-100; higher means more ready to train."),
	)

	h := &handlers{ds: ds, log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetDailyReport, Handler: h.getDailyReport},
		server.ServerTool{Tool: toolGetLoadSeries, Handler: h.getLoadSeries},
		server.ServerTool{Tool: toolGetRecoveryForecast, Handler: h.getRecoveryForecast},
		server.ServerTool{Tool: toolGetHRZones, Handler: h.getHRZones},
		server.ServerTool{Tool: toolGetSleepSummary, Handler: h.getSleepSummary},
		server.ServerTool{Tool: toolGetRHRTrend, Handler: h.metricTrend(storage.MetricRestingHR)},
		server.ServerTool{Tool: toolGetHRVTrend, Handler: h.metricTrend(storage.MetricHRV)},
		server.ServerTool{Tool: toolGetVO2MaxTrend, Handler: h.metricTrend(storage.MetricVO2Max)},
		server.ServerTool{Tool: toolGetMetricAverage, Handler: h.getMetricAverage},
		server.ServerTool{Tool: toolDetectFatiguePattern, Handler: h.detectFatiguePattern},
		server.ServerTool{Tool: toolGetMaxHRWorkout, Handler: h.getMaxHRWorkout},
		server.ServerTool{Tool: toolGetLastWorkout, Handler: h.getLastWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resDailyReport, Handler: h.dailyReport},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

// --- Resource definitions ---

var resDailyReport = mcp.NewResource(
	"trainready://daily_report",
	"Daily Report",
	mcp.WithResourceDescription("Today's training load, readiness score, recovery forecast, heart-rate zones and daily workout energy"),
	mcp.WithMIMEType("application/json"),
)
