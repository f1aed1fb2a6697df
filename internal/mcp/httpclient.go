package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/models"
	"github.com/claude/trainready/internal/report"
)

// HTTPClient implements DataSource by calling the TrainReady REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, models.ErrNotFound)
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

// getJSON fetches path and decodes the response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func daysParams(days int) url.Values {
	v := url.Values{}
	v.Set("days", strconv.Itoa(days))
	return v
}

// Daily fetches the server's report for today. The remote server uses its
// own clock, so now is ignored.
func (c *HTTPClient) Daily(ctx context.Context, _ time.Time) (*report.DailyReport, error) {
	var r report.DailyReport
	if err := c.getJSON(ctx, "/api/v1/report", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) SleepSummary(ctx context.Context, days int) (analytics.SleepSummary, error) {
	var s analytics.SleepSummary
	err := c.getJSON(ctx, "/api/v1/sleep/summary", daysParams(days), &s)
	return s, err
}

func (c *HTTPClient) MetricTrend(ctx context.Context, metric string, days int) (*report.MetricTrend, error) {
	var t report.MetricTrend
	if err := c.getJSON(ctx, "/api/v1/metrics/"+url.PathEscape(metric)+"/trend", daysParams(days), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) MetricAverage(ctx context.Context, metric string, days int) (analytics.MetricAverage, error) {
	var a analytics.MetricAverage
	err := c.getJSON(ctx, "/api/v1/metrics/"+url.PathEscape(metric)+"/average", daysParams(days), &a)
	return a, err
}

func (c *HTTPClient) FatiguePattern(ctx context.Context) (analytics.FatiguePattern, error) {
	var p analytics.FatiguePattern
	err := c.getJSON(ctx, "/api/v1/fatigue", nil, &p)
	return p, err
}

func (c *HTTPClient) MaxHRWorkout(ctx context.Context) (*models.WorkoutHeartRate, error) {
	var w models.WorkoutHeartRate
	if err := c.getJSON(ctx, "/api/v1/workouts/max-hr", nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) LastWorkout(ctx context.Context) (*models.LastWorkout, error) {
	var w models.LastWorkout
	if err := c.getJSON(ctx, "/api/v1/workouts/latest", nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}
