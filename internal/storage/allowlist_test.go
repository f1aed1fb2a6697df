package storage

import (
	"errors"
	"testing"

	"github.com/claude/trainready/internal/models"
)

// TestMetricAllowlist verifies only known tables pass the allowlist.
func TestMetricAllowlist(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{MetricRestingHR, true},
		{MetricHRV, true},
		{MetricVO2Max, true},
		{MetricSteps, true},
		{"workouts", false},
		{"resting_heart_rate; --", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMetricAllowed(tt.name); got != tt.want {
			t.Errorf("IsMetricAllowed(%q) = %v, want %v", tt.name, got, tt.want)
		}
		err := checkMetric(tt.name)
		if tt.want && err != nil {
			t.Errorf("checkMetric(%q) = %v", tt.name, err)
		}
		if !tt.want && !errors.Is(err, models.ErrUnknownMetric) {
			t.Errorf("checkMetric(%q) = %v, want ErrUnknownMetric", tt.name, err)
		}
	}
}

// TestAllowedMetricsSorted verifies the listing is ordered by category then name.
func TestAllowedMetricsSorted(t *testing.T) {
	got := AllowedMetrics()
	if len(got) != len(metricAllowlist) {
		t.Fatalf("got %d metrics, want %d", len(got), len(metricAllowlist))
	}
	for i := 1; i < len(got); i++ {
		a, b := got[i-1], got[i]
		if a.Category > b.Category || (a.Category == b.Category && a.MetricName >= b.MetricName) {
			t.Errorf("out of order at %d: %+v before %+v", i, a, b)
		}
	}
	if got[0].Category != "activity" {
		t.Errorf("first category = %q, want activity", got[0].Category)
	}
}

// TestSummarizeHeartRate covers the Min/Avg/Max reduction.
func TestSummarizeHeartRate(t *testing.T) {
	if got := summarizeHeartRate(nil); got != nil {
		t.Errorf("empty = %+v, want nil", got)
	}
	if got := summarizeHeartRate([]models.HeartRateSample{{Value: 120, Kind: models.HRRaw}}); got != nil {
		t.Errorf("raw only = %+v, want nil", got)
	}
	got := summarizeHeartRate([]models.HeartRateSample{
		{Value: 150, Kind: models.HRMax},
		{Value: 100, Kind: models.HRMin},
		{Value: 130, Kind: models.HRAvg},
		{Value: 90, Kind: models.HRMin},
	})
	if got == nil || *got.Min != 90 || *got.Max != 150 || *got.Avg != 130 {
		t.Errorf("summary = %+v", got)
	}
}
