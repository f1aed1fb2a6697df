package storage

import (
	"fmt"
	"sort"

	"github.com/claude/trainready/internal/models"
)

// Scalar metric tables. Each holds (timestamp, qty, source) rows.
const (
	MetricRestingHR       = "resting_heart_rate"
	MetricHRV             = "heart_rate_variability"
	MetricSteps           = "step_count"
	MetricVO2Max          = "vo2_max"
	MetricOxygen          = "oxygen_saturation"
	MetricRespiratoryRate = "respiratory_rate"
	MetricWalkingSpeed    = "walking_speed"
	MetricActiveEnergy    = "active_energy"
	MetricCardioRecovery  = "cardio_recovery"
)

// AllowedMetric represents an entry in the metric allowlist.
type AllowedMetric struct {
	MetricName string `json:"metric_name"`
	Category   string `json:"category"`
}

// metricAllowlist maps every queryable scalar table to its category.
// Table names are interpolated into SQL, so nothing outside this map may
// reach a query.
var metricAllowlist = map[string]string{
	MetricRestingHR:       "cardio",
	MetricHRV:             "cardio",
	MetricCardioRecovery:  "cardio",
	MetricVO2Max:          "fitness",
	MetricWalkingSpeed:    "fitness",
	MetricSteps:           "activity",
	MetricActiveEnergy:    "activity",
	MetricOxygen:          "respiratory",
	MetricRespiratoryRate: "respiratory",
}

// IsMetricAllowed reports whether name is a queryable scalar table.
func IsMetricAllowed(name string) bool {
	_, ok := metricAllowlist[name]
	return ok
}

// AllowedMetrics returns the allowlist sorted by category, then name.
func AllowedMetrics() []AllowedMetric {
	out := make([]AllowedMetric, 0, len(metricAllowlist))
	for name, cat := range metricAllowlist {
		out = append(out, AllowedMetric{MetricName: name, Category: cat})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].MetricName < out[j].MetricName
	})
	return out
}

func checkMetric(name string) error {
	if !IsMetricAllowed(name) {
		return fmt.Errorf("metric %q: %w", name, models.ErrUnknownMetric)
	}
	return nil
}
