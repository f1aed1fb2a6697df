// Package analytics turns workout, sleep and heart-rate signals into
// training-load, readiness, recovery and zone metrics. Everything here is
// pure: no IO, no shared state, safe for concurrent use.
package analytics

import (
	"fmt"
	"math"
	"time"
)

// WeekKey returns the "YYYY-W##" bucket for t, evaluated in t's location.
//
// The week number is ceil((daysSinceJan1 + weekdayOfJan1 + 1) / 7) where
// daysSinceJan1 is fractional and weekdayOfJan1 counts from Sunday = 0.
// This is not ISO-8601 week numbering: weeks roll over partway through
// Saturday and the first week of the year can be short. Historical load
// series were keyed this way, so it is kept as-is.
func WeekKey(t time.Time) string {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	elapsed := t.Sub(jan1).Hours() / 24
	week := int(math.Ceil((elapsed + float64(jan1.Weekday()) + 1) / 7))
	return fmt.Sprintf("%04d-W%02d", t.Year(), week)
}

// DateKey returns the UTC calendar date of t as "2006-01-02".
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// round rounds half up, matching the dashboard the series were first
// computed with (round(-2.5) == -2).
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// round2 rounds to two decimal places.
func round2(x float64) float64 {
	return round(x*100) / 100
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
