package storage

import (
	"math"

	"github.com/claude/trainready/internal/models"
)

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func validDuration(d *float64) bool {
	return d != nil && finite(*d) && *d >= 0
}

func validEnergy(e *float64) bool {
	return e == nil || (finite(*e) && *e >= 0)
}

func validHeartRate(v *float64) bool {
	return v != nil && finite(*v) && *v > 0
}

func validQty(v *float64) bool {
	return v != nil && finite(*v)
}

// summarizeHeartRate reduces typed samples to the lowest Min, mean Avg and
// highest Max. It returns nil when no typed sample is present.
func summarizeHeartRate(samples []models.HeartRateSample) *models.HeartRateSummary {
	var (
		sum          models.HeartRateSummary
		avgTotal     float64
		avgN         int
		seenAnything bool
	)
	for _, s := range samples {
		v := s.Value
		switch s.Kind {
		case models.HRMin:
			if sum.Min == nil || v < *sum.Min {
				sum.Min = &v
			}
		case models.HRMax:
			if sum.Max == nil || v > *sum.Max {
				sum.Max = &v
			}
		case models.HRAvg:
			avgTotal += v
			avgN++
		default:
			continue
		}
		seenAnything = true
	}
	if !seenAnything {
		return nil
	}
	if avgN > 0 {
		avg := avgTotal / float64(avgN)
		sum.Avg = &avg
	}
	return &sum
}
