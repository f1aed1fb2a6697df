package analytics

import (
	"github.com/claude/trainready/internal/models"
)

// Gender coefficients of the Banister TRIMP formula.
const (
	GenderFactorMale   = 1.92
	GenderFactorFemale = 1.67
)

// TRIMPMode selects how a single workout is converted to training impulse.
// Implementations are Heuristic and Physiological.
type TRIMPMode interface {
	TRIMP(w models.Workout) float64
	Name() string
}

// Heuristic scores a workout as duration times a per-type multiplier.
type Heuristic struct {
	Multipliers map[string]float64
	Default     float64
}

// DefaultHeuristic returns the multipliers the load series were built with.
func DefaultHeuristic() Heuristic {
	return Heuristic{
		Multipliers: map[string]float64{
			"Boxing":       1.2,
			"Outdoor Walk": 0.7,
		},
		Default: 1.0,
	}
}

func (h Heuristic) Name() string { return "heuristic" }

// Multiplier returns the intensity multiplier for a workout type.
func (h Heuristic) Multiplier(workoutType string) float64 {
	if m, ok := h.Multipliers[workoutType]; ok {
		return m
	}
	if h.Default == 0 {
		return 1.0
	}
	return h.Default
}

func (h Heuristic) TRIMP(w models.Workout) float64 {
	if w.DurationMin <= 0 {
		return 0
	}
	return w.DurationMin * h.Multiplier(w.Type)
}

// Physiological scores a workout from its average heart rate relative to
// the heart-rate reserve:
//
//	TRIMP = duration × (avgHR − rest) / (max − rest) × genderFactor
//
// Workouts without heart-rate samples fall back to Fallback.
type Physiological struct {
	RestingHR    float64
	MaxHR        float64
	GenderFactor float64
	Fallback     Heuristic
}

func (p Physiological) Name() string { return "physiological" }

func (p Physiological) TRIMP(w models.Workout) float64 {
	if len(w.Samples) == 0 {
		return p.Fallback.TRIMP(w)
	}
	if w.DurationMin <= 0 {
		return 0
	}
	reserve := p.MaxHR - p.RestingHR
	if reserve <= 0 {
		return 0
	}

	var sum float64
	for _, s := range w.Samples {
		sum += s.Value
	}
	avgHR := sum / float64(len(w.Samples))

	ratio := (avgHR - p.RestingHR) / reserve
	if ratio < 0 {
		ratio = 0
	}

	factor := p.GenderFactor
	if factor == 0 {
		factor = GenderFactorMale
	}
	return w.DurationMin * ratio * factor
}
