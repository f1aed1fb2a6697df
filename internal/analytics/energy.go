package analytics

import (
	"sort"

	"github.com/claude/trainready/internal/models"
)

// DailyEnergy is the workout energy summed over one UTC date.
type DailyEnergy struct {
	Date string  `json:"date"`
	Kcal float64 `json:"kcal"`
}

// AggregateDailyEnergy sums energyKcal per UTC date of the workout start.
// Workouts with no energy count as zero but still create their date.
func AggregateDailyEnergy(workouts []models.Workout) map[string]float64 {
	days := make(map[string]float64)
	for _, w := range workouts {
		var kcal float64
		if w.EnergyKcal != nil {
			kcal = *w.EnergyKcal
		}
		days[DateKey(w.Start)] += kcal
	}
	return days
}

// SortDailyEnergy returns the map as a chronologically sorted slice.
func SortDailyEnergy(days map[string]float64) []DailyEnergy {
	out := make([]DailyEnergy, 0, len(days))
	for date, kcal := range days {
		out = append(out, DailyEnergy{Date: date, Kcal: kcal})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
