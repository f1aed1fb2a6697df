package analytics

import (
	"time"

	"github.com/claude/trainready/internal/models"
)

// ForecastConfig holds the coefficients of the recovery forecast.
type ForecastConfig struct {
	MinSamples    int     `yaml:"min_samples"`
	Horizon       int     `yaml:"horizon_days"`
	Anchor        float64 `yaml:"anchor"`
	RHRBaseline   float64 `yaml:"rhr_baseline"`
	RHRFactor     float64 `yaml:"rhr_factor"`
	HRVFactor     float64 `yaml:"hrv_factor"`
	TrendBonus    float64 `yaml:"trend_bonus"`
	FatigueFactor float64 `yaml:"fatigue_factor"`
	FatigueDecay  float64 `yaml:"fatigue_decay"`
	FormFactor    float64 `yaml:"form_factor"`
}

// DefaultForecastConfig returns the standard coefficients.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		MinSamples:    3,
		Horizon:       3,
		Anchor:        70,
		RHRBaseline:   55,
		RHRFactor:     2,
		HRVFactor:     0.5,
		TrendBonus:    10,
		FatigueFactor: 0.1,
		FatigueDecay:  0.3,
		FormFactor:    0.5,
	}
}

// ForecastDay is the predicted recovery score for one future date.
type ForecastDay struct {
	Date          string `json:"date"`
	RecoveryScore int    `json:"recovery_score"`
}

// ForecastRecovery predicts recovery for the next cfg.Horizon days.
// rhr and hrv are most-recent-first, sleep is oldest-first. It returns an
// empty slice unless both windows hold at least cfg.MinSamples samples and
// there is at least one sleep session.
//
// Per day i (1-based):
//
//	score = anchor − (rhr[0] − baseline)·rhrFactor + (hrv[0] − mean(hrv))·hrvFactor
//	      + trend + sleepAdj − fatigue·fatigueFactor·(1 − (i−1)·fatigueDecay)
//	      + form·formFactor
//
// rounded and clamped to [0, 100].
func ForecastRecovery(rhr, hrv []models.ScalarSample, sleep []models.SleepSession, form, fatigue float64, today time.Time, cfg ForecastConfig) []ForecastDay {
	minSamples := max(cfg.MinSamples, 1)
	if len(rhr) < minSamples || len(hrv) < minSamples || len(sleep) == 0 {
		return []ForecastDay{}
	}

	hrvValues := make([]float64, len(hrv))
	for i, s := range hrv {
		hrvValues[i] = s.Qty
	}
	avgHRV := mean(hrvValues)

	base := cfg.Anchor
	base -= (rhr[0].Qty - cfg.RHRBaseline) * cfg.RHRFactor
	base += (hrv[0].Qty - avgHRV) * cfg.HRVFactor
	base += hrvTrend(hrvValues) * cfg.TrendBonus
	base += sleepAdjustment(sleep[len(sleep)-1].Hours())
	base += form * cfg.FormFactor

	days := make([]ForecastDay, 0, cfg.Horizon)
	for i := 1; i <= cfg.Horizon; i++ {
		score := base - fatigue*cfg.FatigueFactor*(1-float64(i-1)*cfg.FatigueDecay)
		score = min(100, max(0, round(score)))
		days = append(days, ForecastDay{
			Date:          today.AddDate(0, 0, i).Format("2006-01-02"),
			RecoveryScore: int(score),
		})
	}
	return days
}

// hrvTrend is +1 when the three most recent values strictly rise toward
// today, −1 when they strictly fall and 0 otherwise.
func hrvTrend(recentFirst []float64) float64 {
	if len(recentFirst) < 3 {
		return 0
	}
	a, b, c := recentFirst[0], recentFirst[1], recentFirst[2]
	switch {
	case a > b && b > c:
		return 1
	case a < b && b < c:
		return -1
	default:
		return 0
	}
}

func sleepAdjustment(hours float64) float64 {
	switch {
	case hours >= 7.5:
		return 15
	case hours >= 6.5:
		return 5
	case hours < 5.5:
		return -15
	default:
		return -5
	}
}
