package analytics

import (
	"sort"

	"github.com/claude/trainready/internal/models"
)

// Fatigue thresholds applied to multi-day averages.
const (
	fatigueRHRAbove   = 60
	fatigueHRVBelow   = 40
	fatigueSleepBelow = 6.5
	fatigueStepsBelow = 4000
)

// FatigueReason codes explain which signal tripped.
const (
	ReasonElevatedRHR = "elevated_rhr"
	ReasonLowHRV      = "low_hrv"
	ReasonShortSleep  = "short_sleep"
	ReasonLowActivity = "low_activity"
)

// FatiguePattern is the result of DetectFatigue. Averages are nil when the
// series was empty.
type FatiguePattern struct {
	AvgRHR        *float64 `json:"avg_rhr"`
	AvgHRV        *float64 `json:"avg_hrv"`
	AvgSleepHours *float64 `json:"avg_sleep_hours"`
	AvgSteps      *float64 `json:"avg_steps"`
	Detected      bool     `json:"fatigue_detected"`
	Reasons       []string `json:"reasons"`
}

// DetectFatigue averages each signal and flags fatigue only when all four
// are out of range at once. Reasons lists every signal that is out of range.
func DetectFatigue(rhr, hrv, steps []models.ScalarSample, sleep []models.SleepSession) FatiguePattern {
	p := FatiguePattern{Reasons: []string{}}

	if avg, ok := averageQty(rhr); ok {
		v := round(avg*10) / 10
		p.AvgRHR = &v
	}
	if avg, ok := averageQty(hrv); ok {
		v := round(avg*10) / 10
		p.AvgHRV = &v
	}
	if len(sleep) > 0 {
		var total float64
		for _, s := range sleep {
			total += s.DurationMin
		}
		v := round2(total / float64(len(sleep)) / 60)
		p.AvgSleepHours = &v
	}
	if avg, ok := averageQty(steps); ok {
		v := round(avg)
		p.AvgSteps = &v
	}

	rhrHigh := p.AvgRHR != nil && *p.AvgRHR > fatigueRHRAbove
	hrvLow := p.AvgHRV != nil && *p.AvgHRV > 0 && *p.AvgHRV < fatigueHRVBelow
	sleepShort := p.AvgSleepHours != nil && *p.AvgSleepHours > 0 && *p.AvgSleepHours < fatigueSleepBelow
	stepsLow := p.AvgSteps != nil && *p.AvgSteps > 0 && *p.AvgSteps < fatigueStepsBelow

	if rhrHigh {
		p.Reasons = append(p.Reasons, ReasonElevatedRHR)
	}
	if hrvLow {
		p.Reasons = append(p.Reasons, ReasonLowHRV)
	}
	if sleepShort {
		p.Reasons = append(p.Reasons, ReasonShortSleep)
	}
	if stepsLow {
		p.Reasons = append(p.Reasons, ReasonLowActivity)
	}
	p.Detected = rhrHigh && hrvLow && sleepShort && stepsLow
	return p
}

// DailyAverage is the mean of a metric over one UTC date.
type DailyAverage struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DailyAverages groups samples by UTC date and averages each day, rounded
// to two decimals and sorted by date.
func DailyAverages(samples []models.ScalarSample) []DailyAverage {
	groups := make(map[string][]float64)
	for _, s := range samples {
		key := DateKey(s.Time)
		groups[key] = append(groups[key], s.Qty)
	}

	out := make([]DailyAverage, 0, len(groups))
	for date, values := range groups {
		out = append(out, DailyAverage{Date: date, Value: round2(mean(values))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// MetricAverage is the rounded mean of a metric window.
type MetricAverage struct {
	Metric      string  `json:"metric"`
	Average     float64 `json:"average_value"`
	Days        int     `json:"days"`
	RecordsUsed int     `json:"records_used"`
}

// AverageMetric averages a window of samples.
func AverageMetric(metric string, days int, samples []models.ScalarSample) MetricAverage {
	avg, _ := averageQty(samples)
	return MetricAverage{
		Metric:      metric,
		Average:     round2(avg),
		Days:        days,
		RecordsUsed: len(samples),
	}
}

// NightSummary is a single night in a SleepSummary.
type NightSummary struct {
	Date          string  `json:"date"`
	DurationHours float64 `json:"duration_hours"`
}

// SleepSummary condenses a window of sleep sessions.
type SleepSummary struct {
	Nights            int           `json:"nights"`
	AverageSleepHours float64       `json:"average_sleep_hours"`
	LastNight         *NightSummary `json:"last_night,omitempty"`
	NightsBelow6h     int           `json:"nights_below_6h"`
}

// SummarizeSleep reports average hours, the latest night and the number of
// nights under six hours. sessions may be in any order.
func SummarizeSleep(sessions []models.SleepSession) SleepSummary {
	if len(sessions) == 0 {
		return SleepSummary{}
	}

	var total float64
	var below int
	last := sessions[0]
	for _, s := range sessions {
		total += s.DurationMin
		if s.DurationMin < 360 {
			below++
		}
		if s.Start.After(last.Start) {
			last = s
		}
	}

	return SleepSummary{
		Nights:            len(sessions),
		AverageSleepHours: round2(total / float64(len(sessions)) / 60),
		LastNight: &NightSummary{
			Date:          DateKey(last.Start),
			DurationHours: round2(last.Hours()),
		},
		NightsBelow6h: below,
	}
}

func averageQty(samples []models.ScalarSample) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range samples {
		sum += s.Qty
	}
	return sum / float64(len(samples)), true
}
