package analytics

import (
	"slices"
	"testing"
	"time"

	"github.com/claude/trainready/internal/models"
)

// TestDetectFatigue verifies that fatigue is flagged only when every
// signal is out of range and that reasons list each tripped signal.
func TestDetectFatigue(t *testing.T) {
	tests := []struct {
		name        string
		rhr, hrv    []models.ScalarSample
		steps       []models.ScalarSample
		sleep       []models.SleepSession
		wantFlag    bool
		wantReasons []string
	}{
		{
			name: "all four",
			rhr:  scalars(64, 62), hrv: scalars(35, 30), steps: scalars(2000, 3000), sleep: sleepHours(5, 6),
			wantFlag:    true,
			wantReasons: []string{ReasonElevatedRHR, ReasonLowHRV, ReasonShortSleep, ReasonLowActivity},
		},
		{
			name: "three of four",
			rhr:  scalars(64), hrv: scalars(35), steps: scalars(9000), sleep: sleepHours(5),
			wantFlag:    false,
			wantReasons: []string{ReasonElevatedRHR, ReasonLowHRV, ReasonShortSleep},
		},
		{
			name: "healthy",
			rhr:  scalars(52), hrv: scalars(70), steps: scalars(10000), sleep: sleepHours(8),
			wantReasons: []string{},
		},
		{
			name:        "missing series never trigger",
			rhr:         scalars(70),
			wantReasons: []string{ReasonElevatedRHR},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DetectFatigue(tt.rhr, tt.hrv, tt.steps, tt.sleep)
			if p.Detected != tt.wantFlag {
				t.Errorf("detected = %v, want %v", p.Detected, tt.wantFlag)
			}
			if !slices.Equal(p.Reasons, tt.wantReasons) {
				t.Errorf("reasons = %v, want %v", p.Reasons, tt.wantReasons)
			}
		})
	}
}

// TestDetectFatigueAverages checks the rounding of reported averages.
func TestDetectFatigueAverages(t *testing.T) {
	p := DetectFatigue(scalars(61, 62, 62), scalars(41.25, 41.3), scalars(3999.6), sleepHours(6, 6.25))
	if p.AvgRHR == nil || *p.AvgRHR != 61.7 {
		t.Errorf("avg rhr = %v, want 61.7", p.AvgRHR)
	}
	if p.AvgSteps == nil || *p.AvgSteps != 4000 {
		t.Errorf("avg steps = %v, want 4000", p.AvgSteps)
	}
	if p.AvgSleepHours == nil || *p.AvgSleepHours != 6.13 {
		t.Errorf("avg sleep = %v, want 6.13", p.AvgSleepHours)
	}
	if p.Detected {
		t.Error("rounded steps of 4000 should not count as low activity")
	}
}

// TestDailyAverages verifies per-day grouping and ordering.
func TestDailyAverages(t *testing.T) {
	samples := []models.ScalarSample{
		{Time: time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC), Qty: 55},
		{Time: time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC), Qty: 50},
		{Time: time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC), Qty: 51},
		{Time: time.Date(2024, 5, 2, 7, 0, 0, 0, time.UTC), Qty: 56.333},
	}
	got := DailyAverages(samples)
	want := []DailyAverage{{"2024-05-01", 50.5}, {"2024-05-02", 55.67}}
	if !slices.Equal(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestAverageMetric verifies the rounded mean and record count.
func TestAverageMetric(t *testing.T) {
	got := AverageMetric("vo2_max", 30, scalars(41.1, 42.2, 43.4))
	if got.Average != 42.23 || got.RecordsUsed != 3 || got.Days != 30 {
		t.Errorf("got %+v", got)
	}
	if empty := AverageMetric("vo2_max", 7, nil); empty.RecordsUsed != 0 || empty.Average != 0 {
		t.Errorf("empty = %+v", empty)
	}
}

// TestSummarizeSleep verifies average, last night and short nights.
func TestSummarizeSleep(t *testing.T) {
	sessions := sleepHours(7.5, 5.5, 6.25)
	got := SummarizeSleep(sessions)
	if got.Nights != 3 {
		t.Errorf("nights = %d, want 3", got.Nights)
	}
	if got.AverageSleepHours != 6.42 {
		t.Errorf("average = %v, want 6.42", got.AverageSleepHours)
	}
	if got.NightsBelow6h != 1 {
		t.Errorf("below 6h = %d, want 1", got.NightsBelow6h)
	}
	if got.LastNight == nil || got.LastNight.Date != "2024-05-03" || got.LastNight.DurationHours != 6.25 {
		t.Errorf("last night = %+v", got.LastNight)
	}

	if empty := SummarizeSleep(nil); empty.Nights != 0 || empty.LastNight != nil {
		t.Errorf("empty = %+v", empty)
	}
}
