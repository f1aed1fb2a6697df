package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/claude/trainready/internal/models"
	"github.com/google/uuid"
)

func workoutAt(start time.Time, typ string, minutes float64) models.Workout {
	return models.Workout{ID: uuid.New(), Start: start, End: start.Add(time.Duration(minutes) * time.Minute), Type: typ, DurationMin: minutes}
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

// TestWeekKey pins the fractional-day week numbering, including the
// Saturday rollover that differs from ISO weeks.
func TestWeekKey(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"jan 1 monday", day(2024, 1, 1, 0), "2024-W01"},
		{"friday noon", day(2024, 1, 5, 12), "2024-W01"},
		{"saturday noon rolls over", day(2024, 1, 6, 12), "2024-W02"},
		{"second week", day(2024, 1, 10, 9), "2024-W02"},
		{"sunday start year", day(2023, 1, 1, 10), "2023-W01"},
		{"late december", day(2024, 12, 31, 8), "2024-W53"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekKey(tt.t); got != tt.want {
				t.Errorf("WeekKey(%v) = %q, want %q", tt.t, got, tt.want)
			}
		})
	}
}

// TestHeuristicTRIMP verifies per-type multipliers and the default.
func TestHeuristicTRIMP(t *testing.T) {
	h := DefaultHeuristic()
	start := day(2024, 3, 4, 8)

	tests := []struct {
		typ  string
		min  float64
		want float64
	}{
		{"Boxing", 60, 72},
		{"Outdoor Walk", 60, 42},
		{"Running", 45, 45},
		{"Running", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got := h.TRIMP(workoutAt(start, tt.typ, tt.min))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TRIMP(%s, %.0f) = %v, want %v", tt.typ, tt.min, got, tt.want)
			}
		})
	}
}

// TestPhysiologicalTRIMP verifies the reserve-ratio formula, the fallback
// for workouts without samples, and the degenerate reserve.
func TestPhysiologicalTRIMP(t *testing.T) {
	start := day(2024, 3, 4, 8)
	withHR := workoutAt(start, "Running", 60)
	for _, v := range []float64{120, 140, 160} {
		withHR.Samples = append(withHR.Samples, models.HeartRateSample{WorkoutID: withHR.ID, Value: v, Kind: models.HRAvg})
	}
	lowHR := workoutAt(start, "Running", 30)
	lowHR.Samples = []models.HeartRateSample{{Value: 40}}

	p := Physiological{RestingHR: 60, MaxHR: 180, GenderFactor: GenderFactorMale, Fallback: DefaultHeuristic()}

	tests := []struct {
		name string
		mode Physiological
		w    models.Workout
		want float64
	}{
		// avg 140 → (140−60)/120 = 2/3 → 60 × 2/3 × 1.92 = 76.8
		{"hr based", p, withHR, 76.8},
		{"female factor", Physiological{RestingHR: 60, MaxHR: 180, GenderFactor: GenderFactorFemale}, withHR, 60 * 2.0 / 3.0 * 1.67},
		{"fallback to multiplier", p, workoutAt(start, "Boxing", 50), 60},
		{"below resting clamps to zero", p, lowHR, 0},
		{"degenerate reserve", Physiological{RestingHR: 180, MaxHR: 180}, withHR, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mode.TRIMP(tt.w)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TRIMP = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWeeklyLoadsRoundAndSort verifies bucketing, per-week rounding and
// ascending week order regardless of input order.
func TestWeeklyLoadsRoundAndSort(t *testing.T) {
	agg := NewLoadAggregator(nil, nil)
	workouts := []models.Workout{
		workoutAt(day(2024, 1, 10, 9), "Boxing", 31),       // W02: 37.2
		workoutAt(day(2024, 1, 2, 9), "Running", 40),       // W01: 40
		workoutAt(day(2024, 1, 11, 9), "Outdoor Walk", 30), // W02: 21
	}

	weeks := agg.WeeklyLoads(workouts)
	want := []WeeklyLoad{{"2024-W01", 40}, {"2024-W02", 58}}
	if len(weeks) != len(want) {
		t.Fatalf("got %d weeks, want %d: %+v", len(weeks), len(want), weeks)
	}
	for i := range want {
		if weeks[i] != want[i] {
			t.Errorf("weeks[%d] = %+v, want %+v", i, weeks[i], want[i])
		}
	}
}

// TestComputeEmpty verifies empty input yields empty, non-nil series.
func TestComputeEmpty(t *testing.T) {
	for _, model := range []LoadModel{DefaultDecay(), SimpleAverage{Window: 3}} {
		t.Run(model.Name(), func(t *testing.T) {
			weeks, states := NewLoadAggregator(nil, model).Compute(nil)
			if weeks == nil || states == nil {
				t.Fatal("expected non-nil slices")
			}
			if len(weeks) != 0 || len(states) != 0 {
				t.Errorf("got %d weeks, %d states, want 0", len(weeks), len(states))
			}
		})
	}
}

// TestExponentialDecaySingleWeek checks the first-week values of the
// decay model: ctl = 100·(1−e^(−1/42)) ≈ 2.35, atl = 100·(1−e^(−1/7)) ≈ 13.31.
func TestExponentialDecaySingleWeek(t *testing.T) {
	states := DefaultDecay().Fold([]WeeklyLoad{{Week: "2024-W01", TRIMP: 100}})
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	want := LoadState{Week: "2024-W01", Fitness: 2, Fatigue: 13, Form: -11}
	if states[0] != want {
		t.Errorf("state = %+v, want %+v", states[0], want)
	}
}

// TestExponentialDecayConverges verifies fatigue approaches a constant
// load faster than fitness and that the published values never go negative.
func TestExponentialDecayConverges(t *testing.T) {
	weeks := make([]WeeklyLoad, 30)
	for i := range weeks {
		weeks[i] = WeeklyLoad{Week: WeekKey(day(2024, 1, 1, 0).AddDate(0, 0, 7*i)), TRIMP: 300}
	}
	states := DefaultDecay().Fold(weeks)

	for i, s := range states {
		if s.Fitness < 0 || s.Fatigue < 0 {
			t.Fatalf("states[%d] negative: %+v", i, s)
		}
		if s.Form != s.Fitness-s.Fatigue {
			t.Fatalf("states[%d] form %v != fitness-fatigue %v", i, s.Form, s.Fitness-s.Fatigue)
		}
	}
	last := Latest(states)
	if last.Fatigue < 290 {
		t.Errorf("fatigue = %v, want close to 300 after 30 weeks", last.Fatigue)
	}
	if last.Fitness >= last.Fatigue {
		t.Errorf("fitness %v should lag fatigue %v", last.Fitness, last.Fatigue)
	}
}

// TestSimpleAverage verifies fitness as a trailing 3-week mean and
// fatigue as the current week.
func TestSimpleAverage(t *testing.T) {
	weeks := []WeeklyLoad{
		{"2024-W01", 90},
		{"2024-W02", 120},
		{"2024-W03", 60},
		{"2024-W04", 0},
	}
	want := []LoadState{
		{"2024-W01", 90, 90, 0},
		{"2024-W02", 105, 120, -15},
		{"2024-W03", 90, 60, 30},
		{"2024-W04", 60, 0, 60},
	}

	got := SimpleAverage{Window: 3}.Fold(weeks)
	if len(got) != len(want) {
		t.Fatalf("got %d states, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("states[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestLatestEmpty verifies the zero state for an empty series.
func TestLatestEmpty(t *testing.T) {
	if got := Latest(nil); got != (LoadState{}) {
		t.Errorf("Latest(nil) = %+v, want zero", got)
	}
}
