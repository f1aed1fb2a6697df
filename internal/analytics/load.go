package analytics

import (
	"math"
	"sort"

	"github.com/claude/trainready/internal/models"
)

// WeeklyLoad is the summed training impulse of one week bucket.
type WeeklyLoad struct {
	Week  string  `json:"week"`
	TRIMP float64 `json:"trimp"`
}

// LoadState is fitness (CTL), fatigue (ATL) and form (TSB) after a week.
// Form is always Fitness − Fatigue.
type LoadState struct {
	Week    string  `json:"week"`
	Fitness float64 `json:"fitness"`
	Fatigue float64 `json:"fatigue"`
	Form    float64 `json:"form"`
}

// LoadModel folds a chronological weekly load series into load states,
// one per input week.
type LoadModel interface {
	Fold(weeks []WeeklyLoad) []LoadState
	Name() string
}

// ExponentialDecay is the Banister-style model. Each week
//
//	ctl = ctl·e^(−1/LongTau) + load·(1 − e^(−1/LongTau))
//	atl = atl·e^(−1/ShortTau) + load·(1 − e^(−1/ShortTau))
//
// starting from zero.
type ExponentialDecay struct {
	LongTau  float64
	ShortTau float64
}

// DefaultDecay returns the 42/7 time constants.
func DefaultDecay() ExponentialDecay {
	return ExponentialDecay{LongTau: 42, ShortTau: 7}
}

func (m ExponentialDecay) Name() string { return "decay" }

func (m ExponentialDecay) Fold(weeks []WeeklyLoad) []LoadState {
	longTau, shortTau := m.LongTau, m.ShortTau
	if longTau <= 0 {
		longTau = 42
	}
	if shortTau <= 0 {
		shortTau = 7
	}
	ctlDecay := math.Exp(-1 / longTau)
	atlDecay := math.Exp(-1 / shortTau)

	states := make([]LoadState, 0, len(weeks))
	var ctl, atl float64
	for _, w := range weeks {
		ctl = ctl*ctlDecay + w.TRIMP*(1-ctlDecay)
		atl = atl*atlDecay + w.TRIMP*(1-atlDecay)
		states = append(states, newLoadState(w.Week, round(ctl), round(atl)))
	}
	return states
}

// SimpleAverage takes fitness as the mean of the last Window weekly loads
// and fatigue as the current week's load.
type SimpleAverage struct {
	Window int
}

func (m SimpleAverage) Name() string { return "simple" }

func (m SimpleAverage) Fold(weeks []WeeklyLoad) []LoadState {
	window := m.Window
	if window <= 0 {
		window = 3
	}

	states := make([]LoadState, 0, len(weeks))
	for i, w := range weeks {
		from := max(0, i-window+1)
		var sum float64
		for _, prev := range weeks[from : i+1] {
			sum += prev.TRIMP
		}
		fitness := round(sum / float64(i+1-from))
		states = append(states, newLoadState(w.Week, fitness, w.TRIMP))
	}
	return states
}

func newLoadState(week string, fitness, fatigue float64) LoadState {
	return LoadState{Week: week, Fitness: fitness, Fatigue: fatigue, Form: fitness - fatigue}
}

// LoadAggregator turns workouts into weekly loads and load states.
type LoadAggregator struct {
	Mode  TRIMPMode
	Model LoadModel
}

// NewLoadAggregator returns an aggregator; nil arguments select the
// heuristic TRIMP mode and the exponential-decay model.
func NewLoadAggregator(mode TRIMPMode, model LoadModel) LoadAggregator {
	if mode == nil {
		mode = DefaultHeuristic()
	}
	if model == nil {
		model = DefaultDecay()
	}
	return LoadAggregator{Mode: mode, Model: model}
}

// WeeklyLoads sums per-workout TRIMP into week buckets, rounds each sum to
// the nearest integer and returns them sorted by week key.
func (a LoadAggregator) WeeklyLoads(workouts []models.Workout) []WeeklyLoad {
	sums := make(map[string]float64)
	for _, w := range workouts {
		sums[WeekKey(w.Start)] += a.Mode.TRIMP(w)
	}

	weeks := make([]WeeklyLoad, 0, len(sums))
	for week, sum := range sums {
		weeks = append(weeks, WeeklyLoad{Week: week, TRIMP: round(sum)})
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Week < weeks[j].Week })
	return weeks
}

// Compute returns the weekly load series and its load states, oldest first.
// Empty input gives two empty slices.
func (a LoadAggregator) Compute(workouts []models.Workout) ([]WeeklyLoad, []LoadState) {
	weeks := a.WeeklyLoads(workouts)
	return weeks, a.Model.Fold(weeks)
}

// Latest returns the most recent load state, or a zero state when the
// series is empty.
func Latest(states []LoadState) LoadState {
	if len(states) == 0 {
		return LoadState{}
	}
	return states[len(states)-1]
}
