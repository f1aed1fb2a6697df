package analytics

import (
	"github.com/claude/trainready/internal/models"
)

// SleepQuality is the categorical label for last night's sleep.
type SleepQuality string

const (
	SleepGood   SleepQuality = "good"
	SleepNormal SleepQuality = "normal"
	SleepPoor   SleepQuality = "poor"
)

// RecoveryIndicator summarises readiness and sleep together.
type RecoveryIndicator string

const (
	RecoveryOptimal  RecoveryIndicator = "optimal"
	RecoveryNormal   RecoveryIndicator = "normal"
	RecoveryFatigued RecoveryIndicator = "fatigued"
)

// neutralSubScore is used when a signal is missing.
const neutralSubScore = 60

// Readiness is the composite 0–100 score with its parts.
type Readiness struct {
	Score      int               `json:"score"`
	FormScore  int               `json:"form_score"`
	RHRScore   int               `json:"rhr_score"`
	HRVScore   int               `json:"hrv_score"`
	SleepScore int               `json:"sleep_score"`
	SleepHours float64           `json:"sleep_hours"`
	Sleep      SleepQuality      `json:"sleep_quality"`
	Recovery   RecoveryIndicator `json:"recovery"`
	Badge      string            `json:"badge"`
	Advice     string            `json:"advice"`
	FormState  string            `json:"form_state"`
	SleepState string            `json:"sleep_state"`
}

// ScoreReadiness averages four step-function sub-scores. rhr and hrv are
// most-recent-first; only their first sample is used, and a missing or
// non-positive value scores neutral.
func ScoreReadiness(form float64, rhr, hrv []models.ScalarSample, sleepHours float64) Readiness {
	r := Readiness{
		FormScore:  formScore(form),
		RHRScore:   neutralSubScore,
		HRVScore:   neutralSubScore,
		SleepScore: sleepScore(sleepHours),
		SleepHours: sleepHours,
	}
	if len(rhr) > 0 && rhr[0].Qty > 0 {
		r.RHRScore = rhrScore(rhr[0].Qty)
	}
	if len(hrv) > 0 && hrv[0].Qty > 0 {
		r.HRVScore = hrvScore(hrv[0].Qty)
	}

	r.Score = int(round(float64(r.FormScore+r.RHRScore+r.HRVScore+r.SleepScore) / 4))
	r.Sleep = ClassifySleep(sleepHours)
	r.Recovery = ClassifyRecovery(r.Score, r.Sleep)
	r.Badge = ReadinessBadge(r.Score)
	r.Advice = TrainingAdvice(r.Score, r.Sleep, form)
	r.FormState = FormState(form)
	r.SleepState = SleepAdvice(sleepHours)
	return r
}

func formScore(form float64) int {
	switch {
	case form >= 10:
		return 100
	case form >= 5:
		return 80
	case form >= 0:
		return 60
	case form >= -10:
		return 40
	default:
		return 20
	}
}

func rhrScore(rhr float64) int {
	switch {
	case rhr < 60:
		return 100
	case rhr < 65:
		return 80
	case rhr < 70:
		return 60
	default:
		return 40
	}
}

func hrvScore(hrv float64) int {
	switch {
	case hrv > 70:
		return 100
	case hrv > 50:
		return 80
	case hrv > 40:
		return 60
	default:
		return 40
	}
}

func sleepScore(hours float64) int {
	switch {
	case hours >= 7:
		return 100
	case hours >= 6:
		return 80
	case hours >= 5:
		return 50
	default:
		return 20
	}
}

// ClassifySleep labels sleep hours as good (≥7), normal (≥6) or poor.
func ClassifySleep(hours float64) SleepQuality {
	switch {
	case hours >= 7:
		return SleepGood
	case hours >= 6:
		return SleepNormal
	default:
		return SleepPoor
	}
}

// ClassifyRecovery combines the readiness score with sleep quality.
func ClassifyRecovery(score int, sleep SleepQuality) RecoveryIndicator {
	switch {
	case score >= 80 && sleep == SleepGood:
		return RecoveryOptimal
	case score >= 60 && sleep != SleepPoor:
		return RecoveryNormal
	default:
		return RecoveryFatigued
	}
}

// ReadinessBadge buckets a readiness score for display.
func ReadinessBadge(score int) string {
	switch {
	case score >= 80:
		return "ready"
	case score >= 60:
		return "moderate"
	default:
		return "rest"
	}
}

// TrainingAdvice returns the session type suggested for today.
func TrainingAdvice(score int, sleep SleepQuality, form float64) string {
	switch {
	case score >= 80 && sleep == SleepGood && form >= 10:
		return "hard_session"
	case score >= 60 && sleep != SleepPoor:
		return "moderate_session"
	default:
		return "recovery_day"
	}
}

// FormState describes the training-stress balance.
func FormState(form float64) string {
	switch {
	case form > 15:
		return "peaked"
	case form > 5:
		return "fresh"
	case form > -5:
		return "balanced"
	case form > -15:
		return "strained"
	default:
		return "overreached"
	}
}

// SleepAdvice buckets last night's sleep duration.
func SleepAdvice(hours float64) string {
	switch {
	case hours >= 7:
		return "rested"
	case hours >= 6:
		return "adequate"
	case hours >= 5:
		return "short"
	default:
		return "very_short"
	}
}
