package analytics

import (
	"testing"

	"github.com/claude/trainready/internal/models"
)

func hrSamples(values ...float64) []models.HeartRateSample {
	out := make([]models.HeartRateSample, len(values))
	for i, v := range values {
		out[i] = models.HeartRateSample{Value: v}
	}
	return out
}

func zoneCounts(d ZoneDistribution) [5]int {
	var c [5]int
	for i, z := range d.Zones {
		c[i] = z.Count
	}
	return c
}

// TestDistributeZones covers both bases, closed Z5, observed-max fallback
// and the degenerate range.
func TestDistributeZones(t *testing.T) {
	tests := []struct {
		name      string
		samples   []models.HeartRateSample
		cfg       ZoneConfig
		want      [5]int
		wantBelow int
		wantMax   float64
	}{
		{
			name:    "reserve basis",
			samples: hrSamples(80, 120, 165, 205),
			cfg:     ZoneConfig{Basis: ReserveBasis, MaxHR: 205, RestingHR: 55},
			// bounds 130 145 160 175 190 205
			want: [5]int{0, 0, 1, 0, 1}, wantBelow: 2, wantMax: 205,
		},
		{
			name:    "max basis",
			samples: hrSamples(80, 120, 150, 200),
			cfg:     ZoneConfig{Basis: MaxBasis, MaxHR: 205, RestingHR: 55},
			// bounds 102.5 123 143.5 164 184.5 205
			want: [5]int{1, 0, 1, 0, 1}, wantBelow: 1, wantMax: 205,
		},
		{
			name:    "lower bound is inclusive",
			samples: hrSamples(130, 205),
			cfg:     ZoneConfig{MaxHR: 205, RestingHR: 55},
			want:    [5]int{1, 0, 0, 0, 1}, wantMax: 205,
		},
		{
			name:    "observed max when unset",
			samples: hrSamples(100, 150, 200),
			cfg:     ZoneConfig{Basis: MaxBasis},
			// bounds 100 120 140 160 180 200
			want: [5]int{1, 0, 1, 0, 1}, wantMax: 200,
		},
		{
			name:    "no samples falls back to 200",
			samples: nil,
			cfg:     ZoneConfig{RestingHR: 60},
			want:    [5]int{}, wantMax: 200,
		},
		{
			name:    "degenerate reserve",
			samples: hrSamples(150, 160),
			cfg:     ZoneConfig{MaxHR: 150, RestingHR: 160},
			want:    [5]int{}, wantMax: 150,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DistributeZones(tt.samples, tt.cfg)
			if len(d.Zones) != 5 {
				t.Fatalf("got %d zones, want 5", len(d.Zones))
			}
			if got := zoneCounts(d); got != tt.want {
				t.Errorf("counts = %v, want %v", got, tt.want)
			}
			if d.Below != tt.wantBelow {
				t.Errorf("below = %d, want %d", d.Below, tt.wantBelow)
			}
			if d.MaxHR != tt.wantMax {
				t.Errorf("max = %v, want %v", d.MaxHR, tt.wantMax)
			}
		})
	}
}

// TestZoneLabels verifies zone names and percentage labels.
func TestZoneLabels(t *testing.T) {
	d := DistributeZones(nil, ZoneConfig{MaxHR: 190, RestingHR: 50})
	want := []string{"Z1 (50–60%)", "Z2 (60–70%)", "Z3 (70–80%)", "Z4 (80–90%)", "Z5 (90–100%)"}
	for i, z := range d.Zones {
		if z.Label != want[i] {
			t.Errorf("zone %d label = %q, want %q", i, z.Label, want[i])
		}
	}
	if d.Zones[0].Lower != 120 || d.Zones[4].Upper != 190 {
		t.Errorf("bounds = %v..%v, want 120..190", d.Zones[0].Lower, d.Zones[4].Upper)
	}
}
