package analytics

import (
	"fmt"

	"github.com/claude/trainready/internal/models"
)

// ZoneBasis selects what the zone percentages are taken of.
type ZoneBasis string

const (
	// ReserveBasis places bounds at rest + p·(max − rest) (Karvonen).
	ReserveBasis ZoneBasis = "reserve"
	// MaxBasis places bounds at p·max.
	MaxBasis ZoneBasis = "max"
)

// fallbackMaxHR is used when neither a configured nor an observed maximum
// is available.
const fallbackMaxHR = 200

var zonePercents = [6]float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

// ZoneConfig parameterises DistributeZones. A MaxHR of zero means "use the
// highest observed sample".
type ZoneConfig struct {
	Basis     ZoneBasis
	MaxHR     float64
	RestingHR float64
}

// Zone is one heart-rate band and the samples that fell into it.
type Zone struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Lower float64 `json:"lower_bpm"`
	Upper float64 `json:"upper_bpm"`
	Count int     `json:"count"`
}

// ZoneDistribution is always five zones, Z1 first.
type ZoneDistribution struct {
	Basis ZoneBasis `json:"basis"`
	MaxHR float64   `json:"max_hr"`
	Zones []Zone    `json:"zones"`
	Below int       `json:"below_z1"`
	Above int       `json:"above_z5"`
}

// DistributeZones counts samples into five bands at 50–60, 60–70, 70–80,
// 80–90 and 90–100 %. Bands are half-open [lower, upper) except Z5, which
// includes its upper bound. A degenerate reference range yields five
// zero-count zones.
func DistributeZones(samples []models.HeartRateSample, cfg ZoneConfig) ZoneDistribution {
	basis := cfg.Basis
	if basis == "" {
		basis = ReserveBasis
	}

	maxHR := cfg.MaxHR
	if maxHR <= 0 {
		for _, s := range samples {
			maxHR = max(maxHR, s.Value)
		}
	}
	if maxHR <= 0 {
		maxHR = fallbackMaxHR
	}

	dist := ZoneDistribution{Basis: basis, MaxHR: maxHR, Zones: make([]Zone, 5)}

	floor, span := 0.0, maxHR
	if basis == ReserveBasis {
		floor, span = cfg.RestingHR, maxHR-cfg.RestingHR
	}
	degenerate := span <= 0

	var bounds [6]float64
	for i, p := range zonePercents {
		bounds[i] = floor + p*span
	}
	for i := range dist.Zones {
		dist.Zones[i] = Zone{
			Name:  fmt.Sprintf("Z%d", i+1),
			Label: fmt.Sprintf("Z%d (%.0f–%.0f%%)", i+1, zonePercents[i]*100, zonePercents[i+1]*100),
		}
		if !degenerate {
			dist.Zones[i].Lower = bounds[i]
			dist.Zones[i].Upper = bounds[i+1]
		}
	}
	if degenerate {
		return dist
	}

	for _, s := range samples {
		v := s.Value
		switch {
		case v < bounds[0]:
			dist.Below++
		case v > bounds[5]:
			dist.Above++
		default:
			dist.Zones[zoneIndex(v, bounds)].Count++
		}
	}
	return dist
}

func zoneIndex(v float64, bounds [6]float64) int {
	for i := 0; i < 4; i++ {
		if v < bounds[i+1] {
			return i
		}
	}
	return 4
}
