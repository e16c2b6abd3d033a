// Package pulse maps pair distance to notification intensity. Two outputs:
// a continuous 0-100 percentage with a distinguished solid-mode sentinel, and
// a discrete pulse profile used by client hardware to pace vibration.
package pulse

import (
	"math"

	"github.com/talgya/spazz-core/internal/config"
)

// SolidIntensity is the near-field sentinel. It deliberately sits outside the
// 0-100 gradient so clients can tell "solid lights and vibration" apart from
// an ordinary 100% reading.
const SolidIntensity = 101

// Intensity converts a distance to a spazz percentage.
//
// Beyond the pulse range it is 0. At or under the near-field threshold it is
// SolidIntensity. In between it falls off quadratically, so "almost touching"
// reads much hotter than "just in range". Rounding is math.Round, half away
// from zero.
func Intensity(distKm float64, t config.Tuning) int {
	if distKm > t.PulseRangeKm {
		return 0
	}
	if distKm <= t.NearFieldKm {
		return SolidIntensity
	}
	frac := 1 - distKm/t.PulseRangeKm
	return int(math.Round(frac * frac * 100))
}

// Mode names the discrete pulse tiers.
type Mode string

const (
	ModeSolid  Mode = "solid"
	ModeFast   Mode = "fast"
	ModeMedium Mode = "medium"
	ModeSlow   Mode = "slow"
	ModeOff    Mode = "off"
)

// Profile is the discrete pulse setting shown to a client: the tier plus the
// flash/vibe period it should run at. A zero period means steady-on or off.
type Profile struct {
	Mode     Mode `json:"mode"`
	PeriodMs int  `json:"period_ms"`
}

// ProfileFor steps a distance into a pulse profile. Tier boundaries come from
// tuning, never from call sites.
func ProfileFor(distKm float64, t config.Tuning) Profile {
	switch {
	case distKm > t.PulseRangeKm:
		return Profile{Mode: ModeOff}
	case distKm <= t.NearFieldKm:
		return Profile{Mode: ModeSolid}
	case distKm <= t.FastTierKm:
		return Profile{Mode: ModeFast, PeriodMs: t.FastPeriodMs}
	case distKm <= t.MediumTierKm:
		return Profile{Mode: ModeMedium, PeriodMs: t.MediumPeriodMs}
	default:
		return Profile{Mode: ModeSlow, PeriodMs: t.SlowPeriodMs}
	}
}
