package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/talgya/spazz-core/internal/config"
)

func TestIntensityOutOfRange(t *testing.T) {
	tun := config.Default()
	assert.Equal(t, 0, Intensity(tun.PulseRangeKm+0.001, tun))
	assert.Equal(t, 0, Intensity(10, tun))
}

func TestIntensitySolidSentinel(t *testing.T) {
	tun := config.Default()
	// 4 meters, under the 5 m threshold: sentinel, never a percentage.
	assert.Equal(t, SolidIntensity, Intensity(0.004, tun))
	assert.Equal(t, SolidIntensity, Intensity(0, tun))
	assert.Equal(t, SolidIntensity, Intensity(tun.NearFieldKm, tun))
	// Just past the threshold it drops back onto the gradient.
	assert.Less(t, Intensity(tun.NearFieldKm+0.0001, tun), 100)
}

func TestIntensityQuadraticFalloff(t *testing.T) {
	tun := config.Default()
	// 10 m against a 500 m range: round(((1-0.02)^2)*100) = 96.
	assert.Equal(t, 96, Intensity(0.010, tun))
	// Midpoint: round(0.5^2 * 100) = 25, not the linear 50.
	assert.Equal(t, 25, Intensity(0.25, tun))
	// Edge of range.
	assert.Equal(t, 0, Intensity(0.5, tun))
}

func TestIntensityRoundingPinned(t *testing.T) {
	// Rounding is half away from zero. Pick a range where the product lands
	// on an exact .5: d=0.3, R=0.4 gives (0.25)^2*100 = 6.25 -> 6, and
	// d=0.29 gives (0.275)^2*100 = 7.5625 -> 8.
	tun := config.Default()
	tun.PulseRangeKm = 0.4
	assert.Equal(t, 6, Intensity(0.3, tun))
	assert.Equal(t, 8, Intensity(0.29, tun))
}

func TestIntensityMonotoneNonIncreasing(t *testing.T) {
	tun := config.Default()
	prev := 101
	for d := tun.NearFieldKm + 0.0001; d <= tun.PulseRangeKm; d += 0.001 {
		cur := Intensity(d, tun)
		assert.LessOrEqual(t, cur, prev, "distance %v", d)
		prev = cur
	}
}

func TestProfileFor(t *testing.T) {
	tun := config.Default()
	tests := []struct {
		name   string
		distKm float64
		want   Mode
	}{
		{"touching", 0.002, ModeSolid},
		{"close", 0.03, ModeFast},
		{"mid", 0.15, ModeMedium},
		{"far but in range", 0.4, ModeSlow},
		{"out of range", 0.6, ModeOff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProfileFor(tt.distKm, tun)
			assert.Equal(t, tt.want, p.Mode)
			if tt.want == ModeSolid || tt.want == ModeOff {
				assert.Zero(t, p.PeriodMs)
			} else {
				assert.Positive(t, p.PeriodMs)
			}
		})
	}
}

func TestProfilePeriodsFromTuning(t *testing.T) {
	tun := config.Default()
	tun.FastPeriodMs = 111
	assert.Equal(t, 111, ProfileFor(0.02, tun).PeriodMs)
}
