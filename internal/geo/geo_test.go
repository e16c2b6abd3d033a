package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		point   LatLon
		wantErr bool
	}{
		{"origin", LatLon{0, 0}, false},
		{"poles", LatLon{90, 180}, false},
		{"negative bounds", LatLon{-90, -180}, false},
		{"lat too high", LatLon{90.0001, 0}, true},
		{"lat too low", LatLon{-91, 0}, true},
		{"lon too high", LatLon{0, 180.5}, true},
		{"lon too low", LatLon{0, -181}, true},
		{"nan lat", LatLon{math.NaN(), 0}, true},
		{"nan lon", LatLon{0, math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]LatLon{
		{{40.7128, -74.0060}, {40.71285, -74.00605}},
		{{51.5074, -0.1278}, {48.8566, 2.3522}},
		{{-33.8688, 151.2093}, {35.6762, 139.6503}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistanceSelfIsZero(t *testing.T) {
	p := LatLon{40.7128, -74.0060}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistanceKnownValues(t *testing.T) {
	// London -> Paris is ~343.5 km.
	d := Distance(LatLon{51.5074, -0.1278}, LatLon{48.8566, 2.3522})
	assert.InDelta(t, 343.5, d, 1.0)

	// ~7 meters apart in lower Manhattan, the demo walk from the prototype.
	d = Distance(LatLon{40.7128, -74.0060}, LatLon{40.71285, -74.00605})
	assert.Less(t, d, 0.010)
	assert.Greater(t, d, 0.005)
}

func TestBearingRange(t *testing.T) {
	points := []LatLon{
		{0, 0}, {10, 20}, {-45, 100}, {80, -170}, {-80, 170}, {40.7, -74.0},
	}
	for _, a := range points {
		for _, b := range points {
			if a == b {
				continue
			}
			deg := Bearing(a, b)
			require.GreaterOrEqual(t, deg, 0.0)
			require.Less(t, deg, 360.0)
		}
	}
}

func TestBearingCardinal(t *testing.T) {
	origin := LatLon{0, 0}
	assert.InDelta(t, 0, Bearing(origin, LatLon{1, 0}), 0.01)
	assert.InDelta(t, 90, Bearing(origin, LatLon{0, 1}), 0.01)
	assert.InDelta(t, 180, Bearing(origin, LatLon{-1, 0}), 0.01)
	assert.InDelta(t, 270, Bearing(origin, LatLon{0, -1}), 0.01)
}

func TestCompassLabel(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{10, "N"},
		{22.5, "NE"}, // half-boundary rounds up clockwise
		{45, "NE"},
		{67.5, "E"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{337.4, "NW"},
		{337.5, "N"},
		{359.9, "N"},
		{360, "N"},
		{-45, "NW"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompassLabel(tt.deg), "bearing %v", tt.deg)
	}
}

func TestCompassLabelCoversAllOctants(t *testing.T) {
	seen := make(map[string]bool)
	for deg := 0.0; deg < 360; deg += 1.0 {
		seen[CompassLabel(deg)] = true
	}
	assert.Len(t, seen, 8)
}
