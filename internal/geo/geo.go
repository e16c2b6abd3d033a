// Package geo provides spherical-earth geometry: great-circle distance,
// initial bearing, and compass octant labels. All distances are kilometers.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean earth radius used by the haversine formula.
// The engine uses kilometers everywhere; do not introduce a second unit.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned for NaN or out-of-range coordinates.
var ErrInvalidCoordinate = errors.New("geo: invalid coordinate")

// LatLon is a position in degrees, latitude [-90,90], longitude [-180,180].
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects NaN and out-of-range coordinates.
func (p LatLon) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return ErrInvalidCoordinate
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Distance returns the haversine great-circle distance between a and b in km.
// Callers validate coordinates first; Distance assumes well-formed input.
func Distance(a, b LatLon) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Bearing returns the initial compass bearing from a to b in degrees [0,360).
// Not reciprocal: the return path bearing must be computed from b, not derived
// by adding 180.
func Bearing(a, b LatLon) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dLambda := radians(b.Lon - a.Lon)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	deg := degrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

var compassLabels = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassLabel buckets a bearing into one of 8 octants. Exact half-boundaries
// round up, toward the next label clockwise (22.5 is NE, not N).
func CompassLabel(bearingDeg float64) string {
	deg := math.Mod(bearingDeg, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Floor(deg/45+0.5)) % 8
	return compassLabels[idx]
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
