// Package config loads the engine tuning file. Every distance threshold and
// timing constant lives here so call sites never carry their own copies.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds all runtime constants. Read-only after Load.
type Tuning struct {
	// Proximity thresholds, kilometers.
	PulseRangeKm float64 `yaml:"pulse_range_km"` // full-pulse max range
	NearFieldKm  float64 `yaml:"near_field_km"`  // solid-mode trigger
	VicinityKm   float64 `yaml:"vicinity_km"`    // wider nudge radius
	FastTierKm   float64 `yaml:"fast_tier_km"`   // pulse profile boundaries
	MediumTierKm float64 `yaml:"medium_tier_km"`

	// Pulse periods per tier, milliseconds.
	FastPeriodMs   int `yaml:"fast_period_ms"`
	MediumPeriodMs int `yaml:"medium_period_ms"`
	SlowPeriodMs   int `yaml:"slow_period_ms"`

	// Dispatch rate limiting.
	NudgeCooldownSec   int `yaml:"nudge_cooldown_sec"`
	DailyLikeBudget    int `yaml:"daily_like_budget"` // premium entities are exempt
	DeliveryTimeoutSec int `yaml:"delivery_timeout_sec"`

	// Presence simulator. No despawn or population ceiling is defined —
	// the floor only ever adds wanderers. A ceiling is a pending product
	// decision, not something to invent here.
	TickIntervalSec int     `yaml:"tick_interval_sec"`
	PopulationFloor int     `yaml:"population_floor"`
	JitterDeg       float64 `yaml:"jitter_deg"` // max per-axis drift per tick
	BaseLat         float64 `yaml:"base_lat"`   // spawn anchor
	BaseLon         float64 `yaml:"base_lon"`
	Seed            int64   `yaml:"seed"`
}

// Default returns the tuning used when no file is given. Values match the
// production prototype: 500 m pulse range, 5 m solid trigger, 1 km nudge
// vicinity, 5 minute nudge cooldown.
func Default() Tuning {
	return Tuning{
		PulseRangeKm:       0.5,
		NearFieldKm:        0.005,
		VicinityKm:         1.0,
		FastTierKm:         0.05,
		MediumTierKm:       0.2,
		FastPeriodMs:       150,
		MediumPeriodMs:     400,
		SlowPeriodMs:       900,
		NudgeCooldownSec:   300,
		DailyLikeBudget:    25,
		DeliveryTimeoutSec: 5,
		TickIntervalSec:    15,
		PopulationFloor:    5,
		JitterDeg:          0.0005,
		BaseLat:            40.7128,
		BaseLon:            -74.0060,
		Seed:               42,
	}
}

// Load reads a yaml tuning file over the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects tunings that would break gate ordering assumptions.
func (t Tuning) Validate() error {
	if t.PulseRangeKm <= 0 {
		return fmt.Errorf("pulse_range_km must be positive, got %v", t.PulseRangeKm)
	}
	if t.NearFieldKm < 0 || t.NearFieldKm >= t.PulseRangeKm {
		return fmt.Errorf("near_field_km must be in [0, pulse_range_km), got %v", t.NearFieldKm)
	}
	if t.VicinityKm < t.PulseRangeKm {
		return fmt.Errorf("vicinity_km (%v) must be at least pulse_range_km (%v)", t.VicinityKm, t.PulseRangeKm)
	}
	if t.NudgeCooldownSec <= 0 {
		return fmt.Errorf("nudge_cooldown_sec must be positive, got %d", t.NudgeCooldownSec)
	}
	if t.TickIntervalSec <= 0 {
		return fmt.Errorf("tick_interval_sec must be positive, got %d", t.TickIntervalSec)
	}
	if t.PopulationFloor < 0 {
		return fmt.Errorf("population_floor must be non-negative, got %d", t.PopulationFloor)
	}
	return nil
}

// NudgeCooldown returns the cooldown window as a duration.
func (t Tuning) NudgeCooldown() time.Duration {
	return time.Duration(t.NudgeCooldownSec) * time.Second
}

// TickInterval returns the simulator interval as a duration.
func (t Tuning) TickInterval() time.Duration {
	return time.Duration(t.TickIntervalSec) * time.Second
}

// DeliveryTimeout returns the per-dispatch delivery timeout.
func (t Tuning) DeliveryTimeout() time.Duration {
	return time.Duration(t.DeliveryTimeoutSec) * time.Second
}
