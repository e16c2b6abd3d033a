// Package sim runs the presence simulator: a fixed-interval tick that keeps
// simulated wanderers drifting around the map and tops the population back up
// to a configured floor. The simulator shares the roster with request-serving
// evaluations; every read and write goes through the roster's own lock.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/spazz-core/internal/config"
	"github.com/talgya/spazz-core/internal/geo"
	"github.com/talgya/spazz-core/internal/match"
)

// noiseStep is how far the tick counter advances through the noise field per
// tick. Small steps give smooth drift instead of teleporting.
const noiseStep = 0.05

// Simulator owns the wanderer population.
type Simulator struct {
	roster *match.Roster
	tun    config.Tuning
	rng    *rand.Rand

	// Two independent noise channels so latitude and longitude drift do not
	// correlate into diagonal marches.
	latNoise opensimplex.Noise
	lonNoise opensimplex.Noise

	tick    uint64
	spawned uint64 // name sequence, not an id
}

// NewSimulator creates a simulator over the shared roster. Deterministic from
// the tuning seed, like the rest of the engine.
func NewSimulator(roster *match.Roster, tun config.Tuning) *Simulator {
	return &Simulator{
		roster:   roster,
		tun:      tun,
		rng:      rand.New(rand.NewSource(tun.Seed + 300)),
		latNoise: opensimplex.New(tun.Seed + 1),
		lonNoise: opensimplex.New(tun.Seed + 2),
	}
}

// Run drives the tick loop until the context is cancelled. The simulator is
// an owned task: started by process init, stopped by shutdown, never
// fire-and-forget.
func (s *Simulator) Run(ctx context.Context) {
	slog.Info("presence simulator started",
		"interval", s.tun.TickInterval(),
		"floor", s.tun.PopulationFloor,
	)
	ticker := time.NewTicker(s.tun.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("presence simulator stopped", "tick", s.tick)
			return
		case now := <-ticker.C:
			s.Step(now)
		}
	}
}

// Step advances the simulation by one tick: jitter every wanderer, then
// restore the population floor. Calling Step twice for one logical tick
// double-applies jitter; the loop in Run never does that.
//
// One entity's failure is isolated: it is logged and the rest of the
// population still moves.
func (s *Simulator) Step(now time.Time) {
	s.tick++

	for _, id := range s.roster.Wanderers() {
		if err := s.drift(id); err != nil {
			slog.Warn("wanderer tick failed", "entity", id, "error", err)
		}
	}

	if spawnedNow := s.maintainFloor(now); spawnedNow > 0 {
		slog.Info("population floor restored",
			"tick", s.tick,
			"spawned", spawnedNow,
			"wanderers", s.roster.WandererCount(),
		)
	}
}

// Tick returns the number of steps processed.
func (s *Simulator) Tick() uint64 { return s.tick }

// drift moves one wanderer by a noise-driven delta bounded by the jitter
// radius. Per-axis uniform deltas are a flat-earth approximation, not an
// isotropic walk on the sphere; at street scale the difference is noise.
func (s *Simulator) drift(id match.EntityID) error {
	e, err := s.roster.Get(id)
	if err != nil {
		return err
	}

	t := float64(s.tick) * noiseStep
	c := float64(id)
	pos := geo.LatLon{
		Lat: clamp(e.Position.Lat+s.latNoise.Eval2(t, c)*s.tun.JitterDeg, -90, 90),
		Lon: clamp(e.Position.Lon+s.lonNoise.Eval2(t, c)*s.tun.JitterDeg, -180, 180),
	}
	if err := s.roster.Move(id, pos); err != nil {
		return fmt.Errorf("move: %w", err)
	}
	return nil
}

// maintainFloor spawns wanderers until the population meets the floor. It
// only ever adds; no despawn policy exists.
func (s *Simulator) maintainFloor(now time.Time) int {
	missing := s.tun.PopulationFloor - s.roster.WandererCount()
	spawnedNow := 0
	for i := 0; i < missing; i++ {
		if err := s.spawnOne(now); err != nil {
			slog.Warn("wanderer spawn failed", "error", err)
			continue
		}
		spawnedNow++
	}
	return spawnedNow
}

func (s *Simulator) spawnOne(now time.Time) error {
	s.spawned++
	pos := geo.LatLon{
		Lat: clamp(s.tun.BaseLat+(s.rng.Float64()*2-1)*s.tun.JitterDeg, -90, 90),
		Lon: clamp(s.tun.BaseLon+(s.rng.Float64()*2-1)*s.tun.JitterDeg, -180, 180),
	}
	w, err := match.NewWanderer(fmt.Sprintf("drifter-%d", s.spawned), pos, now)
	if err != nil {
		return err
	}
	s.roster.Add(w)
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
