package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/spazz-core/internal/config"
	"github.com/talgya/spazz-core/internal/geo"
	"github.com/talgya/spazz-core/internal/match"
)

var simNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStepFillsPopulationFloor(t *testing.T) {
	tun := config.Default()
	tun.PopulationFloor = 5
	roster := match.NewRoster()

	// Start with 2 wanderers; the next tick must spawn exactly 3 more.
	for i := 0; i < 2; i++ {
		w, err := match.NewWanderer("seed", geo.LatLon{Lat: tun.BaseLat, Lon: tun.BaseLon}, simNow)
		require.NoError(t, err)
		roster.Add(w)
	}

	s := NewSimulator(roster, tun)
	s.Step(simNow)
	assert.Equal(t, 5, roster.WandererCount())

	// Ids are unique and spawn positions sit within the jitter radius of
	// the base location.
	seen := make(map[match.EntityID]bool)
	for _, e := range roster.Snapshot() {
		require.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
		assert.LessOrEqual(t, math.Abs(e.Position.Lat-tun.BaseLat), tun.JitterDeg+1e-9)
		assert.LessOrEqual(t, math.Abs(e.Position.Lon-tun.BaseLon), tun.JitterDeg+1e-9)
	}
}

func TestStepOnlyAddsNeverRemoves(t *testing.T) {
	tun := config.Default()
	tun.PopulationFloor = 3
	roster := match.NewRoster()
	s := NewSimulator(roster, tun)

	s.Step(simNow)
	require.Equal(t, 3, roster.WandererCount())

	// Above the floor nothing is culled.
	w, err := match.NewWanderer("extra", geo.LatLon{Lat: tun.BaseLat, Lon: tun.BaseLon}, simNow)
	require.NoError(t, err)
	roster.Add(w)
	s.Step(simNow.Add(time.Second))
	assert.Equal(t, 4, roster.WandererCount())
}

func TestStepJitterIsBounded(t *testing.T) {
	tun := config.Default()
	tun.PopulationFloor = 0
	roster := match.NewRoster()
	w, err := match.NewWanderer("drifter", geo.LatLon{Lat: tun.BaseLat, Lon: tun.BaseLon}, simNow)
	require.NoError(t, err)
	id := roster.Add(w)

	s := NewSimulator(roster, tun)
	prev := geo.LatLon{Lat: tun.BaseLat, Lon: tun.BaseLon}
	for i := 0; i < 20; i++ {
		s.Step(simNow.Add(time.Duration(i) * time.Second))
		cur, err := roster.Get(id)
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(cur.Position.Lat-prev.Lat), tun.JitterDeg+1e-9)
		assert.LessOrEqual(t, math.Abs(cur.Position.Lon-prev.Lon), tun.JitterDeg+1e-9)
		assert.NoError(t, cur.Position.Validate())
		prev = cur.Position
	}
}

func TestStepIgnoresPlayers(t *testing.T) {
	tun := config.Default()
	tun.PopulationFloor = 0
	roster := match.NewRoster()
	pos := geo.LatLon{Lat: 40.7128, Lon: -74.0060}
	p, err := match.NewPlayer("ana", pos, 28, "female", match.Preference{}, simNow)
	require.NoError(t, err)
	id := roster.Add(p)

	s := NewSimulator(roster, tun)
	s.Step(simNow)

	got, err := roster.Get(id)
	require.NoError(t, err)
	// Players move only by external command.
	assert.Equal(t, pos, got.Position)
}

func TestStepDeterministicFromSeed(t *testing.T) {
	run := func() []match.Entity {
		tun := config.Default()
		tun.PopulationFloor = 4
		roster := match.NewRoster()
		s := NewSimulator(roster, tun)
		for i := 0; i < 5; i++ {
			s.Step(simNow.Add(time.Duration(i) * time.Second))
		}
		return roster.Snapshot()
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Position, second[i].Position)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	tun := config.Default()
	tun.TickIntervalSec = 1
	roster := match.NewRoster()
	s := NewSimulator(roster, tun)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("simulator did not stop on context cancel")
	}
}
