package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/spazz-core/internal/config"
	"github.com/talgya/spazz-core/internal/geo"
	"github.com/talgya/spazz-core/internal/notify"
)

type recordingDeliverer struct {
	targets []uint64
	err     error
}

func (r *recordingDeliverer) Deliver(_ context.Context, target uint64, _ string, _ int) error {
	r.targets = append(r.targets, target)
	return r.err
}

func newTestService(t *testing.T, fake notify.Deliverer) (*Service, *Roster) {
	t.Helper()
	tun := config.Default()
	roster := NewRoster()
	dispatcher := notify.NewDispatcher(fake, time.Second, tun.NudgeCooldown())
	return NewService(roster, tun, dispatcher), roster
}

func addPair(t *testing.T, roster *Roster, meters float64) (EntityID, EntityID) {
	t.Helper()
	base := geo.LatLon{Lat: 40.7128, Lon: -74.0060}
	a, err := NewPlayer("ana", base, 28, "female", Preference{}, gateNow)
	require.NoError(t, err)
	b, err := NewPlayer("ben", metersApart(base, meters), 31, "male", Preference{}, gateNow)
	require.NoError(t, err)
	a.OnDuty, b.OnDuty = true, true
	idA := roster.Add(a)
	idB := roster.Add(b)
	return idA, idB
}

func TestCheckinFullPulseNotifiesBoth(t *testing.T) {
	fake := &recordingDeliverer{}
	svc, roster := newTestService(t, fake)
	idA, idB := addPair(t, roster, 10)
	require.NoError(t, roster.Like(idA, idB))
	require.NoError(t, roster.Like(idB, idA))

	report, err := svc.Checkin(context.Background(), idA, idB, gateNow)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFullPulse, report.Outcome.Kind)
	assert.True(t, report.SenderNotified)
	assert.True(t, report.ReceiverNotified)
	assert.ElementsMatch(t, []uint64{uint64(idA), uint64(idB)}, fake.targets)

	// Budget spent at commit.
	a, err := roster.Get(idA)
	require.NoError(t, err)
	assert.Equal(t, 1, a.BudgetUsed)
}

func TestCheckinNudgeFlow(t *testing.T) {
	fake := &recordingDeliverer{}
	svc, roster := newTestService(t, fake)
	idA, idB := addPair(t, roster, 80)
	require.NoError(t, roster.SetDuty(idB, false))
	// Last nudge 10 minutes ago, window is 5: allowed.
	require.NoError(t, roster.RecordNudge(idB, gateNow.Add(-10*time.Minute)))

	report, err := svc.Checkin(context.Background(), idA, idB, gateNow)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNudge, report.Outcome.Kind)
	assert.True(t, report.NudgeDelivered)
	assert.Equal(t, []uint64{uint64(idB)}, fake.targets)

	// Cooldown stamp updated after the confirmed delivery.
	b, err := roster.Get(idB)
	require.NoError(t, err)
	assert.Equal(t, gateNow, b.LastNudge)
}

func TestCheckinNudgeSuppressedInsideCooldown(t *testing.T) {
	fake := &recordingDeliverer{}
	svc, roster := newTestService(t, fake)
	idA, idB := addPair(t, roster, 80)
	require.NoError(t, roster.SetDuty(idB, false))
	last := gateNow.Add(-1 * time.Minute)
	require.NoError(t, roster.RecordNudge(idB, last))

	report, err := svc.Checkin(context.Background(), idA, idB, gateNow)
	require.NoError(t, err)
	assert.True(t, report.NudgeSuppressed)
	assert.False(t, report.NudgeDelivered)
	// No delivery call was made at all.
	assert.Empty(t, fake.targets)

	// And the stamp did not move.
	b, err := roster.Get(idB)
	require.NoError(t, err)
	assert.Equal(t, last, b.LastNudge)
}

func TestCheckinFailedNudgeLeavesCooldownUntouched(t *testing.T) {
	fake := &recordingDeliverer{err: errors.New("push service down")}
	svc, roster := newTestService(t, fake)
	idA, idB := addPair(t, roster, 80)
	require.NoError(t, roster.SetDuty(idB, false))
	last := gateNow.Add(-10 * time.Minute)
	require.NoError(t, roster.RecordNudge(idB, last))

	report, err := svc.Checkin(context.Background(), idA, idB, gateNow)
	require.NoError(t, err)
	assert.False(t, report.NudgeDelivered)
	assert.False(t, report.NudgeSuppressed)

	// The user never got the nudge, so their window is not consumed and a
	// legitimate retry is not penalized.
	b, err := roster.Get(idB)
	require.NoError(t, err)
	assert.Equal(t, last, b.LastNudge)
}

func TestCheckinDenyMakesNoDeliveryCalls(t *testing.T) {
	fake := &recordingDeliverer{}
	svc, roster := newTestService(t, fake)
	idA, idB := addPair(t, roster, 1)
	require.NoError(t, roster.Block(idA, idB))

	report, err := svc.Checkin(context.Background(), idB, idA, gateNow)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeny, report.Outcome.Kind)
	assert.Equal(t, DenyBlocked, report.Outcome.Reason)
	assert.Empty(t, fake.targets)
}

func TestEvaluatePairUnknownEntity(t *testing.T) {
	svc, roster := newTestService(t, &recordingDeliverer{})
	idA, _ := addPair(t, roster, 10)

	_, err := svc.EvaluatePair(idA, 999, gateNow)
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestRosterSnapshotRestoreRoundTrip(t *testing.T) {
	_, roster := newTestService(t, &recordingDeliverer{})
	idA, idB := addPair(t, roster, 10)
	require.NoError(t, roster.Like(idA, idB))
	require.NoError(t, roster.Block(idB, idA))

	snap := roster.Snapshot()
	require.Len(t, snap, 2)

	fresh := NewRoster()
	fresh.Restore(snap)
	a, err := fresh.Get(idA)
	require.NoError(t, err)
	assert.True(t, a.HasLiked(idB))
	b, err := fresh.Get(idB)
	require.NoError(t, err)
	assert.True(t, b.HasBlocked(idA))

	// New ids continue past the restored maximum.
	w, err := NewWanderer("drifter", geo.LatLon{Lat: 40.7, Lon: -74.0}, gateNow)
	require.NoError(t, err)
	id := fresh.Add(w)
	assert.Greater(t, id, idB)
}

func TestRosterSnapshotIsFrozen(t *testing.T) {
	_, roster := newTestService(t, &recordingDeliverer{})
	idA, idB := addPair(t, roster, 10)

	snap := roster.Snapshot()
	require.NoError(t, roster.Like(idA, idB))

	// The earlier snapshot must not observe the later mutation.
	for _, e := range snap {
		if e.ID == idA {
			assert.False(t, e.HasLiked(idB))
		}
	}
}
