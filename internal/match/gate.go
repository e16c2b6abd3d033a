package match

import (
	"time"

	"github.com/talgya/spazz-core/internal/config"
	"github.com/talgya/spazz-core/internal/geo"
	"github.com/talgya/spazz-core/internal/pulse"
)

// OutcomeKind classifies a gate decision.
type OutcomeKind uint8

const (
	OutcomeNone      OutcomeKind = iota // no signal; success, not an error
	OutcomeDeny                         // terminal deny with a reason
	OutcomeFullPulse                    // both parties notified at intensity
	OutcomeNudge                        // one rate-limited nudge candidate
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDeny:
		return "deny"
	case OutcomeFullPulse:
		return "full-pulse"
	case OutcomeNudge:
		return "nudge"
	default:
		return "none"
	}
}

// MarshalText renders the kind as its label in JSON responses.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DenyReason is the first failing check, reported in check order.
type DenyReason string

const (
	DenyBlocked            DenyReason = "blocked"
	DenyAgeMismatch        DenyReason = "age-mismatch"
	DenyPreferenceMismatch DenyReason = "preference-mismatch"
	DenyBudgetExhausted    DenyReason = "budget-exhausted"
)

// Outcome is the gate's decision for one sender→receiver evaluation.
// It carries everything the dispatcher needs; nothing in here has been
// applied to shared state yet.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason DenyReason  `json:"reason,omitempty"`

	SenderID   EntityID `json:"sender_id"`
	ReceiverID EntityID `json:"receiver_id"`

	DistanceKm float64 `json:"distance_km"`
	BearingDeg float64 `json:"bearing_deg"`
	Compass    string  `json:"compass"`

	// Full pulse payload.
	IntensityPct int           `json:"intensity_pct,omitempty"`
	Profile      pulse.Profile `json:"profile,omitempty"`

	// Nudge payload: the off-duty party to wake up.
	NudgeTarget EntityID `json:"nudge_target,omitempty"`
}

// EvaluatePair is the gate: a pure decision over frozen entity copies and the
// current time. It never mutates anything — cooldown stamps and budget
// decrements belong to the commit step after a confirmed delivery, so a deny
// path can never half-apply side effects.
//
// Deny checks run in a fixed order and the first match is the reported
// reason: blocked, age-mismatch, preference-mismatch, budget-exhausted.
func EvaluatePair(sender, receiver Entity, now time.Time, tun config.Tuning) Outcome {
	distKm := geo.Distance(sender.Position, receiver.Position)
	bearing := geo.Bearing(sender.Position, receiver.Position)
	out := Outcome{
		Kind:       OutcomeNone,
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		DistanceKm: distKm,
		BearingDeg: bearing,
		Compass:    geo.CompassLabel(bearing),
	}

	// A block in either direction kills the pair outright, regardless of
	// distance or duty state. The two-sided check is deliberate: swapping
	// sender and receiver must never route around a block.
	if sender.HasBlocked(receiver.ID) || receiver.HasBlocked(sender.ID) {
		out.Kind = OutcomeDeny
		out.Reason = DenyBlocked
		return out
	}

	// Preference and budget gating applies only between two players.
	// Wanderers carry no meaningful age, gender, or budget.
	if sender.Kind == KindPlayer && receiver.Kind == KindPlayer {
		// Age check is two-sided: each party must fall in the other's range.
		if !sender.Pref.AcceptsAge(receiver.Age) || !receiver.Pref.AcceptsAge(sender.Age) {
			out.Kind = OutcomeDeny
			out.Reason = DenyAgeMismatch
			return out
		}
		if !sender.Pref.AcceptsGender(receiver.Gender) {
			out.Kind = OutcomeDeny
			out.Reason = DenyPreferenceMismatch
			return out
		}
		if sender.BudgetExhausted(tun.DailyLikeBudget, now) {
			out.Kind = OutcomeDeny
			out.Reason = DenyBudgetExhausted
			return out
		}
	}

	// Full pulse: both on the clock, mutual likes, inside pulse range.
	if sender.OnDuty && receiver.OnDuty &&
		sender.HasLiked(receiver.ID) && receiver.HasLiked(sender.ID) {
		intensity := pulse.Intensity(distKm, tun)
		if intensity > 0 {
			out.Kind = OutcomeFullPulse
			out.IntensityPct = intensity
			out.Profile = pulse.ProfileFor(distKm, tun)
			return out
		}
	}

	// Nudge: exactly one party off the clock, inside the wider vicinity
	// radius. The cooldown is the dispatcher's call, not the gate's.
	if distKm <= tun.VicinityKm && sender.OnDuty != receiver.OnDuty {
		if sender.OnDuty {
			out.NudgeTarget = receiver.ID
		} else {
			out.NudgeTarget = sender.ID
		}
		out.Kind = OutcomeNudge
		return out
	}

	// Both off duty, or outside all radii: idle.
	return out
}
