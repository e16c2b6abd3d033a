package match

import (
	"context"
	"time"

	"github.com/talgya/spazz-core/internal/config"
	"github.com/talgya/spazz-core/internal/geo"
	"github.com/talgya/spazz-core/internal/notify"
	"github.com/talgya/spazz-core/internal/pulse"
)

// NudgeIntensityPct is the fixed low intensity carried by nudges. Nudges wake
// a client up; they never drive the pulse hardware hard.
const NudgeIntensityPct = 5

// Service runs the evaluate → dispatch → commit sequence for a pair. One
// evaluation reads a frozen snapshot of both entities taken under a single
// lock acquisition; delivery happens with the lock released; commit re-takes
// the lock only for what was actually delivered.
type Service struct {
	roster     *Roster
	tun        config.Tuning
	dispatcher *notify.Dispatcher
}

// NewService wires the shared roster to a dispatcher.
func NewService(roster *Roster, tun config.Tuning, dispatcher *notify.Dispatcher) *Service {
	return &Service{roster: roster, tun: tun, dispatcher: dispatcher}
}

// Tuning exposes the service's constants to the serving layer.
func (s *Service) Tuning() config.Tuning { return s.tun }

// Roster exposes the shared entity collection.
func (s *Service) Roster() *Roster { return s.roster }

// EvaluatePair runs the gate over a consistent snapshot. Pure: no state is
// touched. Unknown ids are validation errors, not denials.
func (s *Service) EvaluatePair(idA, idB EntityID, now time.Time) (Outcome, error) {
	a, b, err := s.roster.Pair(idA, idB)
	if err != nil {
		return Outcome{}, err
	}
	return EvaluatePair(a, b, now, s.tun), nil
}

// Report describes what a Checkin actually did.
type Report struct {
	Outcome          Outcome `json:"outcome"`
	SenderNotified   bool    `json:"sender_notified"`
	ReceiverNotified bool    `json:"receiver_notified"`
	NudgeDelivered   bool    `json:"nudge_delivered"`
	NudgeSuppressed  bool    `json:"nudge_suppressed"` // cooldown no-op, not an error
}

// Checkin evaluates a pair and carries any allowed signal through delivery
// and commit. Deny and idle outcomes return immediately; a nudge inside its
// cooldown window is a silent no-op.
func (s *Service) Checkin(ctx context.Context, idA, idB EntityID, now time.Time) (Report, error) {
	a, b, err := s.roster.Pair(idA, idB)
	if err != nil {
		return Report{}, err
	}

	out := EvaluatePair(a, b, now, s.tun)
	report := Report{Outcome: out}

	switch out.Kind {
	case OutcomeFullPulse:
		// Each party looks toward the other, so the compass flips.
		senderMsg := notify.PulseMessage(out.Compass)
		receiverMsg := notify.PulseMessage(geo.CompassLabel(geo.Bearing(b.Position, a.Position)))
		if out.IntensityPct == pulse.SolidIntensity {
			senderMsg = notify.SolidMessage
			receiverMsg = notify.SolidMessage
		}

		// Delivery runs without the roster lock; a slow transport must not
		// stall the tick loop.
		report.SenderNotified = s.dispatcher.Dispatch(ctx, uint64(a.ID), senderMsg, out.IntensityPct)
		report.ReceiverNotified = s.dispatcher.Dispatch(ctx, uint64(b.ID), receiverMsg, out.IntensityPct)

		if report.SenderNotified || report.ReceiverNotified {
			if err := s.CommitDispatch(out, now); err != nil {
				return report, err
			}
		}

	case OutcomeNudge:
		target := a
		if out.NudgeTarget == b.ID {
			target = b
		}
		if !s.dispatcher.CanNudge(target.LastNudge, now) {
			report.NudgeSuppressed = true
			return report, nil
		}
		report.NudgeDelivered = s.dispatcher.Dispatch(ctx, uint64(target.ID), notify.NudgeMessage, NudgeIntensityPct)
		// The cooldown stamp moves only after the user actually got the
		// nudge; a failed delivery must not eat their window.
		if report.NudgeDelivered {
			if err := s.CommitDispatch(out, now); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

// CommitDispatch applies the side effects of a delivered outcome: the nudge
// cooldown stamp, or the sender's budget spend for a full pulse. Callers
// invoke it only after the transport confirmed delivery.
func (s *Service) CommitDispatch(out Outcome, now time.Time) error {
	switch out.Kind {
	case OutcomeFullPulse:
		return s.roster.SpendBudget(out.SenderID, now)
	case OutcomeNudge:
		return s.roster.RecordNudge(out.NudgeTarget, now)
	default:
		return nil
	}
}
