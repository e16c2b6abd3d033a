// Package notify dispatches proximity notifications through an external
// delivery transport. Delivery is at-most-once: a failed or timed-out send is
// reported, never retried, and never deduplicated by content — the only spam
// control is the time-windowed nudge cooldown.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Deliverer is the external notification transport. Implementations must
// treat a send as fire-and-forget; retry policy belongs to the caller's
// collaborators, not here.
type Deliverer interface {
	Deliver(ctx context.Context, target uint64, message string, intensityPct int) error
}

// Dispatcher wraps a Deliverer with per-call timeouts and nudge cooldown
// arithmetic. It holds no entity state; cooldown stamps live on the entities
// and are written by the caller only after a confirmed delivery.
type Dispatcher struct {
	deliverer Deliverer
	timeout   time.Duration
	cooldown  time.Duration
}

// NewDispatcher builds a dispatcher over the given transport.
func NewDispatcher(d Deliverer, timeout, cooldown time.Duration) *Dispatcher {
	return &Dispatcher{deliverer: d, timeout: timeout, cooldown: cooldown}
}

// Dispatch sends one notification. Returns whether the transport confirmed
// delivery. A timeout counts as not delivered. Calling twice with identical
// arguments produces two deliveries.
func (d *Dispatcher) Dispatch(ctx context.Context, target uint64, message string, intensityPct int) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.deliverer.Deliver(ctx, target, message, intensityPct); err != nil {
		slog.Warn("delivery failed", "target", target, "intensity", intensityPct, "error", err)
		return false
	}
	return true
}

// CanNudge reports whether the cooldown window has elapsed since the last
// nudge. Pure: calling it twice without an intervening nudge record gives the
// same answer.
func (d *Dispatcher) CanNudge(lastNudge, now time.Time) bool {
	return now.Sub(lastNudge) >= d.cooldown
}

// Cooldown exposes the configured window.
func (d *Dispatcher) Cooldown() time.Duration {
	return d.cooldown
}
