package notify

import (
	"context"
	"log/slog"
)

// LogDeliverer writes notifications to the structured log. It stands in for
// a real push transport in development and always reports success.
type LogDeliverer struct{}

// Deliver logs the notification.
func (LogDeliverer) Deliver(_ context.Context, target uint64, message string, intensityPct int) error {
	slog.Info("notification sent", "target", target, "message", message, "intensity", intensityPct)
	return nil
}
