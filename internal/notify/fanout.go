package notify

import (
	"context"
	"errors"
)

// Fanout tries each transport in order and reports success as soon as one
// confirms. A live websocket client beats the Kafka hop which beats the log;
// the caller wires the order.
type Fanout []Deliverer

// Deliver attempts each transport until one succeeds.
func (f Fanout) Deliver(ctx context.Context, target uint64, message string, intensityPct int) error {
	var errs []error
	for _, d := range f {
		if err := d.Deliver(ctx, target, message, intensityPct); err != nil {
			errs = append(errs, err)
			continue
		}
		return nil
	}
	if len(errs) == 0 {
		return errors.New("notify: no transports configured")
	}
	return errors.Join(errs...)
}
