package orchestrators

import (
	"context"
	"time"

	"cherish/internal/domain/appointment"
)

// DefaultWatchInterval is how often the inbox re-reads the appointment store.
const DefaultWatchInterval = time.Second

// InboxWatcher polls the appointment store so an open inbox view picks up
// bookings written by the public site. The store is shared across handlers,
// so polling is the change source rather than in-process notification.
type InboxWatcher struct {
	Store    AppointmentStore
	Interval time.Duration
}

// WaitForChange blocks until the inbox differs from the since fingerprint or
// ctx is done, and returns the new fingerprint. Cancellation returns the ctx
// error with the last observed fingerprint.
func (w *InboxWatcher) WaitForChange(ctx context.Context, since string) (string, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	current := since
	for {
		list, err := w.Store.List(ctx)
		if err != nil {
			return current, err
		}
		current = appointment.Fingerprint(list)
		if current != since {
			return current, nil
		}

		select {
		case <-ctx.Done():
			return current, ctx.Err()
		case <-ticker.C:
		}
	}
}
