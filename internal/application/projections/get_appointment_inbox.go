package projections

import (
	"context"

	"cherish/internal/domain/appointment"
)

// AppointmentLister supplies the stored appointment list, newest first.
type AppointmentLister interface {
	List(ctx context.Context) ([]appointment.Appointment, error)
}

// GetAppointmentInboxResult carries the inbox read model.
type GetAppointmentInboxResult struct {
	Appointments []appointment.Appointment
	PendingCount int
	Fingerprint  string
}

// QueryGetAppointmentInbox builds the admin inbox view.
// POST: Appointments newest first; Fingerprint changes whenever any entry is
// added, removed, or transitions status
func QueryGetAppointmentInbox(ctx context.Context, store AppointmentLister) (GetAppointmentInboxResult, error) {
	list, err := store.List(ctx)
	if err != nil {
		return GetAppointmentInboxResult{}, err
	}

	pending := 0
	for _, a := range list {
		if a.IsPending() {
			pending++
		}
	}

	return GetAppointmentInboxResult{
		Appointments: list,
		PendingCount: pending,
		Fingerprint:  appointment.Fingerprint(list),
	}, nil
}
