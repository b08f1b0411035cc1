package orchestrators

import (
	"context"
	"log/slog"

	"cherish/internal/domain/appointment"
)

// InboxDeps holds dependencies for the appointment inbox actions.
type InboxDeps struct {
	AppointmentStore AppointmentStore
}

// ExecuteConfirmAppointment marks a pending appointment confirmed.
// PRE: The appointment exists and is pending
// POST: Status is confirmed and persisted
func ExecuteConfirmAppointment(ctx context.Context, id int64, deps InboxDeps) error {
	return transitionAppointment(ctx, id, deps, (*appointment.Appointment).Confirm, "confirmed")
}

// ExecuteCancelAppointment marks a pending appointment cancelled.
// PRE: The appointment exists and is pending
// POST: Status is cancelled and persisted
func ExecuteCancelAppointment(ctx context.Context, id int64, deps InboxDeps) error {
	return transitionAppointment(ctx, id, deps, (*appointment.Appointment).Cancel, "cancelled")
}

// ExecuteDeleteAppointment removes an appointment from the inbox, whatever
// its status.
func ExecuteDeleteAppointment(ctx context.Context, id int64, deps InboxDeps) error {
	if err := deps.AppointmentStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("booking_event", "event", "appointment_deleted", "id", id)
	return nil
}

func transitionAppointment(ctx context.Context, id int64, deps InboxDeps, apply func(*appointment.Appointment) error, event string) error {
	a, err := deps.AppointmentStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := apply(&a); err != nil {
		return err
	}
	if err := deps.AppointmentStore.Save(ctx, a); err != nil {
		return err
	}
	slog.Info("booking_event", "event", "appointment_"+event, "id", id)
	return nil
}
