package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	emailAdapter "cherish/internal/adapters/email"
	"cherish/internal/domain/appointment"
)

// AppointmentStore defines the interface for appointment persistence.
type AppointmentStore interface {
	GetByID(ctx context.Context, id int64) (appointment.Appointment, error)
	Save(ctx context.Context, a appointment.Appointment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]appointment.Appointment, error)
}

// BookAppointmentInput carries the public booking form.
type BookAppointmentInput struct {
	ParentName    string
	ChildName     string
	Email         string
	Phone         string
	ChildAge      string
	PreferredDate string
	PreferredTime string
	Message       string
}

// BookAppointmentDeps holds dependencies for BookAppointment.
type BookAppointmentDeps struct {
	AppointmentStore AppointmentStore
	Mailer           emailAdapter.Sender
	NotifyTo         string // staff address for new-booking notifications
	Now              func() time.Time
}

// ExecuteBookAppointment records a tour booking from the public site.
// PRE: All fields except Message are present
// POST: Appointment saved as pending; staff notification is best-effort and
// never blocks the booking
func ExecuteBookAppointment(ctx context.Context, input BookAppointmentInput, deps BookAppointmentDeps) (appointment.Appointment, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	a := appointment.Appointment{
		ID:            now().UnixMilli(),
		ParentName:    input.ParentName,
		ChildName:     input.ChildName,
		Email:         input.Email,
		Phone:         input.Phone,
		ChildAge:      input.ChildAge,
		PreferredDate: input.PreferredDate,
		PreferredTime: input.PreferredTime,
		Message:       input.Message,
		Status:        appointment.StatusPending,
		SubmittedAt:   now(),
	}
	if err := a.Validate(); err != nil {
		return appointment.Appointment{}, err
	}

	if err := deps.AppointmentStore.Save(ctx, a); err != nil {
		return appointment.Appointment{}, err
	}
	slog.Info("booking_event", "event", "appointment_created", "id", a.ID, "preferred_date", a.PreferredDate)

	if deps.Mailer != nil && deps.NotifyTo != "" {
		req := emailAdapter.SendRequest{
			To:      []string{deps.NotifyTo},
			Subject: fmt.Sprintf("New tour booking from %s", input.ParentName),
			HTML:    bookingNotificationHTML(a),
			ReplyTo: input.Email,
		}
		if _, err := deps.Mailer.Send(ctx, req); err != nil {
			slog.Warn("booking_event", "event", "notify_failed", "id", a.ID, "error", err)
		}
	}

	return a, nil
}

func bookingNotificationHTML(a appointment.Appointment) string {
	esc := html.EscapeString
	return fmt.Sprintf(
		`<h2>New tour booking</h2>
<p><strong>Parent:</strong> %s</p>
<p><strong>Child:</strong> %s (age %s)</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Preferred:</strong> %s at %s</p>
<p><strong>Message:</strong> %s</p>`,
		esc(a.ParentName), esc(a.ChildName), esc(a.ChildAge),
		esc(a.Email), esc(a.Phone),
		esc(a.PreferredDate), esc(a.PreferredTime), esc(a.Message))
}
