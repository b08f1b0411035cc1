package orchestrators

import (
	"context"
	"errors"
	"testing"

	"cherish/internal/domain/appointment"
)

func pendingAppointment(id int64) appointment.Appointment {
	return appointment.Appointment{
		ID: id, ParentName: "p", ChildName: "c", Email: "e@x.com", Phone: "1",
		ChildAge: "3", PreferredDate: "2025-06-15", PreferredTime: "10:00",
		Status: appointment.StatusPending, SubmittedAt: fixedNow(),
	}
}

func TestConfirmAppointment(t *testing.T) {
	store := newMockAppointmentStore(pendingAppointment(1))
	if err := ExecuteConfirmAppointment(context.Background(), 1, InboxDeps{AppointmentStore: store}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if store.items[1].Status != appointment.StatusConfirmed {
		t.Errorf("status = %q", store.items[1].Status)
	}
}

func TestCancelAppointment(t *testing.T) {
	store := newMockAppointmentStore(pendingAppointment(1))
	if err := ExecuteCancelAppointment(context.Background(), 1, InboxDeps{AppointmentStore: store}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if store.items[1].Status != appointment.StatusCancelled {
		t.Errorf("status = %q", store.items[1].Status)
	}
}

func TestConfirm_OnlyFromPending(t *testing.T) {
	confirmed := pendingAppointment(1)
	confirmed.Status = appointment.StatusConfirmed
	store := newMockAppointmentStore(confirmed)

	if err := ExecuteCancelAppointment(context.Background(), 1, InboxDeps{AppointmentStore: store}); !errors.Is(err, appointment.ErrNotPending) {
		t.Errorf("err = %v, want ErrNotPending", err)
	}
	if store.items[1].Status != appointment.StatusConfirmed {
		t.Error("status must not change on a rejected transition")
	}
}

func TestDeleteAppointment_AnyStatus(t *testing.T) {
	cancelled := pendingAppointment(1)
	cancelled.Status = appointment.StatusCancelled
	store := newMockAppointmentStore(cancelled)

	if err := ExecuteDeleteAppointment(context.Background(), 1, InboxDeps{AppointmentStore: store}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(store.items) != 0 {
		t.Error("appointment should be gone")
	}
}

func TestInboxActions_UnknownID(t *testing.T) {
	store := newMockAppointmentStore()
	if err := ExecuteConfirmAppointment(context.Background(), 42, InboxDeps{AppointmentStore: store}); err == nil {
		t.Error("confirm of an unknown id should fail")
	}
	if err := ExecuteDeleteAppointment(context.Background(), 42, InboxDeps{AppointmentStore: store}); err == nil {
		t.Error("delete of an unknown id should fail")
	}
}
