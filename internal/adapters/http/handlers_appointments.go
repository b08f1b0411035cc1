package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cherish/internal/application/orchestrators"
	"cherish/internal/application/projections"
	"cherish/internal/domain/appointment"
)

// watchTimeout bounds an inbox long-poll so proxies do not kill the request.
const watchTimeout = 25 * time.Second

// handleBookAppointment handles POST /appointments from the public booking form.
func handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.BookAppointmentInput{}
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.ParentName = r.FormValue("parent_name")
		input.ChildName = r.FormValue("child_name")
		input.Email = r.FormValue("email")
		input.Phone = r.FormValue("phone")
		input.ChildAge = r.FormValue("child_age")
		input.PreferredDate = r.FormValue("preferred_date")
		input.PreferredTime = r.FormValue("preferred_time")
		input.Message = r.FormValue("message")
	} else {
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	deps := orchestrators.BookAppointmentDeps{
		AppointmentStore: stores.AppointmentStore,
		Mailer:           emailSender,
		NotifyTo:         notifyAddress,
		Now:              timeNow,
	}
	a, err := orchestrators.ExecuteBookAppointment(r.Context(), input, deps)
	if errors.Is(err, appointment.ErrMissingField) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/?booked=1", http.StatusSeeOther)
	} else {
		writeJSON(w, http.StatusCreated, a)
	}
}

// handleAppointmentsAPI handles GET /api/admin/appointments, the inbox feed.
func handleAppointmentsAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	result, err := projections.QueryGetAppointmentInbox(r.Context(), stores.AppointmentStore)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAppointmentsWatch handles GET /api/admin/appointments/watch?since=<fp>.
// The request blocks until the inbox changes or the poll window closes; the
// client re-issues the request with the returned fingerprint.
func handleAppointmentsWatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), watchTimeout)
	defer cancel()

	watcher := &orchestrators.InboxWatcher{Store: stores.AppointmentStore}
	fingerprint, err := watcher.WaitForChange(ctx, r.URL.Query().Get("since"))
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		internalError(w, err)
		return
	}

	changed := err == nil
	writeJSON(w, http.StatusOK, map[string]any{
		"changed":     changed,
		"fingerprint": fingerprint,
	})
}

// handleAppointmentAction handles POST /admin/appointments/{confirm,cancel,delete}.
func handleAppointmentAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid appointment id", http.StatusBadRequest)
			return
		}

		deps := orchestrators.InboxDeps{AppointmentStore: stores.AppointmentStore}
		switch action {
		case "confirm":
			err = orchestrators.ExecuteConfirmAppointment(r.Context(), id, deps)
		case "cancel":
			err = orchestrators.ExecuteCancelAppointment(r.Context(), id, deps)
		case "delete":
			err = orchestrators.ExecuteDeleteAppointment(r.Context(), id, deps)
		}
		if errors.Is(err, appointment.ErrNotPending) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
		} else {
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
