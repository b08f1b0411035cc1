package web

import (
	"net/http"

	"cherish/internal/adapters/http/middleware"
)

// registerRoutes attaches all handlers to the mux. Admin surfaces sit behind
// RequireAdmin; everything else is public.
func registerRoutes(mux *http.ServeMux) {
	// Public site
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/appointments", handleBookAppointment)
	mux.HandleFunc("/api/activities", handleActivitiesAPI)
	mux.HandleFunc("/api/health", handleHealth)

	// Admin session
	mux.HandleFunc("/admin/login", handleAdminLogin)
	mux.HandleFunc("/admin/logout", handleAdminLogout)

	// Admin pages and actions
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}
	mux.Handle("/admin", admin(handleAdminDashboard))
	mux.Handle("/admin/activities", admin(handleSaveActivity))
	mux.Handle("/admin/activities/delete", admin(handleDeleteActivity))
	mux.Handle("/admin/appointments/confirm", admin(handleAppointmentAction("confirm")))
	mux.Handle("/admin/appointments/cancel", admin(handleAppointmentAction("cancel")))
	mux.Handle("/admin/appointments/delete", admin(handleAppointmentAction("delete")))

	// Admin API
	mux.Handle("/api/admin/activities/photos", admin(handleUploadPhotos))
	mux.Handle("/api/admin/activities/photos/remove", admin(handleRemovePhoto))
	mux.Handle("/api/admin/appointments", admin(handleAppointmentsAPI))
	mux.Handle("/api/admin/appointments/watch", admin(handleAppointmentsWatch))
}
