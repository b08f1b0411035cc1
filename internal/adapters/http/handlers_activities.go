package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"cherish/internal/adapters/imaging"
	"cherish/internal/application/orchestrators"
	"cherish/internal/application/projections"
	"cherish/internal/domain/activity"
)

// maxUploadForm caps a whole photo batch in memory.
const maxUploadForm = 256 << 20

// handleActivitiesAPI handles GET /api/activities, the public grid as JSON.
func handleActivitiesAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, projections.QueryGetActivityPage(activityCatalog))
}

// handleAdminDashboard handles GET /admin: editor plus appointment inbox.
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	activities := projections.QueryGetActivityPage(activityCatalog)
	inbox, err := projections.QueryGetAppointmentInbox(r.Context(), stores.AppointmentStore)
	if err != nil {
		internalError(w, err)
		return
	}

	// ?edit=<id> seeds the form with an existing activity.
	var editing *activity.Activity
	if idStr := r.URL.Query().Get("edit"); idStr != "" {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			if a, ok := activityCatalog.Get(id); ok {
				editing = &a
			}
		}
	}

	renderTemplate(w, r, "admin_dashboard.html", map[string]any{
		"Cards":        activities.Cards,
		"Categories":   activities.Categories,
		"Editing":      editing,
		"Appointments": inbox.Appointments,
		"PendingCount": inbox.PendingCount,
		"Fingerprint":  inbox.Fingerprint,
	})
}

// handleSaveActivity handles POST /admin/activities (create or update).
func handleSaveActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.SaveActivityInput{}
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		if idStr := r.FormValue("id"); idStr != "" {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				http.Error(w, "Invalid activity id", http.StatusBadRequest)
				return
			}
			input.EditingID = id
		}
		input.Title = r.FormValue("title")
		input.Description = r.FormValue("description")
		input.Category = r.FormValue("category")
		input.Date = r.FormValue("date")
		input.Images = r.Form["images"]
	} else {
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	deps := orchestrators.SaveActivityDeps{Catalog: activityCatalog, Now: timeNow}
	a, err := orchestrators.ExecuteSaveActivity(r.Context(), input, deps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	} else {
		writeJSON(w, http.StatusOK, a)
	}
}

// handleDeleteActivity handles POST /admin/activities/delete.
func handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Invalid activity id", http.StatusBadRequest)
		return
	}

	deps := orchestrators.DeleteActivityDeps{Catalog: activityCatalog, Blobs: blobs}
	if err := orchestrators.ExecuteDeleteActivity(r.Context(), id, deps); err != nil {
		if errors.Is(err, orchestrators.ErrActivityNotFound) {
			http.Error(w, "activity not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	} else {
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleUploadPhotos handles POST /api/admin/activities/photos (multipart).
// Field "activity_id" is 0 or absent for an unsaved draft; files arrive under
// "photos". Returns the public locators in original file order.
func handleUploadPhotos(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadForm); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	var activityID int64
	if idStr := r.FormValue("activity_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid activity id", http.StatusBadRequest)
			return
		}
		activityID = id
	}

	var files []orchestrators.PhotoFile
	for _, header := range r.MultipartForm.File["photos"] {
		f, err := header.Open()
		if err != nil {
			http.Error(w, "Invalid upload", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "Invalid upload", http.StatusBadRequest)
			return
		}
		files = append(files, orchestrators.PhotoFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	if len(files) == 0 {
		http.Error(w, "No photos in upload", http.StatusBadRequest)
		return
	}

	deps := orchestrators.UploadPhotosDeps{
		Blobs:    blobs,
		Compress: compressForUpload,
		Now:      timeNow,
	}
	locators, err := orchestrators.ExecuteUploadPhotos(r.Context(), orchestrators.UploadPhotosInput{
		ActivityID: activityID,
		Files:      files,
	}, deps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"images": locators})
}

// handleRemovePhoto handles POST /api/admin/activities/photos/remove.
func handleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Images []string `json:"images"`
		Index  int      `json:"index"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	remaining := orchestrators.ExecuteRemovePhoto(r.Context(), req.Images, req.Index, orchestrators.RemovePhotoDeps{Blobs: blobs})
	writeJSON(w, http.StatusOK, map[string]any{"images": remaining})
}

// compressForUpload adapts the imaging pipeline to the upload orchestrator.
func compressForUpload(data []byte, contentType string) ([]byte, string, string, error) {
	res, err := imaging.Compress(data, contentType)
	if err != nil {
		return nil, "", "", err
	}
	return res.Data, res.ContentType, res.Ext, nil
}
