package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"cherish/internal/adapters/http/middleware"
	"cherish/internal/application/orchestrators"
	"cherish/internal/application/projections"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken": func() string { return csrf.Token(r) },
		"isAdmin":   func() bool { return middleware.IsAdmin(r.Context()) },
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleHome handles GET / for the public site.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result := projections.QueryGetActivityPage(activityCatalog)
	renderTemplate(w, r, "home.html", map[string]any{
		"Cards":      result.Cards,
		"Categories": result.Categories,
		"Booked":     r.URL.Query().Get("booked") == "1",
	})
}

// handleAdminLogin handles GET (form) and POST (credentials) for /admin/login.
func handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		renderTemplate(w, r, "admin_login.html", map[string]any{})

	case "POST":
		input := orchestrators.AdminLoginInput{}
		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.Username = r.FormValue("username")
			input.Password = r.FormValue("password")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
		}

		deps := orchestrators.AdminLoginDeps{
			Credentials: adminCredentials,
			Sessions:    stores.SessionStore,
			Now:         timeNow,
		}
		token, err := orchestrators.ExecuteAdminLogin(r.Context(), input, deps)
		if errors.Is(err, orchestrators.ErrBadCredentials) {
			if isHTMLRequest(r) {
				w.WriteHeader(http.StatusUnauthorized)
				renderTemplate(w, r, "admin_login.html", map[string]any{"Error": "Invalid credentials"})
				return
			}
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}

		sessions.Add(token, timeNow())
		middleware.SetSessionCookie(w, token)
		if isHTMLRequest(r) {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
		} else {
			w.WriteHeader(http.StatusNoContent)
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminLogout handles POST /admin/logout.
func handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := middleware.SessionTokenFromRequest(r)
	deps := orchestrators.AdminLoginDeps{Sessions: stores.SessionStore}
	if err := orchestrators.ExecuteAdminLogout(r.Context(), token, deps); err != nil {
		slog.Warn("auth_event", "event", "logout_persist_failed", "error", err)
	}
	sessions.Delete(token)
	middleware.ClearSessionCookie(w)

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	} else {
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleHealth handles GET /api/health.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
