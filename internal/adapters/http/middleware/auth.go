package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const adminContextKey contextKey = "admin"

// sessionTTL is how long an admin login lasts.
const sessionTTL = 24 * time.Hour

// Session represents an authenticated admin session.
type Session struct {
	Token     string
	CreatedAt time.Time
}

// SessionPersister mirrors session changes to the on-device store so logins
// survive a restart.
type SessionPersister interface {
	Insert(ctx context.Context, token string, createdAt time.Time) error
	Delete(ctx context.Context, token string) error
}

// SessionStore is the in-memory session set, mirrored to a persister.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	persister SessionPersister
}

// NewSessionStore creates a session store. persister may be nil in tests.
func NewSessionStore(persister SessionPersister) *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]Session),
		persister: persister,
	}
}

// Restore seeds the store from previously persisted sessions, dropping any
// that have already expired.
// POST: Every unexpired token grants admin access again
func (ss *SessionStore) Restore(tokens map[string]time.Time) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for token, createdAt := range tokens {
		if time.Since(createdAt) > sessionTTL {
			continue
		}
		ss.sessions[token] = Session{Token: token, CreatedAt: createdAt}
	}
}

// Add records a freshly minted token.
// PRE: token came from a successful login
func (ss *SessionStore) Add(token string, createdAt time.Time) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{Token: token, CreatedAt: createdAt}
}

// Get retrieves a session by token.
// POST: Returns the session if valid and not expired
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok {
		return Session{}, false
	}
	if time.Since(session.CreatedAt) > sessionTTL {
		delete(ss.sessions, token)
		if ss.persister != nil {
			_ = ss.persister.Delete(context.Background(), token)
		}
		return Session{}, false
	}
	return session, true
}

// Delete removes a session by token.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

const sessionCookieName = "cherish_session"

// Auth returns middleware that resolves the admin session cookie into the
// request context. It does NOT block unauthenticated requests; use
// RequireAdmin for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					ctx := context.WithValue(r.Context(), adminContextKey, session)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that blocks requests without an admin
// session. Page requests redirect to the login form; API requests get 401.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			if isAPIRequest(r) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAPIRequest(r *http.Request) bool {
	return len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/"
}

// GetSessionFromContext extracts the admin session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(adminContextKey).(Session)
	return session, ok
}

// IsAdmin reports whether the request carries a valid admin session.
func IsAdmin(ctx context.Context) bool {
	_, ok := GetSessionFromContext(ctx)
	return ok
}

// SecureCookies controls the Secure flag on session cookies. Set true in
// production behind TLS.
var SecureCookies = false

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionTokenFromRequest returns the raw session cookie value, if any.
func SessionTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, adminContextKey, sess)
}
