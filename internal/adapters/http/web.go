package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"log/slog"
	"net/http"
	"os"

	"cherish/internal/adapters/blobstore"
	"cherish/internal/adapters/email"
	"cherish/internal/adapters/http/middleware"
	appointmentStore "cherish/internal/adapters/storage/appointment"
	sessionStore "cherish/internal/adapters/storage/session"
	"cherish/internal/application/catalog"
	"cherish/internal/application/orchestrators"
)

// Stores holds the on-device storage dependencies.
type Stores struct {
	AppointmentStore appointmentStore.Store
	SessionStore     sessionStore.Store
}

// loadCSRFKey reads the CSRF secret from CHERISH_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("CHERISH_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CHERISH_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("CHERISH_ENV") == "production" {
		log.Fatal("CHERISH_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set CHERISH_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global activity catalog (set by NewMux)
var activityCatalog *catalog.Catalog

// Global blob client (set by NewMux)
var blobs *blobstore.Client

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender
var notifyAddress string

// Admin credentials (set by SetAdminCredentials)
var adminCredentials = orchestrators.AdminCredentials{
	Username: "admin",
	Password: "cherish2025",
}

// SetEmailSender sets the booking-notification sender and staff address.
func SetEmailSender(sender email.Sender, notifyTo string) {
	emailSender = sender
	notifyAddress = notifyTo
}

// SetAdminCredentials overrides the default admin login.
func SetAdminCredentials(creds orchestrators.AdminCredentials) {
	if creds.Username != "" {
		adminCredentials.Username = creds.Username
	}
	if creds.Password != "" {
		adminCredentials.Password = creds.Password
	}
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, cat *catalog.Catalog, blobClient *blobstore.Client) http.Handler {
	stores = s
	activityCatalog = cat
	blobs = blobClient
	sessions = middleware.NewSessionStore(s.SessionStore)
	middleware.SecureCookies = os.Getenv("CHERISH_ENV") == "production"

	// Logins survive restarts via the persisted session table.
	if persisted, err := s.SessionStore.List(context.Background()); err != nil {
		slog.Warn("session_event", "event", "restore_failed", "error", err)
	} else {
		sessions.Restore(persisted)
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, float64(RateLimitPerSecond))

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.RequestLog,
	)
}
