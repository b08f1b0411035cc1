package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"cherish/internal/adapters/blobstore"
	emailPkg "cherish/internal/adapters/email"
	web "cherish/internal/adapters/http"
	"cherish/internal/adapters/storage"
	appointmentStorePkg "cherish/internal/adapters/storage/appointment"
	cacheStorePkg "cherish/internal/adapters/storage/activitycache"
	sessionStorePkg "cherish/internal/adapters/storage/session"
	"cherish/internal/adapters/tablestore"
	"cherish/internal/application/catalog"
	"cherish/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Local .env keeps dev configuration out of the shell profile.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// SQLite with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("CHERISH_DB_PATH", "cherish.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully!")

	stores := &web.Stores{
		AppointmentStore: appointmentStorePkg.NewSQLiteStore(db),
		SessionStore:     sessionStorePkg.NewSQLiteStore(db),
	}

	// Hosted table + blob gateways. Empty endpoints fall back to the bundled
	// defaults and the on-device snapshot.
	tableClient := tablestore.New(os.Getenv("CHERISH_TABLE_URL"), os.Getenv("CHERISH_TABLE_KEY"))
	blobClient := blobstore.New(
		envOrDefault("CHERISH_STORAGE_URL", os.Getenv("CHERISH_TABLE_URL")),
		envOrDefault("CHERISH_STORAGE_KEY", os.Getenv("CHERISH_TABLE_KEY")),
		envOrDefault("CHERISH_BUCKET", "activity-images"),
	)
	if !tableClient.Configured() {
		log.Println("WARNING: CHERISH_TABLE_URL is not set; activities persist on-device only")
	}

	cat := catalog.New(tablestore.NewActivityRecords(tableClient), cacheStorePkg.NewSQLiteStore(db))
	if err := cat.Load(context.Background()); err != nil {
		log.Fatalf("failed to load activity catalog: %v", err)
	}

	// Admin credentials (plaintext default, bcrypt hash supported)
	web.SetAdminCredentials(orchestrators.AdminCredentials{
		Username: os.Getenv("CHERISH_ADMIN_USER"),
		Password: os.Getenv("CHERISH_ADMIN_PASSWORD"),
	})

	// Configure email sender for booking notifications
	resendKey := os.Getenv("CHERISH_RESEND_KEY")
	emailFrom := envOrDefault("CHERISH_RESEND_FROM", "Cherish Preschool <noreply@cherishpreschool.co.nz>")
	notifyTo := envOrDefault("CHERISH_NOTIFY_TO", "office@cherishpreschool.co.nz")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), notifyTo)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), notifyTo)
		if os.Getenv("CHERISH_ENV") == "production" {
			log.Println("WARNING: CHERISH_RESEND_KEY is not set; booking notifications are DISABLED in production")
		} else {
			log.Println("Email sender configured (noop; set CHERISH_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux("static", stores, cat, blobClient)

	addr := envOrDefault("CHERISH_ADDR", ":8080")
	log.Printf("Cherish %s starting on %s (env=%s)", version, addr, envOrDefault("CHERISH_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
