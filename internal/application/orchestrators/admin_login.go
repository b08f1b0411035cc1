package orchestrators

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionWriter persists admin session tokens.
type SessionWriter interface {
	Insert(ctx context.Context, token string, createdAt time.Time) error
	Delete(ctx context.Context, token string) error
}

// AdminCredentials is the single configured admin account.
type AdminCredentials struct {
	Username string
	// Password is either the plaintext or a bcrypt hash ($2 prefix).
	Password string
}

// AdminLoginInput carries the login form.
type AdminLoginInput struct {
	Username string
	Password string
}

// AdminLoginDeps holds dependencies for AdminLogin.
type AdminLoginDeps struct {
	Credentials AdminCredentials
	Sessions    SessionWriter
	Now         func() time.Time
	GenerateID  func() string
}

// ErrBadCredentials tags failed admin logins.
var ErrBadCredentials = errors.New("invalid credentials")

// ExecuteAdminLogin checks the admin credentials and mints a session token.
// POST: On success a persisted session token is returned; on mismatch
// ErrBadCredentials with no state change
func ExecuteAdminLogin(ctx context.Context, input AdminLoginInput, deps AdminLoginDeps) (string, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	generateID := deps.GenerateID
	if generateID == nil {
		generateID = uuid.NewString
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(deps.Credentials.Username)) == 1
	if !userOK || !passwordMatches(input.Password, deps.Credentials.Password) {
		slog.Info("auth_event", "event", "login_failed", "username", input.Username)
		return "", ErrBadCredentials
	}

	token := generateID()
	if err := deps.Sessions.Insert(ctx, token, now()); err != nil {
		return "", err
	}
	slog.Info("auth_event", "event", "login_success", "username", input.Username)
	return token, nil
}

// ExecuteAdminLogout drops a session token.
// POST: The token no longer grants admin access
func ExecuteAdminLogout(ctx context.Context, token string, deps AdminLoginDeps) error {
	if token == "" {
		return nil
	}
	if err := deps.Sessions.Delete(ctx, token); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}

// passwordMatches supports both a deployed bcrypt hash and the plaintext
// default. Plaintext uses a constant-time compare.
func passwordMatches(given, configured string) bool {
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(configured)) == 1
}
