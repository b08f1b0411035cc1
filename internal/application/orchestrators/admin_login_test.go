package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// mockSessions records inserted and deleted tokens.
type mockSessions struct {
	inserted  map[string]time.Time
	deleted   []string
	insertErr error
}

func newMockSessions() *mockSessions {
	return &mockSessions{inserted: make(map[string]time.Time)}
}

func (m *mockSessions) Insert(_ context.Context, token string, createdAt time.Time) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted[token] = createdAt
	return nil
}

func (m *mockSessions) Delete(_ context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

func loginDeps(sessions *mockSessions, password string) AdminLoginDeps {
	return AdminLoginDeps{
		Credentials: AdminCredentials{Username: "admin", Password: password},
		Sessions:    sessions,
		Now:         fixedNow,
		GenerateID:  func() string { return "token-1" },
	}
}

func TestAdminLogin_Success(t *testing.T) {
	sessions := newMockSessions()
	token, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{Username: "admin", Password: "cherish2025"}, loginDeps(sessions, "cherish2025"))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token != "token-1" {
		t.Errorf("token = %q", token)
	}
	if _, ok := sessions.inserted["token-1"]; !ok {
		t.Error("session was not persisted")
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	sessions := newMockSessions()
	cases := []AdminLoginInput{
		{Username: "admin", Password: "wrong"},
		{Username: "someone", Password: "cherish2025"},
		{},
	}
	for _, input := range cases {
		if _, err := ExecuteAdminLogin(context.Background(), input, loginDeps(sessions, "cherish2025")); !errors.Is(err, ErrBadCredentials) {
			t.Errorf("input %+v: err = %v, want ErrBadCredentials", input, err)
		}
	}
	if len(sessions.inserted) != 0 {
		t.Error("no session should exist after failed logins")
	}
}

func TestAdminLogin_BcryptConfiguredPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash fixture: %v", err)
	}
	sessions := newMockSessions()

	if _, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{Username: "admin", Password: "s3cret"}, loginDeps(sessions, string(hash))); err != nil {
		t.Errorf("bcrypt login failed: %v", err)
	}
	if _, err := ExecuteAdminLogin(context.Background(), AdminLoginInput{Username: "admin", Password: "wrong"}, loginDeps(sessions, string(hash))); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("err = %v, want ErrBadCredentials", err)
	}
}

func TestAdminLogout(t *testing.T) {
	sessions := newMockSessions()
	if err := ExecuteAdminLogout(context.Background(), "token-1", loginDeps(sessions, "x")); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != "token-1" {
		t.Errorf("deleted = %v", sessions.deleted)
	}

	// Logging out without a session is a no-op.
	if err := ExecuteAdminLogout(context.Background(), "", loginDeps(sessions, "x")); err != nil {
		t.Errorf("empty-token logout = %v", err)
	}
}
