package session

import (
	"context"
	"log/slog"
	"time"

	"cherish/internal/adapters/storage"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert persists a session token.
// PRE: token is non-empty
// POST: Token is stored with its creation time
func (s *SQLiteStore) Insert(ctx context.Context, token string, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_session (token, created_at) VALUES (?, ?)
		 ON CONFLICT(token) DO UPDATE SET created_at=excluded.created_at`,
		token, createdAt.UTC().Format(timeLayout))
	return err
}

// Delete removes a session token.
// POST: Token is no longer stored
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_session WHERE token = ?`, token)
	return err
}

// List returns all persisted sessions keyed by token.
// POST: Returns every stored token with its creation time
func (s *SQLiteStore) List(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, created_at FROM admin_session`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make(map[string]time.Time)
	for rows.Next() {
		var token, createdAt string
		if err := rows.Scan(&token, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			slog.Warn("session: failed to parse created_at", "raw", createdAt, "error", err)
			continue
		}
		sessions[token] = t
	}
	return sessions, rows.Err()
}
