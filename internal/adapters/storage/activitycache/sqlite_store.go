package activitycache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cherish/internal/adapters/storage"
	domain "cherish/internal/domain/activity"
)

const (
	timeLayout = "2006-01-02T15:04:05Z07:00"

	snapshotKey = "activities"
	// legacyKey held a cached activity list before remote storage existed.
	// It is read once for backward migration, then discarded.
	legacyKey = "cherishActivities"
)

// SQLiteStore implements Store using the shared kv table.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Snapshot returns the fallback activity list, migrating the legacy key first
// if it is still present. Records pass through the legacy upgrade exactly here,
// at the store boundary.
// POST: Returns the stored list (nil when nothing is stored); legacy key is gone
func (s *SQLiteStore) Snapshot(ctx context.Context) ([]domain.Activity, error) {
	if err := s.migrateLegacy(ctx); err != nil {
		return nil, err
	}

	payload, err := s.get(ctx, snapshotKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStored(payload)
}

// SaveSnapshot replaces the fallback activity list.
// PRE: activities is the full authoritative list
// POST: The snapshot key holds exactly this list
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, activities []domain.Activity) error {
	payload, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("activitycache: encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, saved_at=excluded.saved_at`,
		snapshotKey, string(payload), time.Now().UTC().Format(timeLayout))
	return err
}

// migrateLegacy moves the pre-remote cached list into the snapshot key, once.
// The legacy payload may carry single-locator imageFile records.
func (s *SQLiteStore) migrateLegacy(ctx context.Context) error {
	payload, err := s.get(ctx, legacyKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	activities, err := decodeStored(payload)
	if err != nil {
		// A corrupt legacy payload is discarded rather than blocking startup.
		slog.Warn("activitycache: discarding unreadable legacy cache", "error", err)
		activities = nil
	}

	if activities != nil {
		if err := s.SaveSnapshot(ctx, activities); err != nil {
			return err
		}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, legacyKey); err != nil {
		return err
	}
	slog.Info("activitycache_event", "event", "legacy_cache_migrated", "count", len(activities))
	return nil
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM kv WHERE key = ?`, key).Scan(&payload)
	return payload, err
}

// decodeStored unmarshals a stored payload, applying the legacy record upgrade.
func decodeStored(payload string) ([]domain.Activity, error) {
	var stored []domain.StoredActivity
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		return nil, fmt.Errorf("activitycache: decode snapshot: %w", err)
	}
	activities := make([]domain.Activity, 0, len(stored))
	for _, rec := range stored {
		activities = append(activities, rec.Upgrade())
	}
	return activities, nil
}
