package activitycache

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"cherish/internal/adapters/storage"
	domain "cherish/internal/domain/activity"
)

func newTestStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return NewSQLiteStore(db), db
}

// TestSQLiteStore_EmptySnapshot tests that a fresh store returns nothing.
func TestSQLiteStore_EmptySnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil snapshot, got %v", got)
	}
}

// TestSQLiteStore_RoundTrip tests save and reload of the fallback list.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	list := []domain.Activity{
		{ID: 1, Title: "Art & Craft Day", Description: "d", Category: domain.CategoryArt, Images: []string{"http://x/a.jpg"}},
		{ID: 1700000000001, Title: "Water Play", Description: "d", Category: domain.CategoryNature},
	}

	if err := store.SaveSnapshot(ctx, list); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	got, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 1700000000001 {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if !reflect.DeepEqual(got[0].Images, []string{"http://x/a.jpg"}) {
		t.Errorf("images lost in round trip: %v", got[0].Images)
	}
}

// TestSQLiteStore_LegacyMigration tests the one-shot migration of the legacy
// cache key, including the imageFile upgrade.
func TestSQLiteStore_LegacyMigration(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	legacy := `[{"id":7,"title":"Old Day","description":"d","category":"art","imageFile":"http://x/one.jpg"},
	            {"id":8,"title":"Blanks","description":"d","category":"music","images":["", " ", "http://x/two.jpg"]}]`
	if _, err := db.Exec(`INSERT INTO kv (key, payload, saved_at) VALUES ('cherishActivities', ?, '2025-01-01T00:00:00Z')`, legacy); err != nil {
		t.Fatalf("failed to seed legacy key: %v", err)
	}

	got, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 migrated activities, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].Images, []string{"http://x/one.jpg"}) {
		t.Errorf("imageFile should migrate to images, got %v", got[0].Images)
	}
	if !reflect.DeepEqual(got[1].Images, []string{"http://x/two.jpg"}) {
		t.Errorf("blank locators should be filtered, got %v", got[1].Images)
	}

	// The legacy key is discarded after migration.
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM kv WHERE key = 'cherishActivities'`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Error("legacy key should be deleted after migration")
	}

	// A second read serves the migrated snapshot.
	again, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("second Snapshot failed: %v", err)
	}
	if len(again) != 2 {
		t.Errorf("migrated snapshot should persist, got %d entries", len(again))
	}
}
