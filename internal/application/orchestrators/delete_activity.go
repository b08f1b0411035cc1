package orchestrators

import (
	"context"
	"errors"
	"log/slog"
)

// BlobRemover deletes stored photos by their public locator.
type BlobRemover interface {
	Owns(locator string) bool
	Delete(ctx context.Context, locator string) error
}

// DeleteActivityDeps holds dependencies for DeleteActivity.
type DeleteActivityDeps struct {
	Catalog ActivityCatalog
	Blobs   BlobRemover
}

// ErrActivityNotFound tags deletes of ids the catalog does not hold.
var ErrActivityNotFound = errors.New("activity not found")

// ExecuteDeleteActivity removes an activity and its stored photos.
// POST: The activity is gone from the catalog; photo deletion is best-effort
// and never blocks the removal
func ExecuteDeleteActivity(ctx context.Context, id int64, deps DeleteActivityDeps) error {
	a, ok := deps.Catalog.Get(id)
	if !ok {
		return ErrActivityNotFound
	}

	for _, locator := range a.Images {
		if !deps.Blobs.Owns(locator) {
			continue
		}
		if err := deps.Blobs.Delete(ctx, locator); err != nil {
			slog.Warn("activity_event", "event", "photo_delete_failed", "id", id, "locator", locator, "error", err)
		}
	}

	if err := deps.Catalog.Remove(ctx, id); err != nil {
		slog.Warn("activity_event", "event", "delete_persist_failed", "id", id, "error", err)
		return err
	}

	slog.Info("activity_event", "event", "deleted", "id", id, "photos", len(a.Images))
	return nil
}
