package activitycache

import (
	"context"

	domain "cherish/internal/domain/activity"
)

// Store persists the on-device fallback copy of the activity list. It is a
// replica: the in-memory catalog is the single mutable owner, and this store
// is only read once at startup.
type Store interface {
	Snapshot(ctx context.Context) ([]domain.Activity, error)
	SaveSnapshot(ctx context.Context, activities []domain.Activity) error
}
