// Package catalog owns the in-memory activity list the whole app reads and
// writes through. The hosted table is the durable copy and the on-device
// snapshot is the offline fallback; the catalog reconciles both against the
// bundled defaults at startup and keeps them in step on every mutation.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	domain "cherish/internal/domain/activity"
)

// RemoteStore is the hosted table the catalog syncs with.
type RemoteStore interface {
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	ReplaceActivities(ctx context.Context, activities []domain.Activity) error
	DeleteActivity(ctx context.Context, id int64) error
}

// SnapshotStore is the on-device fallback copy.
type SnapshotStore interface {
	Snapshot(ctx context.Context) ([]domain.Activity, error)
	SaveSnapshot(ctx context.Context, activities []domain.Activity) error
}

// Catalog holds the authoritative activity list behind a mutex. All reads
// hand out copies so callers can never mutate shared state.
type Catalog struct {
	mu      sync.RWMutex
	list    []domain.Activity
	remote  RemoteStore
	local   SnapshotStore
	hasSync bool
}

// New creates an empty catalog over the given stores. Call Load before use.
func New(remote RemoteStore, local SnapshotStore) *Catalog {
	return &Catalog{remote: remote, local: local}
}

// Load builds the working list: remote data when reachable, the on-device
// snapshot otherwise, reconciled over the bundled defaults.
// POST: The catalog is populated; bundled defaults are always present
func (c *Catalog) Load(ctx context.Context) error {
	stored, err := c.remote.ListActivities(ctx)
	synced := err == nil
	if err != nil {
		slog.Warn("catalog_event", "event", "remote_load_failed", "error", err)
		stored, err = c.local.Snapshot(ctx)
		if err != nil {
			slog.Warn("catalog_event", "event", "snapshot_load_failed", "error", err)
			stored = nil
		}
	}

	list := domain.Reconcile(domain.Defaults(), stored)

	c.mu.Lock()
	c.list = list
	c.hasSync = synced
	c.mu.Unlock()

	if err := c.local.SaveSnapshot(ctx, list); err != nil {
		slog.Warn("catalog_event", "event", "snapshot_save_failed", "error", err)
	}
	slog.Info("catalog_event", "event", "loaded", "count", len(list), "remote", synced)
	return nil
}

// All returns a copy of the current list in stored order.
func (c *Catalog) All() []domain.Activity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyList(c.list)
}

// Get returns the activity with the given id.
func (c *Catalog) Get(id int64) (domain.Activity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.list {
		if a.ID == id {
			return copyActivity(a), true
		}
	}
	return domain.Activity{}, false
}

// NextID returns an id strictly greater than every id in the catalog, with
// floor as the minimum candidate.
func (c *Catalog) NextID(floor int64) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id := floor
	for _, a := range c.list {
		if a.ID >= id {
			id = a.ID + 1
		}
	}
	return id
}

// Upsert replaces or appends one activity and persists the whole list to
// both stores. A remote write failure is reported but the in-memory list and
// the snapshot still advance, matching offline-first behavior.
// PRE: a passed domain validation
// POST: The catalog contains a; both stores were offered the new list
func (c *Catalog) Upsert(ctx context.Context, a domain.Activity) error {
	c.mu.Lock()
	replaced := false
	for i := range c.list {
		if c.list[i].ID == a.ID {
			c.list[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		c.list = append(c.list, a)
		sort.SliceStable(c.list, func(i, j int) bool { return c.list[i].ID < c.list[j].ID })
	}
	list := copyList(c.list)
	c.mu.Unlock()

	return c.persist(ctx, list)
}

// Remove deletes one activity from the list and both stores.
// POST: No activity with the given id remains in the catalog
func (c *Catalog) Remove(ctx context.Context, id int64) error {
	c.mu.Lock()
	kept := c.list[:0]
	for _, a := range c.list {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	c.list = kept
	list := copyList(c.list)
	c.mu.Unlock()

	if err := c.remote.DeleteActivity(ctx, id); err != nil {
		slog.Warn("catalog_event", "event", "remote_delete_failed", "id", id, "error", err)
	}
	return c.persist(ctx, list)
}

func (c *Catalog) persist(ctx context.Context, list []domain.Activity) error {
	if err := c.local.SaveSnapshot(ctx, list); err != nil {
		slog.Warn("catalog_event", "event", "snapshot_save_failed", "error", err)
	}
	if err := c.remote.ReplaceActivities(ctx, list); err != nil {
		slog.Warn("catalog_event", "event", "remote_save_failed", "error", err)
		return err
	}
	return nil
}

func copyList(list []domain.Activity) []domain.Activity {
	out := make([]domain.Activity, len(list))
	for i, a := range list {
		out[i] = copyActivity(a)
	}
	return out
}

func copyActivity(a domain.Activity) domain.Activity {
	images := make([]string, len(a.Images))
	copy(images, a.Images)
	a.Images = images
	return a
}
