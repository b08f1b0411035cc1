package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	domain "cherish/internal/domain/activity"
)

const activitiesKind = "activities"

// ActivityRecords adapts the generic table client to the activity list.
type ActivityRecords struct {
	client *Client
}

// NewActivityRecords creates a new ActivityRecords gateway.
func NewActivityRecords(client *Client) *ActivityRecords {
	return &ActivityRecords{client: client}
}

// ListActivities fetches all remotely stored activities, ascending by id.
// A missing table means the schema has not been created yet and is treated as
// an empty dataset, not an error. Records pass through the legacy upgrade.
// POST: Returns the remote list (possibly empty) or a propagated gateway error
func (r *ActivityRecords) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	records, err := r.client.List(ctx, activitiesKind)
	if errors.Is(err, ErrTableNotFound) {
		slog.Info("tablestore_event", "event", "activities_table_missing", "detail", "treating as empty dataset")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	activities := make([]domain.Activity, 0, len(records))
	for _, rec := range records {
		a, err := decodeActivity(rec)
		if err != nil {
			slog.Warn("tablestore: skipping unreadable activity record", "error", err)
			continue
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// ReplaceActivities persists the full authoritative list with entire-list
// upsert semantics: ids present remotely but absent from the new list are
// deleted, every id in the new list is inserted-or-updated.
// PRE: activities is the complete list
// POST: The remote table holds exactly these records
func (r *ActivityRecords) ReplaceActivities(ctx context.Context, activities []domain.Activity) error {
	existing, err := r.client.List(ctx, activitiesKind)
	if err != nil && !errors.Is(err, ErrTableNotFound) {
		return fmt.Errorf("tablestore: list existing activities: %w", err)
	}

	keep := make(map[int64]bool, len(activities))
	for _, a := range activities {
		keep[a.ID] = true
	}
	var stale []int64
	for _, rec := range existing {
		if id, ok := recordID(rec); ok && !keep[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := r.client.DeleteMany(ctx, activitiesKind, stale); err != nil {
			// Stale rows reappear at next startup's reconcile; not worth failing the save.
			slog.Warn("tablestore: failed to delete removed activities", "ids", stale, "error", err)
		}
	}

	records := make([]Record, 0, len(activities))
	for _, a := range activities {
		rec, err := encodeActivity(a)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if err := r.client.UpsertMany(ctx, activitiesKind, records); err != nil {
		return fmt.Errorf("tablestore: upsert activities: %w", err)
	}
	return nil
}

// DeleteActivity removes a single activity record by id.
func (r *ActivityRecords) DeleteActivity(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, activitiesKind, id)
}

func encodeActivity(a domain.Activity) (Record, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("tablestore: encode activity %d: %w", a.ID, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("tablestore: encode activity %d: %w", a.ID, err)
	}
	return rec, nil
}

func decodeActivity(rec Record) (domain.Activity, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.Activity{}, err
	}
	var stored domain.StoredActivity
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Activity{}, err
	}
	return stored.Upgrade(), nil
}

func recordID(rec Record) (int64, bool) {
	v, ok := rec["id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	}
	return 0, false
}
