package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "cherish/internal/domain/activity"
)

// newTestClient points a Client at a stub table API.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-key")
}

// TestClient_NotConfigured tests that an empty base URL yields ErrNotConfigured.
func TestClient_NotConfigured(t *testing.T) {
	c := New("", "")
	if c.Configured() {
		t.Error("empty base URL should not be configured")
	}
	if _, err := c.List(context.Background(), "activities"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("List = %v, want ErrNotConfigured", err)
	}
	if err := c.Delete(context.Background(), "activities", 1); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Delete = %v, want ErrNotConfigured", err)
	}
}

// TestClient_ListAscendingOrder tests the request shape and decoding of List.
func TestClient_ListAscendingOrder(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("apikey")
		_, _ = w.Write([]byte(`[{"id":1,"title":"A"},{"id":2,"title":"B"}]`))
	})

	records, err := c.List(context.Background(), "activities")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if gotPath != "/rest/v1/activities" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "select=*&order=id.asc" {
		t.Errorf("query = %q, want ascending id order", gotQuery)
	}
	if gotKey != "test-key" {
		t.Errorf("apikey header = %q", gotKey)
	}
	if len(records) != 2 || records[0]["title"] != "A" {
		t.Errorf("unexpected records: %v", records)
	}
}

// TestClient_TableNotFound tests the tagged not-found failure for both the 404
// status and the API's error-payload form.
func TestClient_TableNotFound(t *testing.T) {
	t.Run("http 404", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		if _, err := c.List(context.Background(), "activities"); !errors.Is(err, ErrTableNotFound) {
			t.Errorf("List = %v, want ErrTableNotFound", err)
		}
	})

	t.Run("error payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"PGRST116","message":"relation \"activities\" does not exist"}`))
		})
		if _, err := c.List(context.Background(), "activities"); !errors.Is(err, ErrTableNotFound) {
			t.Errorf("List = %v, want ErrTableNotFound", err)
		}
	})
}

// TestClient_OtherFailurePropagates tests that non-404 failures surface with status detail.
func TestClient_OtherFailurePropagates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"backend down"}`))
	})
	_, err := c.List(context.Background(), "activities")
	if err == nil || errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected a propagated failure, got %v", err)
	}
}

// TestClient_UpsertMany tests the merge-duplicates preference and payload.
func TestClient_UpsertMany(t *testing.T) {
	var gotPrefer string
	var gotBody []Record
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
	})

	err := c.UpsertMany(context.Background(), "activities", []Record{{"id": float64(1)}, {"id": float64(2)}})
	if err != nil {
		t.Fatalf("UpsertMany failed: %v", err)
	}
	if gotPrefer != "resolution=merge-duplicates" {
		t.Errorf("Prefer header = %q", gotPrefer)
	}
	if len(gotBody) != 2 {
		t.Errorf("payload = %v", gotBody)
	}

	// Empty input never issues a request.
	if err := c.UpsertMany(context.Background(), "activities", nil); err != nil {
		t.Errorf("empty upsert should be a no-op, got %v", err)
	}
}

// TestClient_DeleteMany tests the id=in.(...) filter.
func TestClient_DeleteMany(t *testing.T) {
	var gotMethod, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteMany(context.Background(), "activities", []int64{4, 9}); err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q", gotMethod)
	}
	if gotQuery != "id=in.(4,9)" {
		t.Errorf("query = %q", gotQuery)
	}
}

// TestActivityRecords_ListMissingTableIsEmpty tests the first-run behavior.
func TestActivityRecords_ListMissingTableIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	got, err := NewActivityRecords(c).ListActivities(context.Background())
	if err != nil {
		t.Fatalf("missing table must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

// TestActivityRecords_ListUpgradesLegacyRecords tests the store-boundary upgrade.
func TestActivityRecords_ListUpgradesLegacyRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":7,"title":"Old","description":"d","category":"art","imageFile":"http://x/one.jpg"}]`))
	})
	got, err := NewActivityRecords(c).ListActivities(context.Background())
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Images) != 1 || got[0].Images[0] != "http://x/one.jpg" {
		t.Errorf("legacy imageFile should upgrade to images: %+v", got)
	}
}

// TestActivityRecords_ReplaceActivities tests entire-list upsert semantics:
// absent ids are deleted, present ids are upserted.
func TestActivityRecords_ReplaceActivities(t *testing.T) {
	var deletedQuery string
	var upserted []Record
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":1},{"id":2},{"id":99}]`))
		case http.MethodDelete:
			deletedQuery = r.URL.RawQuery
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &upserted)
			w.WriteHeader(http.StatusCreated)
		}
	})

	list := []domain.Activity{
		{ID: 1, Title: "Art & Craft Day", Description: "d", Category: domain.CategoryArt},
		{ID: 2, Title: "Story Time", Description: "d", Category: domain.CategoryReading},
	}
	if err := NewActivityRecords(c).ReplaceActivities(context.Background(), list); err != nil {
		t.Fatalf("ReplaceActivities failed: %v", err)
	}
	if deletedQuery != "id=in.(99)" {
		t.Errorf("stale id should be deleted, query = %q", deletedQuery)
	}
	if len(upserted) != 2 {
		t.Errorf("expected 2 upserted records, got %v", upserted)
	}
}
