package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cherish/internal/domain/activity"
)

// mockBlobs records deletions and owns anything under /activity-images/.
type mockBlobs struct {
	deleted   []string
	deleteErr error
}

func (m *mockBlobs) Owns(locator string) bool {
	return strings.Contains(locator, "/activity-images/")
}

func (m *mockBlobs) Delete(_ context.Context, locator string) error {
	m.deleted = append(m.deleted, locator)
	return m.deleteErr
}

func TestDeleteActivity_RemovesActivityAndPhotos(t *testing.T) {
	cat := newMockCatalog(activity.Activity{
		ID: 7, Title: "t", Description: "d", Category: activity.CategoryArt,
		Images: []string{
			"http://store/activity-images/7/a.jpg",
			"/static/art.png",
			"http://store/activity-images/7/b.jpg",
		},
	})
	blobs := &mockBlobs{}

	err := ExecuteDeleteActivity(context.Background(), 7, DeleteActivityDeps{Catalog: cat, Blobs: blobs})
	if err != nil {
		t.Fatalf("ExecuteDeleteActivity failed: %v", err)
	}
	if len(cat.removed) != 1 || cat.removed[0] != 7 {
		t.Errorf("removed = %v", cat.removed)
	}
	if len(blobs.deleted) != 2 {
		t.Errorf("deleted %d blobs, want 2 (static asset skipped)", len(blobs.deleted))
	}
}

func TestDeleteActivity_PhotoFailureDoesNotBlock(t *testing.T) {
	cat := newMockCatalog(activity.Activity{
		ID: 7, Title: "t", Description: "d", Category: activity.CategoryArt,
		Images: []string{"http://store/activity-images/7/a.jpg"},
	})
	blobs := &mockBlobs{deleteErr: errors.New("network down")}

	if err := ExecuteDeleteActivity(context.Background(), 7, DeleteActivityDeps{Catalog: cat, Blobs: blobs}); err != nil {
		t.Fatalf("blob failure must not block the delete: %v", err)
	}
	if len(cat.removed) != 1 {
		t.Error("activity should still be removed")
	}
}

func TestDeleteActivity_UnknownID(t *testing.T) {
	cat := newMockCatalog()
	err := ExecuteDeleteActivity(context.Background(), 42, DeleteActivityDeps{Catalog: cat, Blobs: &mockBlobs{}})
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("err = %v, want ErrActivityNotFound", err)
	}
}

func TestRemovePhoto_DeletesOwnedLocator(t *testing.T) {
	blobs := &mockBlobs{}
	images := []string{"/static/art.png", "http://store/activity-images/7/a.jpg"}

	out := ExecuteRemovePhoto(context.Background(), images, 1, RemovePhotoDeps{Blobs: blobs})
	if len(out) != 1 || out[0] != "/static/art.png" {
		t.Errorf("out = %v", out)
	}
	if len(blobs.deleted) != 1 {
		t.Errorf("deleted = %v", blobs.deleted)
	}
}

func TestRemovePhoto_StaticAssetSkipsBlobDelete(t *testing.T) {
	blobs := &mockBlobs{}
	out := ExecuteRemovePhoto(context.Background(), []string{"/static/art.png"}, 0, RemovePhotoDeps{Blobs: blobs})
	if len(out) != 0 {
		t.Errorf("out = %v", out)
	}
	if len(blobs.deleted) != 0 {
		t.Error("static assets must never hit the blob store")
	}
}

func TestRemovePhoto_IndexOutOfRange(t *testing.T) {
	images := []string{"a"}
	out := ExecuteRemovePhoto(context.Background(), images, 5, RemovePhotoDeps{Blobs: &mockBlobs{}})
	if len(out) != 1 {
		t.Errorf("out = %v, want unchanged list", out)
	}
}
