package blobstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "blob-key", "activity-images")
}

func TestClient_NotConfigured(t *testing.T) {
	c := New("", "", "activity-images")
	if _, err := c.Upload(context.Background(), "1/a.jpg", []byte("x"), "image/jpeg"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Upload = %v, want ErrNotConfigured", err)
	}
	if err := c.Delete(context.Background(), "http://x/activity-images/1/a.jpg"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Delete = %v, want ErrNotConfigured", err)
	}
}

func TestClient_UploadReturnsPublicURL(t *testing.T) {
	var gotPath, gotType, gotAuth string
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	url, err := c.Upload(context.Background(), "12/1700-abc.jpg", []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if gotPath != "/storage/v1/object/activity-images/12/1700-abc.jpg" {
		t.Errorf("path = %q", gotPath)
	}
	if gotType != "image/jpeg" {
		t.Errorf("content type = %q", gotType)
	}
	if gotAuth != "Bearer blob-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if string(gotBody) != "jpeg-bytes" {
		t.Errorf("body = %q", gotBody)
	}
	want := c.PublicURL("12/1700-abc.jpg")
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestClient_UploadFailureSurfacesStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("row-level security"))
	})
	if _, err := c.Upload(context.Background(), "1/a.jpg", []byte("x"), "image/png"); err == nil {
		t.Fatal("expected an error for a failed upload")
	}
}

func TestClient_Owns(t *testing.T) {
	c := New("http://store.example", "", "activity-images")
	cases := []struct {
		locator string
		want    bool
	}{
		{"http://store.example/storage/v1/object/public/activity-images/12/a.jpg", true},
		{"http://elsewhere.example/activity-images/12/a.jpg", true},
		{"http://store.example/storage/v1/object/public/other-bucket/a.jpg", false},
		{"/static/art.png", false},
		{"http://store.example/storage/v1/object/public/activity-images/", false},
	}
	for _, tc := range cases {
		if got := c.Owns(tc.locator); got != tc.want {
			t.Errorf("Owns(%q) = %v, want %v", tc.locator, got, tc.want)
		}
	}
}

func TestClient_DeleteParsesKeyFromLocator(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	locator := c.PublicURL("12/1700-abc.jpg")
	if err := c.Delete(context.Background(), locator); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q", gotMethod)
	}
	if gotPath != "/storage/v1/object/activity-images/12/1700-abc.jpg" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestClient_DeleteForeignLocator(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued for a foreign locator")
	})
	err := c.Delete(context.Background(), "/static/art.png")
	if !errors.Is(err, ErrNotOwned) {
		t.Errorf("Delete = %v, want ErrNotOwned", err)
	}
}
