// Package blobstore talks to the hosted object store that keeps uploaded
// activity photos. Objects live in a single public bucket and are addressed
// by their public URL everywhere else in the app.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured tags calls made without a hosted store endpoint.
	ErrNotConfigured = errors.New("blobstore: not configured")

	// ErrNotOwned tags delete attempts on locators outside our bucket.
	ErrNotOwned = errors.New("blobstore: locator not owned by this bucket")
)

// Client uploads and deletes objects in one bucket of the hosted store.
type Client struct {
	baseURL string
	apiKey  string
	bucket  string
	httpc   *http.Client
}

// New builds a client for the given store endpoint and bucket. An empty
// baseURL yields a client whose calls all fail with ErrNotConfigured.
func New(baseURL, apiKey, bucket string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether the client points at a real endpoint.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Upload stores data under key and returns its public URL.
// PRE: key is a bucket-relative path like "12/1700000000-abc.jpg"
// POST: The object is readable at the returned URL
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("blobstore: build upload: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("blobstore: upload %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("blobstore: upload %s: status %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return c.PublicURL(key), nil
}

// PublicURL returns the stable public locator for a bucket key.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, key)
}

// Owns reports whether a locator points into this client's bucket.
func (c *Client) Owns(locator string) bool {
	_, ok := c.keyOf(locator)
	return ok
}

// Delete removes the object a public locator points at.
// POST: The object is gone, or ErrNotOwned when the locator is foreign
func (c *Client) Delete(ctx context.Context, locator string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	key, ok := c.keyOf(locator)
	if !ok {
		return ErrNotOwned
	}
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("blobstore: build delete: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("blobstore: delete %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("blobstore: delete %s: status %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// keyOf extracts the bucket-relative key from a public locator. The key is
// whatever follows the first "/<bucket>/" segment.
func (c *Client) keyOf(locator string) (string, bool) {
	if c.bucket == "" {
		return "", false
	}
	marker := "/" + c.bucket + "/"
	i := strings.Index(locator, marker)
	if i < 0 {
		return "", false
	}
	key := locator[i+len(marker):]
	if key == "" {
		return "", false
	}
	return key, true
}
