// Package tablestore is the gateway to the hosted table storage backend. It
// speaks a PostgREST-style API: records travel as JSON field maps, filters go
// in the query string, and upserts use the merge-duplicates preference.
package tablestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Tagged gateway failures. ErrTableNotFound is non-fatal: on first run the
// remote schema may not exist yet, and callers treat it as an empty dataset.
var (
	ErrTableNotFound = errors.New("tablestore: table not found")
	ErrNotConfigured = errors.New("tablestore: no base URL configured")
)

// Record is one stored row as a field mapping.
type Record map[string]any

// Client issues requests against the hosted table API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// New creates a Client for the given base URL and service key. An empty base
// URL yields a client whose every call fails with ErrNotConfigured, so the
// rest of the app degrades to on-device data.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether a remote backend is set up.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// List returns all records of a kind, ascending by id.
// POST: Records in id-ascending order, or a tagged error
func (c *Client) List(ctx context.Context, kind string) ([]Record, error) {
	body, err := c.do(ctx, http.MethodGet, kind, "select=*&order=id.asc", nil, nil)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("tablestore: decode %s list: %w", kind, err)
	}
	return records, nil
}

// Get returns a single record by id.
// POST: Returns the record, ErrTableNotFound, or an error when the id is absent
func (c *Client) Get(ctx context.Context, kind string, id int64) (Record, error) {
	body, err := c.do(ctx, http.MethodGet, kind, fmt.Sprintf("select=*&id=eq.%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("tablestore: decode %s record: %w", kind, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tablestore: %s id %d not found", kind, id)
	}
	return records[0], nil
}

// Insert creates a new record.
func (c *Client) Insert(ctx context.Context, kind string, record Record) error {
	_, err := c.do(ctx, http.MethodPost, kind, "", record, nil)
	return err
}

// Update patches fields of an existing record by id.
func (c *Client) Update(ctx context.Context, kind string, id int64, fields Record) error {
	_, err := c.do(ctx, http.MethodPatch, kind, fmt.Sprintf("id=eq.%d", id), fields, nil)
	return err
}

// UpsertMany inserts-or-updates every given record by id.
// POST: Each record's id exists with the given fields
func (c *Client) UpsertMany(ctx context.Context, kind string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	headers := map[string]string{"Prefer": "resolution=merge-duplicates"}
	_, err := c.do(ctx, http.MethodPost, kind, "", records, headers)
	return err
}

// DeleteMany removes all records whose id is in ids.
func (c *Client) DeleteMany(ctx context.Context, kind string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	_, err := c.do(ctx, http.MethodDelete, kind, "id=in.("+strings.Join(parts, ",")+")", nil, nil)
	return err
}

// Delete removes a single record by id.
func (c *Client) Delete(ctx context.Context, kind string, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, kind, fmt.Sprintf("id=eq.%d", id), nil, nil)
	return err
}

// do issues one request and maps failure statuses onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, kind, query string, payload any, headers map[string]string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	url := c.baseURL + "/rest/v1/" + kind
	if query != "" {
		url += "?" + query
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("tablestore: encode %s payload: %w", kind, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tablestore: %s %s: %w", method, kind, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tablestore: read %s response: %w", kind, err)
	}

	if resp.StatusCode == http.StatusNotFound || isMissingTable(respBody) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, kind)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tablestore: %s %s: status %d: %s", method, kind, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// isMissingTable detects the API's "relation does not exist" error payload,
// which some deployments return with a 4xx other than 404.
func isMissingTable(body []byte) bool {
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return false
	}
	return e.Code == "PGRST116" || strings.Contains(e.Message, "does not exist")
}
