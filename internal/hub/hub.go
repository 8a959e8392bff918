// Package hub contains the HTTP plumbing shared by the AINS and I-Poll
// clients: context-aware GET/POST helpers against the hub's JSON API with
// bounded response reads and uniform status-code handling.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxBody bounds how much of a hub response is read into memory.
const maxBody = 1 << 20 // 1 MB

// StatusError is returned when the hub answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hub returned HTTP %d: %s", e.Code, e.Body)
}

// Doer issues requests against one hub base URL with one http.Client.
// Both sub-clients of the SDK share a Doer so the timeout is uniform.
type Doer struct {
	base string
	hc   *http.Client
}

// New creates a Doer for base. Trailing slashes are trimmed so paths can
// always be joined with a leading "/".
func New(base string, hc *http.Client) *Doer {
	return &Doer{base: strings.TrimRight(base, "/"), hc: hc}
}

// Base returns the hub base URL without a trailing slash.
func (d *Doer) Base() string { return d.base }

// Get issues GET {base}{path}?{query} and returns the response body.
func (d *Doer) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := d.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return d.do(req)
}

// PostJSON issues POST {base}{path} with payload JSON-encoded as the body.
func (d *Doer) PostJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.base+path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return d.do(req)
}

// do executes the request and maps non-2xx statuses to *StatusError.
func (d *Doer) do(req *http.Request) ([]byte, error) {
	resp, err := d.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
