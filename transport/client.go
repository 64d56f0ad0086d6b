package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// Client issues signed HTTP requests to a share node.
type Client struct {
	HTTPClient *http.Client
	Key        []byte
}

// NewClient builds a Client with the given shared secret and per-call
// timeout (spec §6: HTTP_TIMEOUT).
func NewClient(key []byte, timeout time.Duration) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		Key:        key,
	}
}

// PostJSON signs and POSTs body (marshaled to canonical JSON) to url,
// decoding the JSON response into out (if non-nil).
func (c *Client) PostJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	canonical, err := CanonicalBody(body)
	if err != nil {
		return fmt.Errorf("transport: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(canonical))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.sign(req, canonical)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetJSON signs and issues a GET to url (canonical body "{}"), decoding
// the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	c.sign(req, []byte(emptyBodyCanonical))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) sign(req *http.Request, canonicalBody []byte) {
	ts := time.Now().Unix()
	sig := Sign(c.Key, ts, canonicalBody)
	req.Header.Set(HeaderTimestamp, fmt.Sprintf("%d", ts))
	req.Header.Set(HeaderSignature, sig)
}

// StatusError reports a non-2xx response from a signed call.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: remote returned status %d", e.StatusCode)
}
