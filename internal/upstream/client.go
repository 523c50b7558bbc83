// Package upstream is the HTTP client for the backend REST API that owns
// all board data. The API is consumed as an opaque service: responses
// pass through to the browser byte-for-byte unless a handler explicitly
// translates them.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnreachable is returned when the upstream cannot be reached or
// times out. Handlers map it to 503.
var ErrUnreachable = errors.New("upstream unreachable")

// DefaultTimeout bounds every upstream call; a timeout is reported as
// ErrUnreachable rather than hanging the caller.
const DefaultTimeout = 10 * time.Second

// Options carries per-request headers and query parameters.
type Options struct {
	// Authorization is sent verbatim when non-empty (e.g. "Bearer <tok>").
	Authorization string
	// Cookie forwards the browser's inbound cookies for upstream session
	// affinity (refresh tokens live there).
	Cookie string
	// Query is appended to the request URL.
	Query url.Values
}

// Client issues JSON requests against a single upstream base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an upstream client. A non-positive timeout falls
// back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Do sends a request to the upstream. A non-nil body is JSON-encoded.
// Any transport-level failure (connection refused, DNS, timeout) is
// wrapped in ErrUnreachable; HTTP error statuses are not errors — the
// response is returned for the caller to translate or pass through.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts Options) (*Response, error) {
	u := c.baseURL + path
	if len(opts.Query) > 0 {
		u += "?" + opts.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if opts.Authorization != "" {
		req.Header.Set("Authorization", opts.Authorization)
	}
	if opts.Cookie != "" {
		req.Header.Set("Cookie", opts.Cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnreachable, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// Response is an upstream reply: status and raw body.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsEmpty reports whether the body carries no content. Some upstream
// error paths respond with an empty body that must be replaced with an
// explanatory message.
func (r *Response) IsEmpty() bool {
	return len(bytes.TrimSpace(r.Body)) == 0
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// JSON decodes the body as a generic object. Returns nil when the body
// is not a JSON object.
func (r *Response) JSON() map[string]any {
	var data map[string]any
	if err := json.Unmarshal(r.Body, &data); err != nil {
		return nil
	}
	return data
}

// Message extracts a human-readable error message from the body,
// preferring "message" over "error", falling back to the given string.
func (r *Response) Message(fallback string) string {
	data := r.JSON()
	if s, ok := data["message"].(string); ok && s != "" {
		return s
	}
	if s, ok := data["error"].(string); ok && s != "" {
		return s
	}
	return fallback
}

// Code extracts the machine-readable error code from the body, falling
// back to the given string. Upstream 401/403 codes pass through so the
// client can tell "needs refresh" from "forbidden".
func (r *Response) Code(fallback string) string {
	if s, ok := r.JSON()["code"].(string); ok && s != "" {
		return s
	}
	return fallback
}
