// Package client is a Go consumer for the front server. It carries the
// session cookie through a jar and transparently recovers from access
// token expiry: on a 401 with code TOKEN_EXPIRED it refreshes the
// session once and replays the original request once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// ErrSessionExpired is returned when the refresh itself fails. The
// client has already attempted a best-effort logout by the time the
// caller sees this.
var ErrSessionExpired = errors.New("session expired")

const codeTokenExpired = "TOKEN_EXPIRED"

// Client wraps an http.Client with the session recovery flow.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// onSessionExpired, when set, fires after a failed refresh so the
	// application can redirect to its login flow.
	onSessionExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A cookie jar is
// installed if the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionExpiredHook registers a callback invoked once per request
// whose refresh attempt failed.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// New creates a client for the given front server base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{baseURL: baseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// Do sends the request and, on a token-expired 401, refreshes the
// session and replays it exactly once. The replay outcome is terminal:
// a second 401 passes through to the caller unhandled.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	if !c.tokenExpired(resp) {
		return resp, nil
	}
	resp.Body.Close()

	if err := c.refresh(ctx); err != nil {
		c.logout(ctx)
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	return c.send(ctx, method, path, payload)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

// tokenExpired reports whether the response is the front server's
// access-token-expired signal. The body is consumed; callers must not
// return the response once this reports true.
func (c *Client) tokenExpired(resp *http.Response) bool {
	if resp.StatusCode != http.StatusUnauthorized {
		return false
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return false
	}
	// Rewind so the caller can still read the body on passthrough.
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false
	}
	return payload.Code == codeTokenExpired
}

func (c *Client) refresh(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodPost, "/auth/refresh", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh returned %d", resp.StatusCode)
	}
	return nil
}

// logout is best effort: the session is already unusable, so failures
// only matter to the server's own cleanup.
func (c *Client) logout(ctx context.Context) {
	resp, err := c.send(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return
	}
	resp.Body.Close()
}
