// Package httpx is the shared HTTP/JSON client used by the connectors.
//
// Every connector call follows the same shape: build a URL against a base,
// attach an auth header, issue the request, decode the JSON response. This
// package owns that shape so the connectors stay declarative. There are no
// retries, no rate limiting, and no pagination helpers; failures surface
// immediately as structured upstream errors.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patchbaylabs/patchbay/internal/errors"
)

// DefaultTimeout bounds a single connector API call.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an upstream error response is carried into
// the error message.
const maxErrorBody = 512

// Client issues JSON requests against one upstream API base URL.
type Client struct {
	baseURL string
	httpc   *http.Client
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client. Connectors share
// one pooled client injected at construction; tests inject their own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpc = hc
		}
	}
}

// WithBearerToken attaches "Authorization: Bearer <token>" to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.headers["Authorization"] = "Bearer " + token
	}
}

// WithHeader attaches a static header to every request. Services with
// non-bearer auth schemes (token headers, API-key headers) use this.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// NewClient creates a client rooted at baseURL. A trailing slash on the
// base is tolerated; request paths start with "/".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: DefaultTimeout},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL reports the configured base, mainly for logging.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON issues a GET and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// PutJSON issues a PUT with a JSON body and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Do issues one request. A nil body sends no payload; a nil out discards
// the response body. Non-2xx statuses, transport failures, and undecodable
// responses map to the upstream error codes so callers can present them
// uniformly.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.InternalError(fmt.Sprintf("marshal %s %s request", method, path), err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.InternalError(fmt.Sprintf("build %s %s request", method, path), err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.New(errors.ErrCodeUpstreamUnreachable,
			fmt.Sprintf("%s %s: upstream unreachable", method, path), err).
			WithDetail("method", method).
			WithDetail("path", path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.New(errors.ErrCodeUpstreamStatus,
			fmt.Sprintf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(excerpt))), nil).
			WithDetail("method", method).
			WithDetail("path", path).
			WithDetail("status", fmt.Sprintf("%d", resp.StatusCode))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New(errors.ErrCodeUpstreamDecode,
			fmt.Sprintf("%s %s: decode response", method, path), err).
			WithDetail("method", method).
			WithDetail("path", path)
	}
	return nil
}
