package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/srndpty/j-law-grep/internal/errors"
)

// DefaultTimeout bounds a single search round trip.
const DefaultTimeout = 10 * time.Second

// searchPath is the backend search endpoint.
const searchPath = "/api/search"

// Searcher executes search requests. The HTTP client implements it; tests
// and the response cache substitute their own.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// Client is an HTTP client for the search backend.
type Client struct {
	endpoint string
	http     *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the given backend base URL,
// e.g. "http://localhost:8000".
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured backend base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Search performs one search round trip. Transport failures and non-2xx
// statuses both surface as a SearchFailed error; the message embeds the
// HTTP status when one was received. No retries are attempted.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.InvalidQuery(err.Error(), err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Internal("failed to encode request", err)
	}

	u, err := url.JoinPath(c.endpoint, searchPath)
	if err != nil {
		return nil, apperrors.ConfigError(fmt.Sprintf("invalid endpoint %q", c.endpoint), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Internal("failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apperrors.SearchFailed(0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is not part of
		// the error contract beyond the status code.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, apperrors.SearchFailed(resp.StatusCode, nil)
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.SearchFailed(resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	return &result, nil
}

// Ping probes the backend with a minimal search. Used by the doctor
// command to report reachability.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Search(ctx, SearchRequest{
		Q:    "法",
		Mode: ModeLiteral,
		Size: MinSize,
		Page: 1,
	})
	return err
}

// Ensure Client implements Searcher.
var _ Searcher = (*Client)(nil)
