package vtmsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 4 << 20

// Session supplies the bearer token for authenticated calls. Logout is
// invoked on every 401 response before the error reaches the caller.
type Session interface {
	Token() string
	Logout(ctx context.Context)
}

// Client wraps interactions with the VTMS REST API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	cache          *Cache
	logger         *slog.Logger
	onUnauthorized func(ctx context.Context)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithCache enables the query cache for list endpoints.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUnauthorizedHook registers fn to run after a session was logged out by a 401.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient constructs a new client for baseURL, e.g. http://localhost:4000/api/v1.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

func (c *Client) do(ctx context.Context, sess Session, req call, out any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("vtmsapi: encode %s: %w", req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		if token := sess.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("vtmsapi: %s %s: %w", req.method, req.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("vtmsapi: read %s: %w", req.path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && sess != nil {
		sess.Logout(ctx)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("vtmsapi: decode %s: %w", req.path, err)
	}
	return nil
}

func (c *Client) invalidate(ctx context.Context, tags ...string) {
	if err := c.cache.Invalidate(ctx, tags...); err != nil {
		c.logger.Warn("vtmsapi cache invalidate", slog.Any("tags", tags), slog.Any("error", err))
	}
}

func sessionToken(sess Session) string {
	if sess == nil {
		return ""
	}
	return sess.Token()
}
