// Package http implements the remote Granola API and the refresh token
// exchange over HTTP.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/granola"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Granola API endpoint.
	DefaultBaseURL = "https://api.granola.ai"

	// DefaultTimeout is the default timeout for one HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the number of documents requested per page.
	DefaultPageSize = 100

	// DefaultRateLimit is the default number of requests per second.
	DefaultRateLimit = 5
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 64 << 20

// DefaultRetryDelays returns the backoff delays for retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Ensure Client implements granola.API at compile time.
var _ granola.API = (*Client)(nil)

// Client calls the Granola API. Every request carries a bearer token from
// the token provider, is rate limited, and is retried with exponential
// backoff on rate limiting, server and network errors. An auth failure
// invalidates the token and retries once with a fresh one.
type Client struct {
	tokens        granola.TokenProvider
	baseURL       string
	timeout       time.Duration
	retryDelays   []time.Duration
	clientVersion string
	pageSize      int
	limiter       *rate.Limiter
	transport     http.RoundTripper
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API endpoint. Defaults to DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the timeout for a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetryDelays sets the backoff delays between attempts. The number of
// attempts is len(delays)+1.
func WithRetryDelays(delays []time.Duration) Option {
	return func(c *Client) {
		c.retryDelays = delays
	}
}

// WithClientVersion sets the client version reported to the API.
// Empty keeps granola.DefaultClientVersion.
func WithClientVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.clientVersion = v
		}
	}
}

// WithPageSize sets the number of documents requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRateLimit sets the request rate limit.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithTransport sets the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// NewClient creates a new Client.
func NewClient(tokens granola.TokenProvider, opts ...Option) *Client {
	c := &Client{
		tokens:        tokens,
		baseURL:       DefaultBaseURL,
		timeout:       DefaultTimeout,
		retryDelays:   DefaultRetryDelays(),
		clientVersion: granola.DefaultClientVersion,
		pageSize:      DefaultPageSize,
		limiter:       rate.NewLimiter(DefaultRateLimit, DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError is a non-2xx response.
type statusError struct {
	path   string
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.path, e.status)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.path, e.status, e.body)
}

func (e *statusError) auth() bool {
	return e.status == http.StatusUnauthorized || e.status == http.StatusForbidden
}

func (e *statusError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= 500
}

// call POSTs body to path and decodes the response into out.
func (c *Client) call(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	data, err := c.withRetry(ctx, path, payload)

	var se *statusError
	if errors.As(err, &se) && se.auth() {
		c.tokens.Invalidate()
		data, err = c.withRetry(ctx, path, payload)
		if errors.As(err, &se) && se.auth() {
			return granola.Errorf(granola.EAUTH, "%s rejected the access token (HTTP %d); run `granola init` with a fresh refresh token", path, se.status)
		}
	}
	if errors.As(err, &se) && se.status == http.StatusNotFound {
		return granola.Errorf(granola.ENOTFOUND, "%s: not found", path)
	}
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// withRetry sends the request, retrying transient failures with backoff.
// Exhausted retries surface as ETRANSIENT.
func (c *Client) withRetry(ctx context.Context, path string, payload []byte) ([]byte, error) {
	maxAttempts := len(c.retryDelays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		data, err := c.send(ctx, path, payload)
		if err == nil {
			return data, nil
		}
		if !c.retryable(ctx, err) {
			return nil, err
		}
		lastErr = err

		// Don't wait after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelays[attempt]):
		}
	}

	return nil, granola.Errorf(granola.ETRANSIENT, "%s failed after %d attempts: %v", path, maxAttempts, lastErr)
}

func (c *Client) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	// Application errors come from the token provider, not the network.
	return granola.ErrorCode(err) == granola.EINTERNAL
}

// send performs a single request.
func (c *Client) send(ctx context.Context, path string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", "Granola/"+c.clientVersion)
	req.Header.Set("X-Client-Version", c.clientVersion)

	client := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: tokenSource{ctx: ctx, tokens: c.tokens},
			Base:   c.transport,
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{path: path, status: resp.StatusCode, body: truncate(string(body), 200)}
	}
	return body, nil
}

// tokenSource adapts a granola.TokenProvider to oauth2.TokenSource.
type tokenSource struct {
	ctx    context.Context
	tokens granola.TokenProvider
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	access, err := s.tokens.AccessToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
