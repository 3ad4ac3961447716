// Package client is the authenticated transport between ragdesk and the
// workspace API. Every call carries the current bearer token from a
// credential store; an expired token (HTTP 401) triggers a single refresh
// and a single retry. JSON, multipart and event-stream endpoints share the
// same exchange, and every failure is returned as a *Error.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/ragdesk/pkg/credentials"
	"github.com/papercomputeco/ragdesk/pkg/logger"
)

const (
	defaultRefreshPath = "/auth/refresh"
	defaultUserAgent   = "ragdesk"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CredentialStore is the part of credentials.Store the client depends on.
type CredentialStore interface {
	Get() credentials.Credentials
	Install(user *credentials.User, accessToken, refreshToken string) error
}

// Client executes requests against the workspace API.
type Client struct {
	baseURL   *url.URL
	store     CredentialStore
	doer      Doer
	logger    *slog.Logger
	headers   headers
	refresher *Refresher
	streamTap io.Writer

	refreshPath  string
	singleFlight bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the Doer used for every request. The default is an
// *http.Client without a timeout; deadlines come from the caller's context.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRefreshPath overrides the token refresh endpoint (default "/auth/refresh").
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// WithSingleFlightRefresh collapses concurrent refreshes into one call to the
// refresh endpoint. Without it each request that sees a 401 refreshes on its own.
func WithSingleFlightRefresh() Option {
	return func(c *Client) {
		c.singleFlight = true
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.headers.userAgent = ua
	}
}

// WithStreamTap copies the raw bytes of every event stream to w as they are
// decoded.
func WithStreamTap(w io.Writer) Option {
	return func(c *Client) {
		c.streamTap = w
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, store CredentialStore, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing api target: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api target %q must be an http or https URL", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api target %q has no host", baseURL)
	}

	c := &Client{
		baseURL:     u,
		store:       store,
		doer:        &http.Client{},
		logger:      logger.Nop(),
		headers:     headers{userAgent: defaultUserAgent},
		refreshPath: defaultRefreshPath,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.refresher = newRefresher(c, c.refreshPath, c.singleFlight)

	return c, nil
}

// Refresher returns the client's token refresh coordinator.
func (c *Client) Refresher() *Refresher {
	return c.refresher
}

// Do executes a JSON request and decodes a successful response body into out.
// A 204 response, or a nil out, leaves out untouched.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := req.encode()
	if err != nil {
		return err
	}

	target := c.resolve(req.Path, req.Query)
	resp, err := c.exchange(ctx, func() (*http.Request, error) {
		r, err := newRequest(ctx, req.method(), target, body)
		if err != nil {
			return nil, err
		}
		c.headers.set(r, req.Header)
		if body != nil {
			r.Header.Set("Content-Type", "application/json")
		}
		r.Header.Set("Accept", "application/json")
		return r, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handle(resp, out)
}

// Upload executes a multipart/form-data request. It follows the same
// authentication and retry rules as Do; the multipart body is rebuilt for the
// retry.
func (c *Client) Upload(ctx context.Context, up Upload, out any) error {
	if err := up.validate(); err != nil {
		return err
	}

	target := c.resolve(up.Path, nil)
	resp, err := c.exchange(ctx, func() (*http.Request, error) {
		contentType, body, err := up.encode()
		if err != nil {
			return nil, err
		}
		r, err := newRequest(ctx, up.method(), target, body)
		if err != nil {
			return nil, err
		}
		c.headers.set(r, up.Header)
		r.Header.Set("Content-Type", contentType)
		r.Header.Set("Accept", "application/json")
		return r, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handle(resp, out)
}

// resolve joins path onto the base URL.
func (c *Client) resolve(path string, query url.Values) string {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// handle turns a final response into the caller's result.
func (c *Client) handle(resp *http.Response, out any) error {
	if !successful(resp.StatusCode) {
		return normalizeResponse(resp)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := decodeJSON(resp.Body, out); err != nil {
		return &Error{
			Message: "decoding response",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}

	return nil
}

func newRequestID() string {
	return uuid.NewString()
}

func successful(status int) bool {
	return status >= 200 && status < 300
}
