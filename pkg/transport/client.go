// Package transport is the configured HTTP client for the assessment API.
// It resolves the /api base, attaches the bearer token to every request and
// turns failures into NetworkError, HTTPError or DecodeError.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
	"github.com/ekaya-inc/assessment-console/pkg/auth"
	"github.com/ekaya-inc/assessment-console/pkg/logging"
)

const (
	// requestIDHeader correlates console requests with backend logs.
	requestIDHeader = "X-Request-Id"

	// maxErrorBodyLength bounds how much of an error body is kept on HTTPError.
	maxErrorBodyLength = 2048
)

// Client provides access to the assessment API.
type Client struct {
	rootURL    string
	baseURL    string
	httpClient *http.Client
	healthHTTP *http.Client
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	base http.RoundTripper
}

// WithBaseTransport sets the RoundTripper wrapped by the auth transport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.base = rt
	}
}

// NewClient creates an API client for the backend rooted at rootURL.
// The REST surface is rootURL + "/api". tokens is consulted on every request;
// a nil source sends no Authorization header.
func NewClient(rootURL string, tokens auth.TokenSource, logger *zap.Logger, opts ...Option) *Client {
	o := &options{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(o)
	}

	root := strings.TrimRight(rootURL, "/")
	named := logger.Named("transport")

	return &Client{
		rootURL: root,
		baseURL: root + "/api",
		// No client-wide timeout: requests run until they finish or ctx ends.
		httpClient: &http.Client{
			Transport: &authTransport{base: o.base, tokens: tokens, logger: named},
		},
		healthHTTP: &http.Client{Transport: o.base},
		logger:     named,
	}
}

// BaseURL returns the REST base (root + "/api").
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NewRequest builds a request against the REST base. body, if non-nil, is sent as is;
// the caller sets Content-Type for non-JSON bodies.
func (c *Client) NewRequest(ctx context.Context, method string, query url.Values, body io.Reader, segments ...string) (*http.Request, error) {
	endpoint, err := buildURL(c.baseURL, query, segments...)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, query url.Values, out any, segments ...string) error {
	req, err := c.NewRequest(ctx, http.MethodGet, query, nil, segments...)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// Post issues a POST with a JSON body (nil for none) and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, body any, out any, segments ...string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.NewRequest(ctx, http.MethodPost, nil, reader, segments...)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// Do executes req and decodes a 2xx JSON response into out. out may be nil,
// and an empty body leaves out untouched.
func (c *Client) Do(req *http.Request, out any) error {
	logURL := logging.SanitizeURL(req.URL.String())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Assessment API unreachable",
			zap.String("method", req.Method),
			zap.String("url", logURL),
			zap.String("error", logging.SanitizeError(err)))
		return &NetworkError{Method: req.Method, URL: logURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: req.Method, URL: logURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("Assessment API response",
		zap.String("method", req.Method),
		zap.String("url", logURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{
			Method:     req.Method,
			URL:        logURL,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(body),
			Body:       logging.TruncateString(string(body), maxErrorBodyLength),
		}
		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("url", logURL),
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.TruncateString(string(body), logging.MaxBodyLogLength)),
		}
		if resp.StatusCode >= 500 {
			c.logger.Error("Assessment API returned error", fields...)
		} else {
			c.logger.Warn("Assessment API returned error", fields...)
		}
		return httpErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{URL: logURL, Err: err}
	}
	return nil
}

// Health checks GET {root}/health without credentials. Any failure or non-200
// status reports the backend as unavailable.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rootURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.healthHTTP.Do(req)
	if err != nil {
		c.logger.Debug("Health check failed", zap.String("error", logging.SanitizeError(err)))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// authTransport attaches the bearer token, a request id and JSON defaults.
type authTransport struct {
	base   http.RoundTripper
	tokens auth.TokenSource
	logger *zap.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	r := req.Clone(req.Context())

	if t.tokens != nil {
		token, err := t.tokens.Token(r.Context())
		if err != nil {
			// A missing token is the server's call to reject, not ours.
			t.logger.Warn("Failed to read auth token; sending request without it",
				zap.String("error", logging.SanitizeError(err)))
		} else if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if r.Header.Get(requestIDHeader) == "" {
		r.Header.Set(requestIDHeader, uuid.NewString())
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	if r.Body != nil && r.Body != http.NoBody && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}

	return t.base.RoundTrip(r)
}

// buildURL constructs a URL from the base, one escaped path segment per
// argument, and the query. Segments are ids from callers, so a "/" inside one
// is escaped and dot segments are refused.
func buildURL(baseURL string, query url.Values, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	decoded := strings.TrimRight(u.Path, "/")
	escaped := strings.TrimRight(u.EscapedPath(), "/")
	for _, seg := range pathSegments {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidPathSegment, seg)
		}
		decoded += "/" + seg
		escaped += "/" + url.PathEscape(seg)
	}
	u.Path = decoded
	u.RawPath = escaped
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}
