// Package http provides the low-level request dispatcher for the Tablebase
// API: request construction, auth headers, response classification, and the
// managed rate-limit retry policy. Every read and write in the client passes
// through Client.Do.
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tablebase-io/tablebase/internal/constants"
	"github.com/tablebase-io/tablebase/pkg/tablebase"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes one logical HTTP action. It is constructed fresh per call
// and never mutated between retry attempts: a retried action re-sends the
// identical method, path, query, and body.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is the classified outcome of a successful dispatch.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Client issues logical HTTP actions against the Tablebase API.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *retryablehttp.Client
	userAgent      string
	logger         Logger
	debug          bool
	requestTimeout time.Duration
	retryDisabled  bool
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the configured logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRequestTimeout bounds one logical action, retries included.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

// WithRetryWait tunes the backoff window between rate-limit retries.
func WithRetryWait(waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		if waitMin > 0 {
			c.httpClient.RetryWaitMin = waitMin
		}

		if waitMax > 0 {
			c.httpClient.RetryWaitMax = waitMax
		}
	}
}

// WithRetryDisabled turns off managed retry: a 429 response is surfaced
// immediately as a rate-limit error.
func WithRetryDisabled(disabled bool) Option {
	return func(c *Client) {
		c.retryDisabled = disabled
	}
}

// WithSkipTLSVerify disables TLS certificate verification. Callers are
// expected to gate this behind a development-mode check.
func WithSkipTLSVerify(skip bool) Option {
	return func(c *Client) {
		if skip {
			c.httpClient.HTTPClient.Transport = &nethttp.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- gated by tbclient's dev-mode check
			}
		}
	}
}

// WithHTTPClient substitutes the underlying standard HTTP client (for tests).
func WithHTTPClient(httpClient *nethttp.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = httpClient
	}
}

// NewClient creates a new dispatcher for the given endpoint. The API key may
// be empty, in which case requests are sent without authentication.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.RetryMax = constants.RetryAttemptCeiling
	retryClient.Logger = nil
	// DefaultBackoff honors Retry-After on 429 responses.
	retryClient.Backoff = retryablehttp.DefaultBackoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		apiKey:         apiKey,
		httpClient:     retryClient,
		userAgent:      constants.DefaultUserAgent,
		requestTimeout: constants.DefaultRequestTimeout,
	}

	retryClient.CheckRetry = client.checkRetry

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// checkRetry implements the response classification of the retry policy: only
// rate-limited responses are retried, and only while managed retry is enabled.
// Transport failures and every other non-2xx status are surfaced immediately.
func (c *Client) checkRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return false, err
	}

	if resp != nil && resp.StatusCode == nethttp.StatusTooManyRequests && !c.retryDisabled {
		return true, nil
	}

	return false, nil
}

// Do dispatches one logical action and classifies the outcome. A 2xx response
// returns the body; any other status returns the response alongside a
// *tablebase.APIError parsed from the error payload.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)

		defer cancel()
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    httpReq.URL.String(),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := readBody(httpResp)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": resp.StatusCode,
			"bytes":  len(body),
		})
	}

	if resp.StatusCode >= nethttp.StatusBadRequest {
		return resp, tablebase.ParseResponseError(resp.StatusCode, body)
	}

	return resp, nil
}

func readBody(resp *nethttp.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return body, nil
}

// buildRequest constructs the outbound request: URL, JSON codec, and headers.
func (c *Client) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var rawBody []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		rawBody = encoded
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")

	if rawBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodDelete, Path: path})
}
