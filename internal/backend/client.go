// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the chat message-exchange endpoint.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the chat backend.
const (
	// ChatPath is the endpoint path appended to the base URL.
	ChatPath = "/api/chat"

	// DefaultTimeout is the default timeout for a single request.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// Error variables for common backend errors.
var (
	// ErrNotConfigured indicates no backend URL is set.
	ErrNotConfigured = errors.New("backend URL not configured")

	// ErrEmptyReply indicates the backend answered without any text.
	ErrEmptyReply = errors.New("backend reply has no response text")

	// ErrResponseTooLarge indicates the reply exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response exceeded maximum size")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("backend error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.StatusCode, body)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Request is the JSON body sent to the chat endpoint.
// ThreadID is null until the backend has assigned one.
type Request struct {
	Message  string  `json:"message"`
	ThreadID *string `json:"threadId"`
}

// NewRequest builds a request, encoding an empty thread ID as null.
func NewRequest(message, threadID string) Request {
	req := Request{Message: message}
	if threadID != "" {
		req.ThreadID = &threadID
	}
	return req
}

// Reply is the JSON body returned by the chat endpoint.
type Reply struct {
	Response string `json:"response,omitempty"`
	Message  string `json:"message,omitempty"`
	ThreadID string `json:"threadId,omitempty"`
}

// Text returns the assistant text, preferring Response over Message.
func (r *Reply) Text() string {
	if r.Response != "" {
		return r.Response
	}
	return r.Message
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat endpoint of one backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *log.Logger
	userAgent  string
}

// NewClient creates a client for the backend at baseURL.
//
// If baseURL is empty the client is still created, but Send fails with
// ErrNotConfigured.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
		logger:     log.Default(),
		userAgent:  "chatline",
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.timeout = timeout
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithMaxRetries sets the maximum number of attempts. Values below 1 mean a
// single attempt.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit limits outgoing requests to r per second with the given
// burst. A non-positive r disables limiting.
func (c *Client) WithRateLimit(r float64, burst int) *Client {
	if r <= 0 {
		c.limiter = nil
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	return c
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithLogger sets the logger used for request logging.
func (c *Client) WithLogger(logger *log.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// IsConfigured returns true if the client has a backend URL.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Endpoint returns the full chat endpoint URL.
func (c *Client) Endpoint() string {
	return c.baseURL + ChatPath
}

// =============================================================================
// LOGGING (without message content)
// =============================================================================

func (c *Client) logRequest(req *http.Request, attempt int) {
	c.logger.Printf("API_REQUEST | method=%s path=%s attempt=%d", req.Method, req.URL.Path, attempt+1)
}

func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	c.logger.Printf("API_RESPONSE | status=%d duration=%v", resp.StatusCode, duration.Round(time.Millisecond))
}

// =============================================================================
// SEND
// =============================================================================

// Send posts one user message to the backend and returns its reply.
//
// threadID may be empty for the first message of a conversation. Transient
// failures (5xx, 429 and transport errors) are retried with exponential
// backoff until the retry budget or ctx runs out.
func (c *Client) Send(ctx context.Context, message, threadID string) (*Reply, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(NewRequest(message, threadID))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		reply, err := c.doRequest(ctx, body, attempt)
		if err == nil {
			return reply, nil
		}
		if !isRetryable(ctx, err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs a single POST to the chat endpoint.
func (c *Client) doRequest(ctx context.Context, body []byte, attempt int) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logRequest(req, attempt)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(data),
		}
	}

	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if reply.Text() == "" {
		return nil, ErrEmptyReply
	}
	return &reply, nil
}

// readResponse reads the response body with size limits to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	// Read one byte past the limit so an exact-size body is still accepted.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	// Malformed or empty replies will not improve on retry.
	if errors.Is(err, ErrEmptyReply) || errors.Is(err, ErrResponseTooLarge) {
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}

	// Transport errors (connection refused, reset, client timeout).
	return true
}

// calculateBackoff returns the delay to wait before the next retry.
func calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, etc.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
