// Package status reads the health report served by the reader's web
// server while File Transfer is open.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/muurk/crosspoint/internal/version"
)

const (
	// DefaultPort is the reader's web server port
	DefaultPort = 80

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	statusPath = "/status"
)

// Status is the JSON document returned by GET /status.
type Status struct {
	Version  string `json:"version"`
	IP       string `json:"ip"`
	RSSI     int    `json:"rssi"`
	FreeHeap int64  `json:"freeHeap"`
	Uptime   int64  `json:"uptime"`
}

// UptimeDuration returns the uptime as a duration.
func (s *Status) UptimeDuration() time.Duration {
	return time.Duration(s.Uptime) * time.Second
}

// SignalQuality maps RSSI to a coarse label.
func (s *Status) SignalQuality() string {
	switch {
	case s.RSSI == 0:
		return "unknown"
	case s.RSSI >= -55:
		return "excellent"
	case s.RSSI >= -67:
		return "good"
	case s.RSSI >= -80:
		return "fair"
	default:
		return "poor"
	}
}

// Client represents an HTTP client for the reader's status endpoint
type Client struct {
	// BaseURL is the base URL for the reader (e.g., "http://192.168.4.1:80")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a status client for host:port
func NewClient(host string, port int) *Client {
	return NewClientWithURL("http://" + net.JoinHostPort(host, strconv.Itoa(port)))
}

// NewClientWithURL creates a new client with a full base URL
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:               baseURL,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Get retrieves the reader status, retrying network failures with
// exponential backoff.
func (c *Client) Get(ctx context.Context) (*Status, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(currentDelay):
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		st, err := c.getAttempt(ctx)
		if err == nil {
			return st, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) getAttempt(ctx context.Context) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+statusPath, nil)
	if err != nil {
		return nil, &Error{Message: "failed to create request", Err: err}
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Message: "reader unreachable", Err: err, Retryable: ctx.Err() == nil}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Message:    fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "failed to read response body", Err: err, Retryable: true}
	}

	var st Status
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, &Error{Message: "failed to parse status response", Err: err}
	}
	return &st, nil
}

// Error is returned by Client.Get.
type Error struct {
	Message    string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("status: %s: %v", e.Message, e.Err)
	}
	return "status: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
