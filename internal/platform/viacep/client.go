package viacep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TraceApi/brasil-utils/internal/core/ports"
)

// DefaultBaseURL is the public ViaCEP endpoint. Requests go to <base>/<cep>/json/.
const DefaultBaseURL = "https://viacep.com.br/ws"

// HTTPError captures unexpected status codes and response bodies.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// Retryable reports whether the request is worth repeating.
func (e *HTTPError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// userAgentRoundTripper adds a User-Agent header to every request.
type userAgentRoundTripper struct {
	Wrapped   http.RoundTripper
	UserAgent string
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone request to avoid mutating the original
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", rt.UserAgent)
	return rt.Wrapped.RoundTrip(clone)
}

type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// Client fetches addresses from ViaCEP.
type Client struct {
	baseURL    string
	http       *http.Client
	log        *slog.Logger
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	sleepFunc  func(d time.Duration)
}

var _ ports.AddressLookup = (*Client)(nil)

// NewClient wraps base (or a fresh http.Client when nil) with the configured
// timeout and User-Agent.
func NewClient(cfg Config, base *http.Client, log *slog.Logger) *Client {
	if base == nil {
		base = &http.Client{}
	}
	if base.Transport == nil {
		base.Transport = http.DefaultTransport
	}
	if cfg.UserAgent != "" {
		base.Transport = &userAgentRoundTripper{
			Wrapped:   base.Transport,
			UserAgent: cfg.UserAgent,
		}
	}
	if cfg.Timeout > 0 {
		base.Timeout = cfg.Timeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       base,
		log:        log,
		maxRetries: cfg.MaxRetries,
		baseDelay:  500 * time.Millisecond,
		maxDelay:   8 * time.Second,
		sleepFunc:  time.Sleep,
	}
}

// FetchAddress GETs the address document for an 8-digit CEP and returns the
// body as received. A 200 with an empty body is returned as is; deciding
// what counts as "no result" is the caller's job.
func (c *Client) FetchAddress(ctx context.Context, cep string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s/json/", c.baseURL, url.PathEscape(cep))

	var (
		body  []byte
		err   error
		delay = c.baseDelay
	)
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, err = c.get(ctx, endpoint)
		if err == nil {
			return body, nil
		}

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || !httpErr.Retryable() || attempt == c.maxRetries {
			break
		}

		c.log.Debug("retrying address lookup", "cep", cep, "attempt", attempt, "status", httpErr.StatusCode)

		// apply jitter
		jitter := time.Duration(rand.Int64N(int64(delay)))
		c.sleepFunc(delay + jitter)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
	return nil, err
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}

// SetSleepForTest replaces the backoff sleep.
func (c *Client) SetSleepForTest(sleep func(d time.Duration)) {
	c.sleepFunc = sleep
}
