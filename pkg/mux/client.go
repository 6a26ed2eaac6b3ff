// Package mux is a thin client for the Mux Video and Mux Data REST APIs.
package mux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Saoudyahya/tournament-stream-relay/internal/metrics"
)

// StatusUnavailable is returned in place of an HTTP status when no usable
// response was obtained: transport failure, undecodable body, rate limiter
// cancellation or an open circuit breaker.
const StatusUnavailable = -1

const DefaultBaseURL = "https://api.mux.com"

type Options struct {
	BaseURL     string
	TokenID     string
	TokenSecret string
	Timeout     time.Duration

	// RateLimit is the outbound request rate in requests per second. 0 disables it.
	RateLimit float64
	RateBurst int

	DisableBreaker bool

	HTTPClient *http.Client
	Metrics    *metrics.ProviderMetrics
	Logger     zerolog.Logger
}

// Client is safe for concurrent use. It is built once at startup and never
// mutated afterwards.
type Client struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	http        *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[int]
	metrics     *metrics.ProviderMetrics
	logger      zerolog.Logger
}

func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:     base,
		tokenID:     opts.TokenID,
		tokenSecret: opts.TokenSecret,
		http:        httpClient,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
	}

	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	if !opts.DisableBreaker {
		c.breaker = newBreaker("mux-api", c.metrics, c.logger)
	}

	return c
}

// Call performs one authenticated request and decodes a JSON response body
// into out when out is non-nil. It returns the HTTP status, or
// StatusUnavailable together with an error when no usable response exists.
// Non-2xx responses return their real status and an *APIError.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	return c.call(ctx, strings.ToLower(method), method, path, query, body, out)
}

func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) (int, error) {
	start := time.Now()

	var (
		status int
		err    error
	)
	if c.breaker != nil {
		status, err = c.breaker.Execute(func() (int, error) {
			return c.do(ctx, method, path, query, body, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = StatusUnavailable
			err = fmt.Errorf("mux %s %s: %w", method, path, err)
		}
	} else {
		status, err = c.do(ctx, method, path, query, body, out)
	}

	c.metrics.Observe(op, status, time.Since(start))
	return status, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return StatusUnavailable, fmt.Errorf("mux %s %s: rate limit wait: %w", method, path, err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return StatusUnavailable, fmt.Errorf("mux %s %s: encode request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return StatusUnavailable, fmt.Errorf("mux %s %s: build request: %w", method, path, err)
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return StatusUnavailable, fmt.Errorf("mux %s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newAPIError(resp)
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return StatusUnavailable, fmt.Errorf("mux %s %s: decode response: %w", method, path, err)
	}

	return resp.StatusCode, nil
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// fetch performs a call whose response wraps its payload in {"data": ...}.
func fetch[T any](ctx context.Context, c *Client, op, method, path string, query url.Values, body any) (T, error) {
	var env envelope[T]
	if _, err := c.call(ctx, op, method, path, query, body, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}
