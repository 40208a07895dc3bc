// Package recruitapi is the HTTP client for the recruiting backend that owns
// jobs and analyzed CVs.
package recruitapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/recrai/pkg/logger"
	"github.com/okian/recrai/pkg/metrics"
)

const (
	contentType    = "application/json"
	userAgent      = "recrai-matcher"
	defaultTimeout = 15 * time.Second
	defaultBackoff = 200 * time.Millisecond
	maxErrorBody   = 64 << 10
)

// Client talks to the recruiting backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	prefix     string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// New creates a client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidInput, baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		http:       &http.Client{Timeout: defaultTimeout},
		maxRetries: 2,
		backoff:    defaultBackoff,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.prefix != "" {
		c.prefix = "/" + strings.Trim(c.prefix, "/")
	}
	return c, nil
}

// BaseURL returns the backend root with the prefix applied.
func (c *Client) BaseURL() string {
	return c.baseURL + c.prefix
}

// payload builds a fresh request body for every attempt.
type payload func() (io.Reader, string, error)

func jsonPayload(v any) payload {
	return func() (io.Reader, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("%w: encode body: %w", ErrInvalidInput, err)
		}
		return bytes.NewReader(b), contentType, nil
	}
}

// do sends the request and decodes a 2xx body into out when out is non-nil.
// Retryable failures of idempotent methods are retried with exponential
// backoff; a POST is sent once since the backend may have stored it already.
func (c *Client) do(ctx context.Context, method, path string, body payload, out any) error {
	retries := c.maxRetries
	if !idempotent(method) {
		retries = 0
	}
	var err error
	for attempt := 0; ; attempt++ {
		err = c.attempt(ctx, method, path, body, out)
		if err == nil || !IsRetryable(err) || attempt >= retries {
			return err
		}
		metrics.RecordUpstreamRetry()
		delay := c.backoff << attempt
		c.log.Warn(ctx, "retrying backend request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("attempt", attempt+1),
			logger.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (c *Client) attempt(ctx context.Context, method, path string, body payload, out any) error {
	start := time.Now()
	endpoint := endpointLabel(path)
	err := c.roundTrip(ctx, method, path, body, out)
	metrics.RecordUpstreamRequest(endpoint, outcome(err), float64(time.Since(start).Nanoseconds())/1e6)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body payload, out any) error {
	var (
		reader io.Reader
		ctype  string
	)
	if body != nil {
		var err error
		if reader, ctype, err = body(); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", userAgent)
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}

	c.log.Debug(ctx, "backend request", logger.String("method", method), logger.String("url", req.URL.String()))
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %w", ErrRetryable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrRetryable, path, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrFatal, path, err)
	}
	return nil
}

// statusError reads the backend error body, preferring detail over error.
func statusError(path string, resp *http.Response) error {
	se := &StatusError{Endpoint: path, Status: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		se.kind = ErrNotFound
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout:
		se.kind = ErrRetryable
	default:
		se.kind = ErrFatal
	}

	var body struct {
		Detail any `json:"detail"`
		Error  any `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &body) == nil {
		se.Message = firstMessage(body.Detail, body.Error)
	}
	if se.Message == "" {
		se.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return se
}

func firstMessage(values ...any) string {
	for _, v := range values {
		switch t := v.(type) {
		case nil:
		case string:
			if t != "" {
				return t
			}
		default:
			b, err := json.Marshal(t)
			if err == nil {
				return string(b)
			}
		}
	}
	return ""
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRetryable):
		return "retryable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "fatal"
	}
}

// endpointLabel keeps metric cardinality bounded: "/cvs/abc" becomes "/cvs/{id}".
func endpointLabel(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[0] + "/{id}"
	}
	return "/" + parts[0]
}
