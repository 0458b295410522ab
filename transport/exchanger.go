package transport

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
)

// DefaultMaxResponseBytes bounds response bodies read by HTTPExchanger.
const DefaultMaxResponseBytes = 1 << 20

var (
	// ErrResponseTooLarge is returned when a response body exceeds the configured limit.
	ErrResponseTooLarge = errors.New("response body too large")
	// ErrInvalidURL is returned for request URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid request url")
)

// Request is one credential submission.
type Request struct {
	URL         string
	ContentType string
	Body        []byte
}

// Response is the complete reply of the endpoint.
type Response struct {
	Status int
	Body   []byte
}

// Exchanger sends a request and returns the endpoint's reply. A non-nil error means no
// complete response was obtained (connection failure, cancellation, unreadable body).
// Exchange must honour ctx.
type Exchanger interface {
	Exchange(ctx context.Context, req Request) (Response, error)
}

// ExchangerFunc adapts a function to Exchanger.
type ExchangerFunc func(ctx context.Context, req Request) (Response, error)

func (f ExchangerFunc) Exchange(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// HTTPExchanger POSTs requests with an *http.Client.
type HTTPExchanger struct {
	client   *http.Client
	maxBytes int64
	headers  http.Header
}

// Option customises an HTTPExchanger.
type Option func(*HTTPExchanger)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(e *HTTPExchanger) {
		if h != nil {
			e.client = h
		}
	}
}

// WithMaxResponseBytes bounds response bodies. Values <= 0 keep the default.
func WithMaxResponseBytes(n int64) Option {
	return func(e *HTTPExchanger) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(e *HTTPExchanger) {
		e.headers.Add(key, value)
	}
}

// NewHTTPExchanger returns an exchanger. The default client has no timeout of its own;
// attempts are bounded by their context.
func NewHTTPExchanger(opts ...Option) *HTTPExchanger {
	e := &HTTPExchanger{
		client:   &http.Client{Transport: http.DefaultTransport},
		maxBytes: DefaultMaxResponseBytes,
		headers:  make(http.Header),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *HTTPExchanger) Exchange(ctx context.Context, req Request) (Response, error) {
	if err := validateURL(req.URL); err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range e.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > e.maxBytes {
		return Response{}, fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, e.maxBytes)
	}

	return Response{Status: resp.StatusCode, Body: body}, nil
}

// CloseIdleConnections releases idle connections of the underlying client.
func (e *HTTPExchanger) CloseIdleConnections() {
	e.client.CloseIdleConnections()
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// JoinURL joins a base URL and an endpoint path with exactly one slash between them.
func JoinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

// IsTimeout reports whether err came from a deadline rather than a refused or broken
// connection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// Since returns a latency suitable for metrics, never negative.
func Since(start time.Time) time.Duration {
	d := time.Since(start)
	if d < 0 {
		return 0
	}
	return d
}
