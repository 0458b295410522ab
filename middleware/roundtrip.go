package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Middleware wraps a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base with mws. A nil base uses http.DefaultTransport.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			base = mws[i](base)
		}
	}
	return base
}

type attemptIDContextKey struct{}

// WithAttemptID tags ctx so Logging can correlate requests with attempts.
func WithAttemptID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, attemptIDContextKey{}, id)
}

// AttemptIDFromContext returns the attempt ID set by WithAttemptID.
func AttemptIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(attemptIDContextKey{}).(string)
	return id, ok && id != ""
}

// Logging logs one record per request at Debug, or Warn when no response was obtained.
// Query strings are stripped from logged URLs.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		return nil
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			u := *r.URL
			u.RawQuery = ""
			u.User = nil
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("url", u.String()),
				slog.Duration("latency", time.Since(start)),
			}
			if id, ok := AttemptIDFromContext(r.Context()); ok {
				attrs = append(attrs, slog.String("attempt_id", id))
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(r.Context(), slog.LevelWarn, "identity request failed", attrs...)
				return nil, err
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))
			logger.LogAttrs(r.Context(), slog.LevelDebug, "identity request", attrs...)
			return resp, nil
		})
	}
}

// UserAgent sets the User-Agent header unless the request already has one.
func UserAgent(ua string) Middleware {
	return Header("User-Agent", ua)
}

// Header sets key to value unless the request already carries key. Empty values are a
// no-op.
func Header(key, value string) Middleware {
	if key == "" || value == "" {
		return nil
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(key) != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set(key, value)
			return next.RoundTrip(r)
		})
	}
}

// Authorize sets "Authorization: <tokenType> <token>". tokenType defaults to Bearer.
func Authorize(tokenType, token string) Middleware {
	if token == "" {
		return nil
	}
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", tokenType+" "+token)
			return next.RoundTrip(r)
		})
	}
}
