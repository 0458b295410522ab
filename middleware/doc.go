// Package middleware provides http.RoundTripper adapters for the client side of the
// identity exchange: structured request logging, user agent and header injection, and
// session authorization for follow-up requests.
//
// # Composition
//
//   - [Chain] wraps a base transport with middlewares; the first listed runs outermost.
//   - [Logging] logs method, URL, status and latency through log/slog.
//   - [UserAgent] and [Header] set request headers without overriding explicit ones.
//   - [Authorize] sets the Authorization header from a token type and token.
//
// # What this package must NOT do
//
//   - Log request or response bodies (they carry credentials and tokens).
//   - Retry requests; one attempt is one exchange.
package middleware
