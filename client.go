package goAuthClient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/middleware"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/transport"
)

// Client owns the shared collaborators of all submitters: configuration, exchanger,
// session store, logger, metrics and audit dispatcher. It is safe for concurrent use.
// Create one with Builder.Build.
type Client struct {
	config       Config
	exchanger    transport.Exchanger
	store        session.Store
	materializer *Materializer
	router       Router
	logger       *slog.Logger
	metrics      *Metrics
	audit        *audit.Dispatcher

	mu         sync.Mutex
	closed     bool
	submitters map[*Submitter]struct{}
}

// NewSubmitter returns a submitter for op that reports to listener.
func (c *Client) NewSubmitter(op Operation, listener Listener) (*Submitter, error) {
	if !op.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, op)
	}
	if listener == nil {
		return nil, ErrNilListener
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrSubmitterClosed
	}
	s := newSubmitter(c, op, listener)
	c.submitters[s] = struct{}{}
	return s, nil
}

func (c *Client) forget(s *Submitter) {
	c.mu.Lock()
	delete(c.submitters, s)
	c.mu.Unlock()
}

func (c *Client) endpointURL(op Operation) string {
	path := c.config.Endpoint.LoginPath
	if op == OperationSignup {
		path = c.config.Endpoint.SignupPath
	}
	return transport.JoinURL(c.config.Endpoint.BaseURL, path)
}

// Config returns a copy of the configuration the client was built with.
func (c *Client) Config() Config {
	return cloneConfig(c.config)
}

// Session returns the stored session of accountID. A missing or expired session yields
// session.ErrNotFound.
func (c *Client) Session(ctx context.Context, accountID string) (*session.Session, error) {
	if accountID == "" {
		return nil, ErrEmptyAccountID
	}
	return c.store.Load(ctx, accountID)
}

// Logout removes the stored session of accountID. Removing a missing session succeeds.
func (c *Client) Logout(ctx context.Context, accountID string) error {
	if accountID == "" {
		return ErrEmptyAccountID
	}
	if err := c.store.Remove(ctx, accountID); err != nil {
		c.logger.Error("session remove failed",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.metrics.Inc(MetricSessionRemoved)
	c.logger.Info("session removed", slog.String("account_id", accountID))
	c.emitAudit(ctx, AuditEvent{
		EventType: AuditSessionRemoved,
		AccountID: accountID,
		Success:   true,
	})
	return nil
}

type accountLister interface {
	Accounts(ctx context.Context) ([]string, error)
}

// ErrAccountsUnsupported is returned by Accounts when the store cannot list accounts.
var ErrAccountsUnsupported = errors.New("session store cannot list accounts")

// Accounts lists account IDs with a live session when the store supports listing.
func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	l, ok := c.store.(accountLister)
	if !ok {
		return nil, ErrAccountsUnsupported
	}
	return l.Accounts(ctx)
}

// AuthorizedTransport returns base (or http.DefaultTransport) wrapped to send the stored
// session of accountID as the Authorization header.
func (c *Client) AuthorizedTransport(ctx context.Context, accountID string, base http.RoundTripper) (http.RoundTripper, error) {
	sess, err := c.Session(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(base, middleware.Authorize(sess.TokenType, sess.Token)), nil
}

// MetricsSnapshot returns a copy of the client's counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// Close closes every submitter, flushes the audit dispatcher and closes the store when it
// implements io.Closer. Further NewSubmitter calls fail.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := make([]*Submitter, 0, len(c.submitters))
	for s := range c.submitters {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
	c.audit.Close()

	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
