package goAuthClient

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/middleware"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/transport"
)

// Builder assembles a Client. A Builder is single-use.
type Builder struct {
	config Config

	exchanger  transport.Exchanger
	httpClient *http.Client
	store      session.Store
	logger     *slog.Logger
	auditSink  AuditSink
	inspector  TokenInspector

	built bool
}

// New returns a builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithExchanger sets the exchange capability. When unset, Build creates an
// *transport.HTTPExchanger from the configuration.
func (b *Builder) WithExchanger(ex transport.Exchanger) *Builder {
	b.exchanger = ex
	return b
}

// WithHTTPClient sets the HTTP client of the default exchanger. Its transport is wrapped
// with request logging and the configured user agent.
func (b *Builder) WithHTTPClient(h *http.Client) *Builder {
	b.httpClient = h
	return b
}

// WithSessionStore sets the store sessions are persisted to. It is required.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit sink and enables audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithTokenInspector sets how issued tokens are inspected for expiry. The default reads
// JWT claims without verifying signatures.
func (b *Builder) WithTokenInspector(in TokenInspector) *Builder {
	b.inspector = in
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, opens the session store when it implements
// session.Opener, and returns the Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil {
		return nil, ErrNilStore
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	exchanger := b.exchanger
	if exchanger == nil {
		exchanger = newDefaultExchanger(cfg.Exchange, b.httpClient, logger)
	}

	if opener, ok := b.store.(session.Opener); ok {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Session.PersistTimeout)
		err := opener.Open(ctx)
		cancel()
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		config:       cfg,
		exchanger:    exchanger,
		store:        b.store,
		materializer: NewMaterializer(b.store, b.inspector, cfg.Session),
		router:       NewRouter(cfg.Messages),
		logger:       logger,
		metrics:      NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		submitters: make(map[*Submitter]struct{}),
	}

	b.built = true

	return c, nil
}

func newDefaultExchanger(cfg ExchangeConfig, h *http.Client, logger *slog.Logger) *transport.HTTPExchanger {
	var base http.RoundTripper
	if h != nil {
		base = h.Transport
	}

	client := &http.Client{
		Transport: middleware.Chain(base,
			middleware.Logging(logger),
			middleware.UserAgent(cfg.UserAgent),
		),
	}
	if h != nil {
		client.Jar = h.Jar
		client.CheckRedirect = h.CheckRedirect
		client.Timeout = h.Timeout
	}

	return transport.NewHTTPExchanger(
		transport.WithHTTPClient(client),
		transport.WithMaxResponseBytes(cfg.MaxResponseBytes),
	)
}
