package goAuthClient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrEthical07/goAuthClient/session"
)

// EnvPrefix prefixes every environment override read by ApplyEnv.
const EnvPrefix = "GOAUTHCLIENT_"

// Config is the complete client configuration. Obtain defaults with DefaultConfig and
// adjust fields before passing it to Builder.WithConfig.
type Config struct {
	Endpoint   EndpointConfig   `yaml:"endpoint"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Validation ValidationConfig `yaml:"validation"`
	Session    SessionConfig    `yaml:"session"`
	Messages   MessagesConfig   `yaml:"messages"`
	Audit      AuditConfig      `yaml:"audit"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig locates the identity endpoint.
type EndpointConfig struct {
	BaseURL    string `yaml:"base_url"`
	LoginPath  string `yaml:"login_path"`
	SignupPath string `yaml:"signup_path"`
}

/*
====================================
EXCHANGE CONFIG
====================================
*/

// ExchangeConfig bounds a single exchange.
type ExchangeConfig struct {
	// Timeout bounds every exchange. Expiry is reported as a transport failure.
	Timeout          time.Duration `yaml:"timeout"`
	MaxResponseBytes int64         `yaml:"max_response_bytes"`
	UserAgent        string        `yaml:"user_agent"`
}

/*
====================================
VALIDATION CONFIG
====================================
*/

// ValidationConfig controls local credential checks.
type ValidationConfig struct {
	// MinPasswordLength is measured in runes. Non-empty passwords shorter than this are
	// rejected locally.
	MinPasswordLength int `yaml:"min_password_length"`
	// RequirePassword rejects empty passwords. When false, an empty password passes
	// validation and the endpoint decides.
	RequirePassword bool `yaml:"require_password"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls materialized sessions.
type SessionConfig struct {
	// DefaultTTL applies when the token carries no expiry. Zero means no expiry.
	DefaultTTL     time.Duration `yaml:"default_ttl"`
	PersistTimeout time.Duration `yaml:"persist_timeout"`
	TokenType      string        `yaml:"token_type"`
}

/*
====================================
MESSAGES CONFIG
====================================
*/

// MessagesConfig holds user-facing texts.
type MessagesConfig struct {
	FieldRequired     string `yaml:"field_required"`
	PasswordTooShort  string `yaml:"password_too_short"`
	UsernameTooLong   string `yaml:"username_too_long"`
	ServerError       string `yaml:"server_error"`
	ServerUnreachable string `yaml:"server_unreachable"`
	// FieldFallback replaces an empty server message on a field error.
	FieldFallback string `yaml:"field_fallback"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint: EndpointConfig{
			BaseURL:    "http://localhost:8080",
			LoginPath:  "/login",
			SignupPath: "/signup",
		},
		Exchange: ExchangeConfig{
			Timeout:          30 * time.Second,
			MaxResponseBytes: 1 << 20,
			UserAgent:        "goauth-client",
		},
		Validation: ValidationConfig{
			MinPasswordLength: 6,
			RequirePassword:   false,
		},
		Session: SessionConfig{
			DefaultTTL:     0,
			PersistTimeout: 10 * time.Second,
			TokenType:      session.DefaultTokenType,
		},
		Messages: MessagesConfig{
			FieldRequired:     "This field is required",
			PasswordTooShort:  "This password is too short",
			UsernameTooLong:   "This username is too long",
			ServerError:       "An Error happened, please try again later",
			ServerUnreachable: "The server is not responding, please try again later",
			FieldFallback:     "Invalid value",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// Endpoint
	if strings.TrimSpace(c.Endpoint.BaseURL) == "" {
		return errors.New("Endpoint BaseURL must be set")
	}
	u, err := url.Parse(c.Endpoint.BaseURL)
	if err != nil {
		return fmt.Errorf("Endpoint BaseURL invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("Endpoint BaseURL must use http or https")
	}
	if u.Host == "" {
		return errors.New("Endpoint BaseURL must include a host")
	}
	if c.Endpoint.LoginPath == "" {
		return errors.New("Endpoint LoginPath must be set")
	}
	if c.Endpoint.SignupPath == "" {
		return errors.New("Endpoint SignupPath must be set")
	}

	// Exchange
	if c.Exchange.Timeout <= 0 {
		return errors.New("Exchange Timeout must be > 0")
	}
	if c.Exchange.MaxResponseBytes <= 0 {
		return errors.New("Exchange MaxResponseBytes must be > 0")
	}

	// Validation
	if c.Validation.MinPasswordLength < 0 {
		return errors.New("Validation MinPasswordLength must be >= 0")
	}

	// Session
	if c.Session.DefaultTTL < 0 {
		return errors.New("Session DefaultTTL must be >= 0")
	}
	if c.Session.PersistTimeout <= 0 {
		return errors.New("Session PersistTimeout must be > 0")
	}
	if strings.TrimSpace(c.Session.TokenType) == "" {
		return errors.New("Session TokenType must be set")
	}

	// Messages
	if c.Messages.ServerError == "" || c.Messages.ServerUnreachable == "" {
		return errors.New("Messages ServerError and ServerUnreachable must be set")
	}
	if c.Messages.FieldRequired == "" || c.Messages.PasswordTooShort == "" {
		return errors.New("Messages FieldRequired and PasswordTooShort must be set")
	}
	if c.Messages.UsernameTooLong == "" {
		return errors.New("Messages UsernameTooLong must be set")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

/*
====================================
LOADING
====================================
*/

// LoadConfig reads a YAML file on top of DefaultConfig. Keys absent from the file keep
// their defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides cfg from GOAUTHCLIENT_* variables read through lookup (os.LookupEnv
// when nil). Malformed values are reported, not ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("BASE_URL", &cfg.Endpoint.BaseURL)
	str("LOGIN_PATH", &cfg.Endpoint.LoginPath)
	str("SIGNUP_PATH", &cfg.Endpoint.SignupPath)
	dur("TIMEOUT", &cfg.Exchange.Timeout)
	str("USER_AGENT", &cfg.Exchange.UserAgent)
	integer("MIN_PASSWORD_LENGTH", &cfg.Validation.MinPasswordLength)
	boolean("REQUIRE_PASSWORD", &cfg.Validation.RequirePassword)
	dur("SESSION_DEFAULT_TTL", &cfg.Session.DefaultTTL)
	dur("SESSION_PERSIST_TIMEOUT", &cfg.Session.PersistTimeout)
	boolean("AUDIT_ENABLED", &cfg.Audit.Enabled)
	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)

	if v, ok := lookup(EnvPrefix + "MAX_RESPONSE_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_RESPONSE_BYTES: %w", EnvPrefix, err))
		} else {
			cfg.Exchange.MaxResponseBytes = n
		}
	}

	return errors.Join(errs...)
}
