package goAuthClient

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, DefaultMinPasswordLength, cfg.Validation.MinPasswordLength)
	assert.Equal(t, "Bearer", cfg.Session.TokenType)
	assert.Equal(t, "An Error happened, please try again later", cfg.Messages.ServerError)
	assert.Equal(t, "The server is not responding, please try again later", cfg.Messages.ServerUnreachable)
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Endpoint.BaseURL = " " }},
		{"non http scheme", func(c *Config) { c.Endpoint.BaseURL = "ftp://example.com" }},
		{"missing host", func(c *Config) { c.Endpoint.BaseURL = "http://" }},
		{"empty login path", func(c *Config) { c.Endpoint.LoginPath = "" }},
		{"empty signup path", func(c *Config) { c.Endpoint.SignupPath = "" }},
		{"zero timeout", func(c *Config) { c.Exchange.Timeout = 0 }},
		{"zero response limit", func(c *Config) { c.Exchange.MaxResponseBytes = 0 }},
		{"negative min length", func(c *Config) { c.Validation.MinPasswordLength = -1 }},
		{"negative ttl", func(c *Config) { c.Session.DefaultTTL = -time.Second }},
		{"zero persist timeout", func(c *Config) { c.Session.PersistTimeout = 0 }},
		{"empty token type", func(c *Config) { c.Session.TokenType = "" }},
		{"empty server message", func(c *Config) { c.Messages.ServerError = "" }},
		{"empty required message", func(c *Config) { c.Messages.FieldRequired = "" }},
		{"empty username too long message", func(c *Config) { c.Messages.UsernameTooLong = "" }},
		{"audit without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
		{"histograms without metrics", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.EnableLatencyHistograms = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
endpoint:
  base_url: https://id.example.com
  login_path: /v1/login
exchange:
  timeout: 5s
validation:
  require_password: true
session:
  default_ttl: 1h
messages:
  server_error: Something broke
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://id.example.com", cfg.Endpoint.BaseURL)
	assert.Equal(t, "/v1/login", cfg.Endpoint.LoginPath)
	assert.Equal(t, "/signup", cfg.Endpoint.SignupPath)
	assert.Equal(t, 5*time.Second, cfg.Exchange.Timeout)
	assert.True(t, cfg.Validation.RequirePassword)
	assert.Equal(t, 6, cfg.Validation.MinPasswordLength)
	assert.Equal(t, time.Hour, cfg.Session.DefaultTTL)
	assert.Equal(t, "Something broke", cfg.Messages.ServerError)
	assert.Equal(t, DefaultConfig().Messages.ServerUnreachable, cfg.Messages.ServerUnreachable)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(writeConfigFile(t, "endpoint:\n  base_uri: http://x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func envLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	err := ApplyEnv(&cfg, envLookup(map[string]string{
		"GOAUTHCLIENT_BASE_URL":            "https://auth.internal",
		"GOAUTHCLIENT_TIMEOUT":             "2s",
		"GOAUTHCLIENT_MIN_PASSWORD_LENGTH": "10",
		"GOAUTHCLIENT_REQUIRE_PASSWORD":    "true",
		"GOAUTHCLIENT_SESSION_DEFAULT_TTL": "15m",
		"GOAUTHCLIENT_METRICS_ENABLED":     "1",
		"GOAUTHCLIENT_MAX_RESPONSE_BYTES":  "4096",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://auth.internal", cfg.Endpoint.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, 10, cfg.Validation.MinPasswordLength)
	assert.True(t, cfg.Validation.RequirePassword)
	assert.Equal(t, 15*time.Minute, cfg.Session.DefaultTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, int64(4096), cfg.Exchange.MaxResponseBytes)
	assert.Equal(t, "/login", cfg.Endpoint.LoginPath)
}

func TestApplyEnvReportsEveryMalformedValue(t *testing.T) {
	cfg := DefaultConfig()
	err := ApplyEnv(&cfg, envLookup(map[string]string{
		"GOAUTHCLIENT_TIMEOUT":            "soon",
		"GOAUTHCLIENT_AUDIT_ENABLED":      "maybe",
		"GOAUTHCLIENT_MAX_RESPONSE_BYTES": "lots",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOAUTHCLIENT_TIMEOUT")
	assert.Contains(t, err.Error(), "GOAUTHCLIENT_AUDIT_ENABLED")
	assert.Contains(t, err.Error(), "GOAUTHCLIENT_MAX_RESPONSE_BYTES")

	assert.Equal(t, DefaultConfig().Exchange.Timeout, cfg.Exchange.Timeout)
	assert.False(t, cfg.Audit.Enabled)
}
