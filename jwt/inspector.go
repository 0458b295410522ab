package jwt

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotJWT is returned when a token does not have the three-segment JWT shape.
	ErrNotJWT = errors.New("token is not a jwt")
	// ErrTokenRejected is returned when a verified token fails signature or claim checks.
	ErrTokenRejected = errors.New("token rejected")
)

// SigningMethod selects how verified tokens are checked.
type SigningMethod string

const (
	// MethodNone disables verification; claims are read without checking the signature.
	MethodNone SigningMethod = ""
	// MethodEd25519 verifies EdDSA signatures with a public key.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 verifies HMAC-SHA256 signatures with a shared secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config controls token inspection.
type Config struct {
	SigningMethod SigningMethod
	// VerifyKey is an Ed25519 public key (raw 32 bytes or PEM) or an HS256 secret.
	VerifyKey []byte
	Leeway    time.Duration
}

// Claims is the subset of registered claims the client cares about.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Verified  bool
}

// HasExpiry reports whether the token carried an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// Inspector reads claims from bearer tokens.
type Inspector struct {
	config    Config
	verifyKey any
}

// NewInspector validates cfg and returns an Inspector.
func NewInspector(cfg Config) (*Inspector, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	in := &Inspector{config: cfg}
	switch cfg.SigningMethod {
	case MethodNone:
	case MethodHS256:
		if len(cfg.VerifyKey) == 0 {
			return nil, errors.New("hs256 requires verify key")
		}
		in.verifyKey = cfg.VerifyKey
	case MethodEd25519:
		key, err := parseEdPublicKey(cfg.VerifyKey)
		if err != nil {
			return nil, err
		}
		in.verifyKey = key
	default:
		return nil, errors.New("unsupported signing method")
	}
	return in, nil
}

// Inspect returns the registered claims of token. Tokens that are not JWTs yield
// ErrNotJWT; callers treat them as opaque.
func (in *Inspector) Inspect(token string) (Claims, error) {
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrNotJWT
	}
	if in == nil || in.config.SigningMethod == MethodNone {
		return inspectUnverified(token)
	}
	return in.inspectVerified(token)
}

// Inspect reads claims without verifying the signature.
func Inspect(token string) (Claims, error) {
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrNotJWT
	}
	return inspectUnverified(token)
}

func inspectUnverified(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}
	return claimsFrom(rc, false), nil
}

func (in *Inspector) inspectVerified(token string) (Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{in.method().Alg()}),
	}
	if in.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(in.config.Leeway))
	}

	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &rc, func(*jwt.Token) (any, error) {
		return in.verifyKey, nil
	}, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}
	return claimsFrom(rc, true), nil
}

func (in *Inspector) method() jwt.SigningMethod {
	if in.config.SigningMethod == MethodHS256 {
		return jwt.SigningMethodHS256
	}
	return jwt.SigningMethodEdDSA
}

func claimsFrom(rc jwt.RegisteredClaims, verified bool) Claims {
	c := Claims{
		Subject:  rc.Subject,
		Issuer:   rc.Issuer,
		Verified: verified,
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c
}

func parseEdPublicKey(raw []byte) (ed25519.PublicKey, error) {
	if len(raw) == ed25519.PublicKeySize {
		return ed25519.PublicKey(raw), nil
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("ed25519 verify key must be 32 raw bytes or PEM")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse ed25519 verify key: %w", err)
	}
	key, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("verify key is not ed25519")
	}
	return key, nil
}
