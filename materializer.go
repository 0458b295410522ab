package goAuthClient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goAuthClient/codec"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/session"
)

// TokenInspector reads claims from issued tokens. *jwt.Inspector implements it.
type TokenInspector interface {
	Inspect(token string) (jwt.Claims, error)
}

// Materializer turns a successful exchange into a stored session.
type Materializer struct {
	store     session.Store
	inspector TokenInspector
	cfg       SessionConfig
	now       func() time.Time
}

// NewMaterializer returns a materializer writing to store. A nil inspector reads JWT
// claims without verification.
func NewMaterializer(store session.Store, inspector TokenInspector, cfg SessionConfig) *Materializer {
	if inspector == nil {
		inspector = (*jwt.Inspector)(nil)
	}
	return &Materializer{
		store:     store,
		inspector: inspector,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Materialize builds the session of creds.Username from s and persists it exactly once.
// Store failures are wrapped in ErrSessionPersistFailed. The returned session is not
// retained by the materializer.
func (m *Materializer) Materialize(ctx context.Context, s codec.Success, creds Credentials) (*session.Session, error) {
	now := m.now()

	sess := &session.Session{
		AccountID: creds.Username,
		Token:     s.Token,
		TokenType: m.cfg.TokenType,
		Roles:     s.Roles,
		CreatedAt: now,
	}
	if sess.TokenType == "" {
		sess.TokenType = session.DefaultTokenType
	}

	expiresAt, err := m.expiry(s.Token, now)
	if err != nil {
		return nil, err
	}
	sess.ExpiresAt = expiresAt

	if err := m.store.Persist(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionPersistFailed, err)
	}
	return sess, nil
}

// expiry prefers the token's exp claim. Only a verifying inspector can refuse a token;
// an unverified exp that is not in the future is treated as clock skew and replaced by
// the configured default.
func (m *Materializer) expiry(token string, now time.Time) (time.Time, error) {
	claims, err := m.inspector.Inspect(token)
	if err != nil && !errors.Is(err, jwt.ErrNotJWT) {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}
	if err == nil && claims.ExpiresAt.After(now) {
		return claims.ExpiresAt, nil
	}

	if m.cfg.DefaultTTL > 0 {
		return now.Add(m.cfg.DefaultTTL), nil
	}
	return time.Time{}, nil
}
