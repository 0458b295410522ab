package session

import (
	"errors"
	"time"

	"github.com/MrEthical07/goAuthClient/role"
)

// DefaultTokenType is the authorization scheme of tokens issued by the identity endpoint.
const DefaultTokenType = "Bearer"

// MaxAccountIDLen is the longest account ID, in bytes, a session can be stored under.
const MaxAccountIDLen = 255

const (
	maxTokenTypeLen = 255
	maxTokenLen     = 1<<16 - 1
)

// ErrInvalidSession is returned when a session cannot be stored as given.
var ErrInvalidSession = errors.New("invalid session")

// Session is the local result of a successful exchange, keyed by AccountID.
type Session struct {
	AccountID string
	Token     string
	TokenType string
	Roles     role.Set

	CreatedAt time.Time
	// ExpiresAt is zero when the token carries no known expiry.
	ExpiresAt time.Time
}

// Clone returns a copy of s that shares no state with it.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Validate checks the invariants every store relies on.
func (s *Session) Validate() error {
	switch {
	case s == nil:
		return errors.Join(ErrInvalidSession, errors.New("nil session"))
	case s.AccountID == "":
		return errors.Join(ErrInvalidSession, errors.New("empty account id"))
	case len(s.AccountID) > MaxAccountIDLen:
		return errors.Join(ErrInvalidSession, errors.New("account id too long"))
	case s.Token == "":
		return errors.Join(ErrInvalidSession, errors.New("empty token"))
	case len(s.Token) > maxTokenLen:
		return errors.Join(ErrInvalidSession, errors.New("token too long"))
	case len(s.TokenType) > maxTokenTypeLen:
		return errors.Join(ErrInvalidSession, errors.New("token type too long"))
	}
	return nil
}

// Expired reports whether s has a known expiry at or before now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TTL returns the remaining lifetime of s at now. It returns 0 when s never expires and a
// negative duration when s already expired.
func (s *Session) TTL(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	ttl := s.ExpiresAt.Sub(now)
	if ttl == 0 {
		return -1
	}
	return ttl
}
