package session

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no live session exists for an account.
	ErrNotFound = errors.New("session not found")
	// ErrStoreUnavailable wraps backend failures (network, disk, database).
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrCorrupt is returned when a stored record cannot be decoded.
	ErrCorrupt = errors.New("session record corrupt")
)

// Store persists sessions durably and makes them queryable by account ID.
//
// Persist replaces any existing session for the same account. Remove is idempotent.
// Implementations must be safe for concurrent use.
type Store interface {
	Persist(ctx context.Context, s *Session) error
	Load(ctx context.Context, accountID string) (*Session, error)
	Remove(ctx context.Context, accountID string) error
}

// Opener is implemented by stores that must be prepared before first use.
type Opener interface {
	Open(ctx context.Context) error
}
