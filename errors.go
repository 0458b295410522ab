package goAuthClient

import "errors"

var (
	// ErrSubmitterClosed is returned when work is requested from a closed submitter or client.
	ErrSubmitterClosed = errors.New("submitter closed")
	// ErrAttemptCancelled is the cancellation cause of an attempt stopped by Cancel or Close.
	ErrAttemptCancelled = errors.New("attempt cancelled")
	// ErrExchangeTimeout is the cause of a transport failure produced by the exchange timeout.
	ErrExchangeTimeout = errors.New("exchange timed out")
	// ErrSessionPersistFailed wraps store errors raised while materializing a session.
	ErrSessionPersistFailed = errors.New("session persist failed")
	// ErrNilExchanger is returned by Build when no exchanger could be configured.
	ErrNilExchanger = errors.New("nil exchanger")
	// ErrNilStore is returned by Build when no session store is configured.
	ErrNilStore = errors.New("nil session store")
	// ErrNilListener is returned by NewSubmitter for a nil listener.
	ErrNilListener = errors.New("nil listener")
	// ErrUnknownOperation is returned for operations other than login and signup.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrBuilderUsed is returned by a second call to Build.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrEmptyAccountID is returned by session queries without an account ID.
	ErrEmptyAccountID = errors.New("empty account id")
)

// ErrTokenRejected is returned by Materialize when a configured verifying inspector
// rejects the issued token.
var ErrTokenRejected = errors.New("issued token rejected")
