package goAuthClient

import (
	"github.com/MrEthical07/goAuthClient/codec"
	"github.com/MrEthical07/goAuthClient/session"
)

// Credentials is the input of one attempt.
type Credentials = codec.Credentials

// Field names a credential input.
type Field = codec.Field

const (
	UsernameField = codec.UsernameField
	PasswordField = codec.PasswordField
)

// Operation selects the endpoint an attempt is sent to.
type Operation uint8

const (
	// OperationLogin exchanges credentials of an existing account.
	OperationLogin Operation = iota + 1
	// OperationSignup creates an account and returns its session.
	OperationSignup
)

func (o Operation) String() string {
	switch o {
	case OperationLogin:
		return "login"
	case OperationSignup:
		return "signup"
	default:
		return "unknown"
	}
}

func (o Operation) valid() bool {
	return o == OperationLogin || o == OperationSignup
}

// SubmissionState is the single-flight state of a submitter.
type SubmissionState uint8

const (
	StateIdle SubmissionState = iota
	StateInFlight
)

func (s SubmissionState) String() string {
	if s == StateInFlight {
		return "in_flight"
	}
	return "idle"
}

// AttemptResult reports what Attempt did synchronously.
type AttemptResult uint8

const (
	// AttemptStarted means an exchange is now in flight.
	AttemptStarted AttemptResult = iota + 1
	// AttemptIgnored means an exchange was already in flight; nothing happened.
	AttemptIgnored
	// AttemptRejected means local validation failed; field errors were signalled.
	AttemptRejected
	// AttemptClosed means the submitter no longer accepts attempts.
	AttemptClosed
)

func (r AttemptResult) String() string {
	switch r {
	case AttemptStarted:
		return "started"
	case AttemptIgnored:
		return "ignored"
	case AttemptRejected:
		return "rejected"
	case AttemptClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SignalKind enumerates lifecycle signals delivered to a Listener.
type SignalKind uint8

const (
	// SignalSubmissionStarted precedes the network call of an attempt.
	SignalSubmissionStarted SignalKind = iota + 1
	// SignalSubmissionEnded follows every started attempt, cancelled ones included.
	SignalSubmissionEnded
	// SignalFieldError attaches Message to Field. Focus marks the input to focus.
	SignalFieldError
	// SignalGenericNotification carries a message not tied to an input.
	SignalGenericNotification
	// SignalSessionReady carries the persisted session.
	SignalSessionReady
)

func (k SignalKind) String() string {
	switch k {
	case SignalSubmissionStarted:
		return "submission_started"
	case SignalSubmissionEnded:
		return "submission_ended"
	case SignalFieldError:
		return "field_error"
	case SignalGenericNotification:
		return "generic_notification"
	case SignalSessionReady:
		return "session_ready"
	default:
		return "unknown"
	}
}

// Signal is one event of an attempt. Field, Message and Focus are set for field errors;
// Message for notifications; Session for SignalSessionReady.
type Signal struct {
	Kind      SignalKind
	AttemptID string
	Field     Field
	Message   string
	Focus     bool
	Session   *session.Session
}

// Listener receives the signals of one submitter, one at a time and in emission order.
// OnSignal may call back into the submitter.
type Listener interface {
	OnSignal(Signal)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Signal)

func (f ListenerFunc) OnSignal(s Signal) {
	f(s)
}
