package codec

import (
	"errors"

	"github.com/MrEthical07/goAuthClient/role"
)

// Field names a credential input that a server or validation error can be attached to.
type Field uint8

const (
	// UsernameField is the username input.
	UsernameField Field = iota + 1
	// PasswordField is the password input.
	PasswordField
)

func (f Field) String() string {
	switch f {
	case UsernameField:
		return "username"
	case PasswordField:
		return "password"
	default:
		return "unknown"
	}
}

// Credentials is the transient input of one exchange.
type Credentials struct {
	Username string
	Password string
}

// Outcome is the decoded result of one exchange. The set of implementations is closed;
// switch on the concrete type.
type Outcome interface {
	outcome()
}

// Success carries the token and the recognized subset of the granted roles.
type Success struct {
	Token string
	Roles role.Set
	// Dropped lists role names the endpoint sent that are not part of the enumeration.
	Dropped []string
}

// FieldError is a server-reported error attributable to one input.
type FieldError struct {
	Field   Field
	Message string
}

// GenericError is a server-reported error that is not attributable to an input,
// including error kinds this client does not recognize.
type GenericError struct {
	Kind    string
	Message string
}

// TransportFailure means no usable server answer was obtained.
type TransportFailure struct {
	Err error
}

func (Success) outcome()          {}
func (FieldError) outcome()       {}
func (GenericError) outcome()     {}
func (TransportFailure) outcome() {}

// Unwrap exposes the underlying cause.
func (t TransportFailure) Unwrap() error {
	return t.Err
}

func (t TransportFailure) Error() string {
	if t.Err == nil {
		return "transport failure"
	}
	return "transport failure: " + t.Err.Error()
}

// Kind returns a stable label for o, used by logs, metrics and audit events.
func Kind(o Outcome) string {
	switch o.(type) {
	case Success:
		return "success"
	case FieldError:
		return "field_error"
	case GenericError:
		return "generic_error"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Failure wraps err as a TransportFailure outcome. A nil err still yields a failure.
func Failure(err error) TransportFailure {
	if err == nil {
		err = errors.New("no response")
	}
	return TransportFailure{Err: err}
}
