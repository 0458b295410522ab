package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrEthical07/goAuthClient/role"
)

const (
	// ContentType is the media type of request and response bodies.
	ContentType = "application/json; charset=utf-8"

	// KindUsernameError marks a server error attached to the username input.
	KindUsernameError = "USERNAME_ERROR"
	// KindPasswordError marks a server error attached to the password input.
	KindPasswordError = "PASSWORD_ERROR"
)

var (
	// ErrMalformedSuccess is the cause of a TransportFailure decoded from a 201 response
	// whose body does not match the success shape.
	ErrMalformedSuccess = errors.New("malformed success body")
)

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type successPayload struct {
	Token *string   `json:"token"`
	Roles *[]string `json:"roles"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Encode serializes credentials to the request payload.
func Encode(c Credentials) ([]byte, error) {
	return json.Marshal(credentialsPayload{Username: c.Username, Password: c.Password})
}

// EncodeSuccess builds a 201 response body. Stub endpoints and tests use it.
func EncodeSuccess(token string, roles []string) []byte {
	if roles == nil {
		roles = []string{}
	}
	data, _ := json.Marshal(struct {
		Token string   `json:"token"`
		Roles []string `json:"roles"`
	}{Token: token, Roles: roles})
	return data
}

// EncodeError builds an error response body.
func EncodeError(kind, message string) []byte {
	data, _ := json.Marshal(errorPayload{Error: kind, Message: message})
	return data
}

// Decode maps a response to exactly one Outcome. It never panics and never returns nil.
func Decode(status int, body []byte) Outcome {
	if status == http.StatusCreated {
		return decodeSuccess(body)
	}
	return decodeError(body)
}

func decodeSuccess(body []byte) Outcome {
	var p successPayload
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Failure(fmt.Errorf("%w: %v", ErrMalformedSuccess, err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return Failure(fmt.Errorf("%w: trailing data", ErrMalformedSuccess))
	}
	if p.Token == nil || p.Roles == nil {
		return Failure(fmt.Errorf("%w: missing token or roles", ErrMalformedSuccess))
	}

	roles, dropped := role.ParseSet(*p.Roles)
	return Success{Token: *p.Token, Roles: roles, Dropped: dropped}
}

func decodeError(body []byte) Outcome {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return GenericError{}
	}

	switch p.Error {
	case KindUsernameError:
		return FieldError{Field: UsernameField, Message: p.Message}
	case KindPasswordError:
		return FieldError{Field: PasswordField, Message: p.Message}
	default:
		return GenericError{Kind: p.Error, Message: p.Message}
	}
}
