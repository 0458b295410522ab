package goAuthClient

import (
	"unicode/utf8"

	"github.com/MrEthical07/goAuthClient/session"
)

// DefaultMinPasswordLength is the shortest password, in runes, accepted by default.
const DefaultMinPasswordLength = 6

// FieldIssue is one local validation failure.
type FieldIssue struct {
	Field   Field
	Message string
	Focus   bool
}

// IsUsernameValid reports whether username is non-empty.
func IsUsernameValid(username string) bool {
	return username != ""
}

// IsPasswordValid reports whether password is at least DefaultMinPasswordLength runes
// long. ValidateCredentials only applies it to non-empty passwords.
func IsPasswordValid(password string) bool {
	return passwordLongEnough(password, DefaultMinPasswordLength)
}

func passwordLongEnough(password string, minLength int) bool {
	return utf8.RuneCountInString(password) >= minLength
}

// ValidateCredentials evaluates the password first, then the username. When any issue is
// found exactly one carries Focus: the username issue if present, otherwise the password
// issue. Usernames longer than session.MaxAccountIDLen bytes are refused since no session
// could be stored under them. It performs no I/O.
func ValidateCredentials(c Credentials, cfg ValidationConfig, msgs MessagesConfig) []FieldIssue {
	var issues []FieldIssue

	switch {
	case c.Password == "":
		if cfg.RequirePassword {
			issues = append(issues, FieldIssue{Field: PasswordField, Message: msgs.FieldRequired})
		}
	case !passwordLongEnough(c.Password, cfg.MinPasswordLength):
		issues = append(issues, FieldIssue{Field: PasswordField, Message: msgs.PasswordTooShort})
	}

	switch {
	case !IsUsernameValid(c.Username):
		issues = append(issues, FieldIssue{Field: UsernameField, Message: msgs.FieldRequired})
	case len(c.Username) > session.MaxAccountIDLen:
		issues = append(issues, FieldIssue{Field: UsernameField, Message: msgs.UsernameTooLong})
	}

	if len(issues) > 0 {
		issues[len(issues)-1].Focus = true
	}
	return issues
}
