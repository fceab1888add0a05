package session

import (
	"errors"

	"github.com/daticahealth/datisession/auth"
)

// ErrEmptyCredentials is returned when a required login or register field is empty.
var ErrEmptyCredentials = errors.New("name, email and password must not be empty")

// Error codes carried by errors returned from a Manager.
const (
	CodeInvalidInput   = "SESSION_INVALID_INPUT"
	CodeLoginFailed    = "SESSION_LOGIN_FAILED"
	CodeRegisterFailed = "SESSION_REGISTER_FAILED"
	CodePersistFailed  = "SESSION_PERSIST_FAILED"
	CodeLogoutFailed   = "SESSION_LOGOUT_FAILED"
	CodeAbandoned      = "SESSION_ABANDONED"
)

// Message returns the human-readable reason for a failed login or register:
// the auth API's own message when the server sent one, otherwise the error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *auth.APIError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return err.Error()
}
