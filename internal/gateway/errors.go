package gateway

import (
	"errors"
	"fmt"

	"github.com/ashureev/apsfd-portal/internal/domain"
)

var (
	// ErrTransport wraps any failure to complete the HTTP exchange.
	ErrTransport = errors.New("gateway: transport failure")
	// ErrNoFiles is returned when an upload batch is empty.
	ErrNoFiles = errors.New("gateway: no files to submit")
)

// User-facing authentication messages.
const (
	MsgAuthNetwork     = "Network error. Please check your connection."
	MsgAuthUnavailable = "Could not reach the authentication server."
	MsgAuthRefused     = "Incorrect credentials or access denied."
)

// StatusError reports a non-2xx HTTP response from a webhook.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: %s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// AuthErrorKind separates transport failures from application refusals.
type AuthErrorKind int

const (
	// AuthRefused means the webhook answered success=false.
	AuthRefused AuthErrorKind = iota
	// AuthUnavailable means the webhook answered with a non-2xx status.
	AuthUnavailable
	// AuthNetwork means the request never completed.
	AuthNetwork
)

// AuthError is returned by Authenticate. Message is safe to show to the user.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Outcome maps the error to an audit trail outcome.
func (e *AuthError) Outcome() domain.AuthOutcome {
	switch e.Kind {
	case AuthNetwork:
		return domain.AuthOutcomeNetwork
	case AuthUnavailable:
		return domain.AuthOutcomeUnavailable
	default:
		return domain.AuthOutcomeRefused
	}
}
