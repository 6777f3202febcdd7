package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Client-detected errors that never reach the network
var (
	ErrValidation = errors.New("validation failed")
	ErrNotOwner   = errors.New("viewer is not the listing seller")
)

// Session / remote errors
var (
	ErrUnauthorized = errors.New("not authorized")
	ErrNotFound     = errors.New("resource not found")
	ErrRemote       = errors.New("remote service error")
	ErrBadResponse  = errors.New("malformed response")
)

// ValidationError is a client-detected input problem with a message
// meant for direct display next to the offending control.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// RemoteError carries the HTTP status and the human-readable message
// extracted from the remote error envelope.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote: %s (status %d)", e.Message, e.Status)
}

// Unwrap maps the status onto the sentinel taxonomy so callers can
// branch with errors.Is without inspecting status codes.
func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRemote
	}
}

// UserMessage returns the text shown to the user for any error in the
// taxonomy. Validation and remote errors surface their own message;
// anything unexpected collapses to a generic one.
func UserMessage(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Msg
	}
	if errors.Is(err, ErrNotOwner) {
		return "Only the seller can change this listing."
	}
	if errors.Is(err, ErrUnauthorized) {
		return "You must be logged in to do that."
	}
	return "Something went wrong. Please try again."
}
