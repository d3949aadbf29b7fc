package service

import (
	"errors"
	"strings"
)

// Kind classifies a service failure by how the caller should present it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	default:
		return "internal"
	}
}

// Domain errors for auth flows.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmptyPassword      = errors.New("password is empty")

	// ErrRevocationUnavailable means the token could not be checked against
	// the revocation store. The token itself may still be valid.
	ErrRevocationUnavailable = errors.New("revocation store unavailable")
)

// Error carries the user-facing messages of a failed operation. Validation and
// conflict errors may hold several messages; the others hold exactly one.
type Error struct {
	Kind     Kind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + strings.Join(e.Messages, "; ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err. Errors not produced by this package are internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessagesOf returns the user-facing messages of err, or fallback for foreign errors.
func MessagesOf(err error, fallback string) []string {
	var se *Error
	if errors.As(err, &se) && len(se.Messages) > 0 {
		return se.Messages
	}
	return []string{fallback}
}

func internalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Messages: []string{msg}, Err: err}
}
