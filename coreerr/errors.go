// Package coreerr models the error taxonomy from spec §7 as a closed
// sum type, so an unrecognized kind panics when it is named or mapped to
// an HTTP status rather than becoming a silently-wrong status.
package coreerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a closed enumeration of the error categories the coordinator
// and share node surface to callers.
type Kind int

const (
	NotFound Kind = iota
	Conflict
	Precondition
	AuthFailure
	Gateway
	Internal
	BadRequest
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Precondition:
		return "precondition"
	case AuthFailure:
		return "auth_failure"
	case Gateway:
		return "gateway"
	case Internal:
		return "internal"
	case BadRequest:
		return "bad_request"
	default:
		panic(fmt.Sprintf("coreerr: unknown Kind %d", int(k)))
	}
}

// HTTPStatus maps a Kind to the status code spec §7 assigns it.
func (k Kind) HTTPStatus() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Conflict, Precondition:
		return http.StatusConflict
	case AuthFailure:
		return http.StatusUnauthorized
	case Gateway:
		return http.StatusBadGateway
	case Internal:
		return http.StatusInternalServerError
	case BadRequest:
		return http.StatusBadRequest
	default:
		panic(fmt.Sprintf("coreerr: unknown Kind %d", int(k)))
	}
}

// Error is a taxonomy-tagged error. It wraps an optional cause so internal
// logs can be more specific than what is returned to external callers.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error carrying cause for internal diagnosis.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// As extracts an *Error from err, if any wraps one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err if it (or something it wraps) is an
// *Error, and Internal otherwise — an un-tagged error is always treated
// as a server fault, never leaked as a client-facing 4xx.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}
