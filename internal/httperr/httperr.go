package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Validation Kind = iota
	AccessDenied
	Unauthorized
	NotFound
	InvalidState
	IncompleteGrading
	Store
)

// Error is the service-level error surfaced through the response envelope.
// The handler boundary maps Kind to an HTTP status; Err keeps the underlying
// store failure for the opaque diagnostics field.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func AccessDeniedf(format string, args ...any) *Error {
	return &Error{Kind: AccessDenied, Message: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...any) *Error {
	return &Error{Kind: Unauthorized, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidStatef(format string, args ...any) *Error {
	return &Error{Kind: InvalidState, Message: fmt.Sprintf(format, args...)}
}

func IncompleteGradingf(format string, args ...any) *Error {
	return &Error{Kind: IncompleteGrading, Message: fmt.Sprintf(format, args...)}
}

func Storef(err error, format string, args ...any) *Error {
	return &Error{Kind: Store, Message: fmt.Sprintf(format, args...), Err: err}
}

// StatusOf maps an error to the HTTP status used by the envelope.
// Validation, not-found and lifecycle errors all answer 400, matching the
// API contract; only auth failures use 401/403 and store failures 500.
func StatusOf(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case AccessDenied:
		return http.StatusForbidden
	case Unauthorized:
		return http.StatusUnauthorized
	case Store:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
