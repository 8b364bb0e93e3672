package errors

import (
	"context"
	"errors"
	"net/http"
)

// Kind is the stable error discriminator carried in every failed response
// envelope so the transport can deterministically map it to a status code.
type Kind string

const (
	KindUnauthorized  Kind = "unauthorized"
	KindNotFoundRoute Kind = "route_not_found"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindInvalidCursor Kind = "invalid_cursor"
	KindTimeout       Kind = "timeout"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

var (
	ErrEmptyAuth     = New(KindUnauthorized, "missing authorization")
	ErrTokenInvalid  = New(KindUnauthorized, "invalid token")
	ErrScopeMissing  = New(KindUnauthorized, "missing required scope")
	ErrRouteNotFound = New(KindNotFoundRoute, "no matching route")
	ErrProductGone   = New(KindNotFound, "product not found")
	ErrSkuConflict   = New(KindConflict, "sku already exists")
	ErrCursorInvalid = New(KindInvalidCursor, "malformed pagination cursor")
)

// KindOf extracts the kind of err. Context deadline errors map to the
// timeout kind; anything untyped is internal so downstream detail never
// leaks to the caller.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

func StatusCode(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFoundRoute, KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindInvalidCursor:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
