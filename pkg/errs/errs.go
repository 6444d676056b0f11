// Package errs holds the error classes shared by repositories, services and handlers.
// Wrap a class with fmt.Errorf("...: %w", errs.ErrX) and test it with errors.Is.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Invalid wraps ErrInvalidInput with a client facing message.
func Invalid(format string, args ...any) error {
	return &classified{class: ErrInvalidInput, msg: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with a client facing message.
func NotFound(format string, args ...any) error {
	return &classified{class: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Conflict wraps ErrConflict with a client facing message.
func Conflict(format string, args ...any) error {
	return &classified{class: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// Unauthorized wraps ErrUnauthorized with a client facing message.
func Unauthorized(format string, args ...any) error {
	return &classified{class: ErrUnauthorized, msg: fmt.Sprintf(format, args...)}
}

// Forbidden wraps ErrForbidden: the caller is known but the resource is not theirs.
func Forbidden(format string, args ...any) error {
	return &classified{class: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

type classified struct {
	class error
	msg   string
}

func (e *classified) Error() string { return e.msg }
func (e *classified) Unwrap() error { return e.class }

// HTTPStatus maps an error to the status returned to clients. Conflicts are reported
// as 400 like any other rejected input.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client: the classified message, or a
// generic one for unclassified errors.
func Message(err error) string {
	var c *classified
	if errors.As(err, &c) {
		return c.msg
	}
	for _, class := range []error{ErrInvalidInput, ErrNotFound, ErrConflict, ErrUnauthorized, ErrForbidden} {
		if errors.Is(err, class) {
			return class.Error()
		}
	}
	return "server error"
}
