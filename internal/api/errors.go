package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// Kind classifies a failure so callers can tell a rejected request
// from a broken task.
type Kind string

const (
	KindConfig       Kind = "config"
	KindAccessDenied Kind = "access_denied"
	KindUnknownTask  Kind = "unknown_task"
	KindBadRequest   Kind = "bad_request"
	KindNotFound     Kind = "not_found"
	KindExecution    Kind = "execution"
	KindInternal     Kind = "internal"
)

// HTTPStatus maps the kind to the response code used by the server.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindAccessDenied:
		return http.StatusForbidden
	case KindUnknownTask, KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string

	// underlying cause, may be nil
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, format string, a ...any) error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
	}
}

// Wrap attaches kind and message to err. A nil err yields nil.
func Wrap(kind Kind, err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
		Err:     err,
	}
}

func NewConfigError(format string, a ...any) error {
	return NewError(KindConfig, format, a...)
}

func NewAccessDeniedError(format string, a ...any) error {
	return NewError(KindAccessDenied, format, a...)
}

func NewBadRequestError(format string, a ...any) error {
	return NewError(KindBadRequest, format, a...)
}

func NewUnknownTaskError(format string, a ...any) error {
	return NewError(KindUnknownTask, format, a...)
}

// KindOf reports the failure kind of err.
// Errors without an explicit kind are execution failures,
// except missing files which are reported as not found.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindAccessDenied
	}
	return KindExecution
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
