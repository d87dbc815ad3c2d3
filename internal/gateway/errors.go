package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match with errors.Is against any *Error returned by Client.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrNetwork      = errors.New("network error")
)

// Error is a failed call to the forum API.
type Error struct {
	Op      string
	Status  int // 0 when the request never got a response
	Code    string
	Message string

	kind  error
	cause error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.kind, e.cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %v (status %d): %s", e.Op, e.kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %v (status %d)", e.Op, e.kind, e.Status)
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.kind
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the sentinel describing the failure.
func (e *Error) Kind() error {
	return e.kind
}

// DecodeError reports a response body that does not match its schema.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrNetwork
	}
}

// NewError builds the error the client returns for an HTTP status.
func NewError(op string, status int, message string) *Error {
	return &Error{Op: op, Status: status, Message: message, kind: kindForStatus(status)}
}

func networkError(op string, err error) *Error {
	return &Error{Op: op, kind: ErrNetwork, cause: err}
}

// IsAuthError reports whether err is an Unauthorized or Forbidden failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
