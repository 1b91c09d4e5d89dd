// Package domainerrors defines the error vocabulary shared between services
// and the HTTP layer. Services return *Error values; httputil maps the code
// to a status and decides whether the description is safe to expose.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of a domain error.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeUpstream     Code = "upstream_rejected"
	CodeUnavailable  Code = "service_unavailable"
	CodeInternal     Code = "internal_error"
)

// Error carries a machine-readable code plus a human description.
type Error struct {
	Code        Code
	Description string
	cause       error
}

// New constructs a domain error.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// Wrap constructs a domain error that preserves the underlying cause for
// errors.Is / errors.As chains.
func Wrap(code Code, description string, cause error) *Error {
	return &Error{Code: code, Description: description, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the code to an HTTP status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Safe reports whether the description may be exposed to clients. Internal
// errors keep their detail server-side.
func (e *Error) Safe() bool {
	return e.Code != CodeInternal
}

// From extracts a *Error from err, or wraps err as an internal error.
func From(err error) *Error {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr
	}
	return Wrap(CodeInternal, "internal error", err)
}
