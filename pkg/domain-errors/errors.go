// Package domainerrors defines coded errors shared by services and handlers.
//
// Stores return sentinel errors (pkg/platform/sentinel) for infrastructure
// facts; services translate those into coded domain errors so the transport
// layer can map a code to an HTTP status without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and tests.
type Code string

const (
	// CodeInvalidInput marks malformed identifiers or payload fields
	// rejected at a trust boundary.
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest marks a structurally valid request that violates a
	// validation rule (e.g. a validity window ending before it starts).
	CodeBadRequest Code = "bad_request"

	// CodeConflict marks a request that would violate a uniqueness or
	// non-overlap invariant against existing records.
	CodeConflict Code = "conflict"

	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"

	// CodeInvariantViolation marks an attempted state change a domain
	// object refuses.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Wrapped causes stay reachable via errors.Is
// and errors.As.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the classification of this error.
func (e *Error) Code() Code { return e.code }

// Message returns the caller-facing message without the wrapped cause.
func (e *Error) Message() string { return e.message }

// New builds a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{code: code, message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.code == code
	}
	return false
}

// Is is a readability alias for HasCode used at handler call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so transport never leaks raw infrastructure failures as 4xx.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// HTTPStatus maps a code to the status the transport layer should emit.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict, CodeInvariantViolation:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
