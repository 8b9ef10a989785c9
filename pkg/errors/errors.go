// Package errors defines the coded error taxonomy the HTTP layer maps to
// responses. Services return these; handlers never inspect causes directly.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for response mapping and logging.
type Code string

const (
	// CodeValidation marks bad input caught before any storage write:
	// an empty cart at submission, a blank contact field, an unknown
	// status value, an empty conversion selection.
	CodeValidation Code = "VALIDATION_ERROR"

	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeForbidden covers authenticated actors reaching for someone
	// else's resource, e.g. a customer loading another customer's quote.
	CodeForbidden Code = "FORBIDDEN"

	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict is a uniqueness clash (duplicate email, taken slug).
	CodeConflict Code = "CONFLICT"

	// CodeStateConflict is a disallowed quote status transition, kept
	// distinct from CodeConflict so it can map to 422 instead of 409.
	CodeStateConflict Code = "STATE_CONFLICT"

	CodeIdempotency Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit   Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal    Code = "INTERNAL_ERROR"

	// CodeDependency is a failed backing service (Postgres, Redis); the
	// state that triggered the call is left unchanged, so retry is safe.
	CodeDependency Code = "DEPENDENCY_ERROR"
)

// Metadata is the per-code response policy: the HTTP status, whether the
// caller may retry, the fallback message when the error carries none the
// client should see, and whether structured details may leak through.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "request validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "access denied",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "resource already exists",
	},
	CodeStateConflict: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "current status does not allow this operation",
		DetailsAllowed: true,
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		PublicMessage: "too many requests",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "a backing service is unavailable",
		DetailsAllowed: true,
	},
}

// MetadataFor resolves the response policy for a code. Unknown codes fall
// back to the internal-error policy rather than guessing.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded error with an optional cause and optional structured
// details. The zero-value guards below make a nil *Error behave as an
// internal error instead of panicking in response paths.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/As for callers that match on sentinel errors.
func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches structured detail the response layer may expose when
// the code's metadata allows it.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the typed error from anywhere in a chain, or returns nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
