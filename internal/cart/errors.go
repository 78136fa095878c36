package cart

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes cart failures.
type ErrorCode string

const (
	// CodeMalformedResponse: the remote payload matched no known envelope.
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"

	// CodeCapabilityDenied: the actor may not mutate the cart.
	CodeCapabilityDenied ErrorCode = "CAPABILITY_DENIED"

	// CodeValidationRejected: the request was rejected locally, before any
	// network call.
	CodeValidationRejected ErrorCode = "VALIDATION_REJECTED"

	// CodeRemoteMutationFailed: the server or network failed a mutation.
	CodeRemoteMutationFailed ErrorCode = "REMOTE_MUTATION_FAILED"

	// CodeRemoteFetchFailed: the cart, product or category fetch failed.
	CodeRemoteFetchFailed ErrorCode = "REMOTE_FETCH_FAILED"

	// CodeEmptySelection: checkout was attempted with nothing selected.
	CodeEmptySelection ErrorCode = "EMPTY_SELECTION"

	// CodePayloadWriteFailed: the checkout payload could not be stored.
	CodePayloadWriteFailed ErrorCode = "PAYLOAD_WRITE_FAILED"
)

// Error is the single error type returned by this package.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Err     error
}

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrMalformedResponse    = &Error{Code: CodeMalformedResponse, Message: "response matched no known shape"}
	ErrCapabilityDenied     = &Error{Code: CodeCapabilityDenied, Message: "actor cannot use the cart"}
	ErrValidationRejected   = &Error{Code: CodeValidationRejected, Message: "rejected locally"}
	ErrRemoteMutationFailed = &Error{Code: CodeRemoteMutationFailed, Message: "remote mutation failed"}
	ErrRemoteFetchFailed    = &Error{Code: CodeRemoteFetchFailed, Message: "remote fetch failed"}
	ErrEmptySelection       = &Error{Code: CodeEmptySelection, Message: "nothing selected"}
	ErrPayloadWriteFailed   = &Error{Code: CodePayloadWriteFailed, Message: "checkout payload not stored"}
)

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func newError(code ErrorCode, op string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsDenied reports whether err is a capability denial.
func IsDenied(err error) bool {
	return CodeOf(err) == CodeCapabilityDenied
}

// IsRejected reports whether err was a local validation rejection.
func IsRejected(err error) bool {
	return CodeOf(err) == CodeValidationRejected
}
