// Package errors provides the structured error type shared by every layer
package errors

// Always import the project errors package as perr (platform/errors)

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode classifies an error for callers and the wire.
// Values are stable; append new codes at the end
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeUnavailable is for a local dependency (db, pool) that is not serving
	ErrorCodeUnavailable

	// ErrorCodeTooManyRequests is a quota denial (RateLimited)
	ErrorCodeTooManyRequests

	// ErrorCodeConflict is for write conflicts, including unique violations
	ErrorCodeConflict

	// ErrorCodeInvalidArgument is for well-formed input the backend rejects
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for malformed caller input (ValidationError)
	ErrorCodeValidation

	// ErrorCodeJSON is for undecodable request bodies
	ErrorCodeJSON

	// ErrorCodeNotFound is for missing resources
	ErrorCodeNotFound

	// ErrorCodeDB is for general database errors
	ErrorCodeDB

	// ErrorCodeUpstreamTimeout is an oracle or catalog call that ran out of time
	ErrorCodeUpstreamTimeout

	// ErrorCodeUpstreamUnavailable is an oracle or catalog call that failed outright
	ErrorCodeUpstreamUnavailable

	// ErrorCodeUpstreamShape is an upstream reply that failed shape validation
	ErrorCodeUpstreamShape
)

var codeNames = [...]string{
	ErrorCodeUnknown:             "unknown",
	ErrorCodePanic:               "panic",
	ErrorCodeUnavailable:         "unavailable",
	ErrorCodeTooManyRequests:     "rate_limited",
	ErrorCodeConflict:            "conflict",
	ErrorCodeInvalidArgument:     "invalid_argument",
	ErrorCodeValidation:          "validation",
	ErrorCodeJSON:                "json",
	ErrorCodeNotFound:            "not_found",
	ErrorCodeDB:                  "db",
	ErrorCodeUpstreamTimeout:     "upstream_timeout",
	ErrorCodeUpstreamUnavailable: "upstream_unavailable",
	ErrorCodeUpstreamShape:       "upstream_shape",
}

// String returns a stable snake_case label, used for logs and metric labels
func (c ErrorCode) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("code_%d", uint16(c))
}

// MarshalText writes the label so envelopes carry "rate_limited" rather than a number
func (c ErrorCode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText reverses MarshalText; unknown labels decode as ErrorCodeUnknown
func (c *ErrorCode) UnmarshalText(b []byte) error {
	for i, name := range codeNames {
		if name == string(b) {
			*c = ErrorCode(i)
			return nil
		}
	}
	*c = ErrorCodeUnknown
	return nil
}

// HTTPStatusCode maps a code to its http status. Upstream codes map to 502/504
// for completeness; handlers absorb them before they reach the wire
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrorCodeUpstreamUnavailable, ErrorCodeUpstreamShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrNotFound is a sentinel not found error
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error carries a code, a message, and optional field/op/details around a cause
type Error struct {
	orig    error
	msg     string
	code    ErrorCode
	field   string
	op      string
	details map[string]any
}

// Wire is the JSON form returned by the API
type Wire struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the cause
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending input field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if any
func (e *Error) Op() string { return e.op }

// Details returns attached metadata; callers must not mutate it
func (e *Error) Details() map[string]any { return e.details }

// ToWire converts e to its wire payload
func (e *Error) ToWire() Wire {
	return Wire{Code: e.code, Message: e.msg, Field: e.field, Details: e.details}
}

// WireFrom converts any error into a wire payload; nil gives the zero value
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts the code of the outermost *Error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As returns (*Error, true) if err wraps one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// copy-on-write mutators; foreign errors pass through unchanged

// WithField attaches the offending field name
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// WithDetails merges kv into the error's details
func WithDetails(err error, kv map[string]any) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	c.details = make(map[string]any, len(e.details)+len(kv))
	for k, v := range e.details {
		c.details[k] = v
	}
	for k, v := range kv {
		c.details[k] = v
	}
	return &c
}

// constructors

// New returns an *Error with code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns an *Error with code and a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error around orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns an *Error around orig with a formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// sugar

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// Validationf returns a validation error for field
func Validationf(field, format string, a ...any) error {
	return &Error{code: ErrorCodeValidation, msg: fmt.Sprintf(format, a...), field: field}
}

// JSONErrf returns a JSON decode error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Unavailablef returns an unavailable error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// RateLimited builds the caller-visible quota denial with its metadata
func RateLimited(limit, remaining int, resetAt time.Time) error {
	return &Error{
		code: ErrorCodeTooManyRequests,
		msg:  "rate limit exceeded",
		details: map[string]any{
			"limit":     limit,
			"remaining": remaining,
			"reset_at":  resetAt.UTC().Format(time.RFC3339),
		},
	}
}

// upstream classification

// FromUpstream wraps a failed oracle/catalog call. A deadline or a cause that
// reports Timeout() becomes UpstreamTimeout, anything else UpstreamUnavailable.
// Errors that already carry an upstream code are returned as is
func FromUpstream(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsUpstream(err) {
		return err
	}
	if isTimeout(err) {
		return Wrap(err, ErrorCodeUpstreamTimeout, msg)
	}
	return Wrap(err, ErrorCodeUpstreamUnavailable, msg)
}

// Shapef reports a malformed upstream reply
func Shapef(format string, a ...any) error { return Newf(ErrorCodeUpstreamShape, format, a...) }

// IsUpstream reports whether err is one of the three upstream classes
func IsUpstream(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeUpstreamTimeout, ErrorCodeUpstreamUnavailable, ErrorCodeUpstreamShape:
		return true
	}
	return false
}

func isTimeout(err error) bool {
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return stderrs.As(err, &t) && t.Timeout()
}

// HTTP bundles status and wire payload for handlers
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

// Retryable reports whether the error is worth retrying; backed by the pg helpers
func Retryable(err error) bool { return IsRetryable(err) }
