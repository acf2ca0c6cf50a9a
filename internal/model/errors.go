package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the client's failure taxonomy.
// Use errors.Is() to check against these.
var (
	ErrAuthMissing    = errors.New("not signed in")
	ErrValidation     = errors.New("validation rejected")
	ErrNetwork        = errors.New("network error")
	ErrServerRejected = errors.New("server rejected")
	ErrDecode         = errors.New("undecodable response")
	ErrRateLimited    = errors.New("rate limited")
)

// APIError is a structured operation failure. Every failure is handled
// at the operation boundary (add/remove/checkout/order) and surfaced to
// the user; nothing is retried automatically.
// Implements error and supports unwrapping.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // HTTP status, not serialized
	Err        error  `json:"-"` // Wrapped error, not serialized
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAuthMissingError reports a missing or undecodable identity token.
// Operations that need an identity fail closed rather than proceeding
// as an anonymous guest.
func NewAuthMissingError(reason string) *APIError {
	return &APIError{
		Code:       "AUTH_MISSING",
		Message:    reason,
		StatusCode: 401,
		Err:        ErrAuthMissing,
	}
}

// NewValidationError reports a local precondition failure. No network
// call was made and no state changed.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_REJECTED",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: 400,
		Err:        ErrValidation,
	}
}

// NewNetworkError reports a request that never completed. State must be
// resynchronized by refetch before the next render.
func NewNetworkError(service string, err error) *APIError {
	return &APIError{
		Code:       "NETWORK_ERROR",
		Message:    fmt.Sprintf("%s request did not complete", service),
		StatusCode: 0,
		Err:        fmt.Errorf("%w: %v", ErrNetwork, err),
	}
}

// NewServerRejectedError reports a non-success response. The message
// carries the server-provided body when available.
func NewServerRejectedError(service string, status int, body string) *APIError {
	msg := fmt.Sprintf("%s returned status %d", service, status)
	if body != "" {
		msg = fmt.Sprintf("%s returned status %d: %s", service, status, body)
	}
	return &APIError{
		Code:       "SERVER_REJECTED",
		Message:    msg,
		StatusCode: status,
		Err:        ErrServerRejected,
	}
}

// NewDecodeError reports an unparseable response body. Treated the same
// as a server rejection: hard failure, state resynchronized.
func NewDecodeError(service string, err error) *APIError {
	return &APIError{
		Code:       "DECODE_ERROR",
		Message:    fmt.Sprintf("%s response could not be decoded", service),
		StatusCode: 502,
		Err:        fmt.Errorf("%w: %v", ErrDecode, err),
	}
}

// NewRateLimitError reports a 429 from a remote service.
func NewRateLimitError(service string) *APIError {
	return &APIError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("%s rate limit exceeded, please retry later", service),
		StatusCode: 429,
		Err:        ErrRateLimited,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *APIError {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: 500,
		Err:        err,
	}
}
