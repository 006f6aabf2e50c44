package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Rejection codes emitted by the authorization gates. Identity and token
// problems map to 401, authorization-state problems (identity established,
// permission denied) to 403, and store outages to a retryable 503.
const (
	CodeNoAuthHeader      = "NO_AUTH_HEADER"
	CodeNoToken           = "NO_TOKEN"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeInvalidPayload    = "INVALID_PAYLOAD"
	CodeUnknownUser       = "UNKNOWN_USER"
	CodeAccountInactive   = "ACCOUNT_INACTIVE"
	CodeAccountUnapproved = "ACCOUNT_UNAPPROVED"
	CodeLookupFailed      = "ACCOUNT_LOOKUP_FAILED"
)

// IsGateRejection reports whether the code is one of the authorization
// gate's rejection codes.
func IsGateRejection(code string) bool {
	switch code {
	case CodeNoAuthHeader, CodeNoToken, CodeInvalidToken, CodeInvalidPayload,
		CodeUnknownUser, CodeAccountInactive, CodeAccountUnapproved, CodeLookupFailed:
		return true
	}
	return false
}

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Retryable  bool
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewUnauthorized builds a 401 rejection with the given gate code. The
// message is user-safe; diagnostic detail belongs in server logs only.
func NewUnauthorized(code, message string) error {
	return NewDomainError(code, message, http.StatusUnauthorized, nil)
}

// NewForbidden builds a 403 rejection with the given gate code.
func NewForbidden(code, message string) error {
	return NewDomainError(code, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewRetryable marks an infrastructure failure the caller may retry. These
// must never be collapsed into UNKNOWN_USER: a store outage says nothing
// about the account's existence.
func NewRetryable(code, message string, err error) error {
	return &DomainError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
		Retryable:  true,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
