package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the client and the development server.
const (
	CodeDecode       = "DECODE_ERROR"
	CodeNetwork      = "NETWORK_ERROR"
	CodeApplication  = "APPLICATION_ERROR"
	CodeInvalidRole  = "INVALID_ROLE"
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
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

// NewDecodeError reports a session token that cannot be turned into claims.
func NewDecodeError(reason string, err error) error {
	return &DomainError{Code: CodeDecode, Message: reason, Err: err}
}

// NewNetworkError wraps a transport failure talking to the remote API.
func NewNetworkError(err error) error {
	return &DomainError{Code: CodeNetwork, Message: "network error", Err: err}
}

// NewApplicationError reports a response in which the server signalled failure.
// An empty message falls back to the status text.
func NewApplicationError(message string, status int) error {
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = "request failed"
	}
	return NewDomainError(CodeApplication, message, status, nil)
}

// NewInvalidRole reports claims carrying a role no page exists for.
func NewInvalidRole(role string) error {
	return NewDomainError(CodeInvalidRole, fmt.Sprintf("unrecognized role %q", role), 0, map[string]any{"role": role})
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
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
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries a DomainError with the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}

// UserMessage returns the text shown to a person for err. Application errors
// surface the server message as is; everything else uses the error string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Code == CodeApplication || domainErr.Err == nil {
			return domainErr.Message
		}
	}
	return err.Error()
}
