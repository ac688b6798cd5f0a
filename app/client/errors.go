package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation    = errors.New("request rejected")
	ErrConfiguration = errors.New("payment configuration error")
	ErrNetwork       = errors.New("network error")
	ErrServer        = errors.New("server error")
)

// APIError describes a failed API call. It unwraps to one of the sentinel
// errors above and, for transport failures, to the underlying cause.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string

	kind  error
	cause error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v: %s", e.Method, e.Path, e.kind, e.Message)
	}
	return fmt.Sprintf("%s %s: status=%d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func newStatusError(method, path string, status int, message string) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    message,
		kind:       kindForStatus(status),
	}
}

func newTransportError(method, path string, cause error) *APIError {
	return &APIError{
		Method:  method,
		Path:    path,
		Message: cause.Error(),
		kind:    ErrNetwork,
		cause:   cause,
	}
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrServer
	}
}
