package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// Provider errors
var (
	// ErrRateLimited indicates the provider throttled the request. Callers
	// may retry after waiting.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrUnauthorized indicates the provider rejected the credentials.
	ErrUnauthorized = errors.New("provider rejected credentials")

	// ErrMalformedRequest indicates the provider rejected the request body.
	ErrMalformedRequest = errors.New("provider rejected request")

	// ErrProvider indicates any other provider-side failure.
	ErrProvider = errors.New("provider error")

	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ProviderError carries the HTTP status and body of a failed provider call.
// It unwraps to one of the sentinel errors above.
type ProviderError struct {
	Provider   ProviderName
	StatusCode int
	Message    string
	Err        error
}

// NewStatusError maps an HTTP status to the matching sentinel.
func NewStatusError(provider ProviderName, status int, message string) *ProviderError {
	var err error
	switch {
	case status == http.StatusTooManyRequests:
		err = ErrRateLimited
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		err = ErrUnauthorized
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		err = ErrMalformedRequest
	default:
		err = ErrProvider
	}
	return &ProviderError{Provider: provider, StatusCode: status, Message: message, Err: err}
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v: %s", e.Provider, e.Err, e.Message)
	}
	return fmt.Sprintf("%s: http %d: %v: %s", e.Provider, e.StatusCode, e.Err, e.Message)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
