package lark

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error returned by the open platform, either as a
// non-2xx status or as a response envelope with a non-zero code.
type APIError struct {
	StatusCode int    `json:"-"      yaml:"status_code"`
	Code       int    `json:"code"   yaml:"code"`
	Msg        string `json:"msg"    yaml:"msg"`
	LogID      string `json:"-"      yaml:"log_id,omitempty"`
	RequestID  string `json:"-"      yaml:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (code: %d, status: %d)", e.Msg, e.Code, e.StatusCode)
	if e.LogID != "" {
		msg += ", log_id: " + e.LogID
	}

	return msg
}

// Common error codes.
const (
	ErrorCodeInvalidAccessToken = 99991663
	ErrorCodeTenantTokenInvalid = 99991664
	ErrorCodeRateLimited        = 99991400
	ErrorCodePermissionDenied   = 99991672
	ErrorCodeAppNotEnabled      = 99991668
	ErrorCodeInternalError      = 1500
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrEndpointRequired    = errors.New("API endpoint is required")
	ErrRequestRequired     = errors.New("request is required")
	ErrEmptyPage           = errors.New("fetch returned no page")
	ErrCircuitBreakerOpen  = errors.New("circuit breaker is open")
	ErrMissingPathParam    = errors.New("missing path parameter")
	ErrIteratorExhausted   = errors.New("iterator exhausted")
	ErrAppCredentials      = errors.New("app id and app secret are required")
	ErrUnsupportedSinkType = errors.New("unsupported sink type")
)

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeRateLimited || apiErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}

// IsPermissionDenied checks if the error reports a missing scope.
func IsPermissionDenied(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodePermissionDenied || apiErr.StatusCode == http.StatusForbidden
	}

	return false
}

// IsInvalidToken checks if the error reports an invalid or expired token.
func IsInvalidToken(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case ErrorCodeInvalidAccessToken, ErrorCodeTenantTokenInvalid:
			return true
		}

		return apiErr.StatusCode == http.StatusUnauthorized
	}

	return false
}

// IsServerError checks if the error is a 5xx response.
func IsServerError(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}
