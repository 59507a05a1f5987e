package apierror

import "fmt"

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	RetryAfter int    `json:"-"` // seconds, surfaced as Retry-After header
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// NewRetryable builds an error that carries a Retry-After hint, used for
// lockout and rate-limit responses.
func NewRetryable(code string, message string, status int, retryAfter int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status, RetryAfter: retryAfter}
}
