package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// envelope is the uniform wrapper the API puts around every success payload.
type envelope struct {
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Success   bool            `json:"success"`
	Timestamp int64           `json:"timestamp"`
}

// APIError is the uniform error shape propagated to callers for every failed
// request: the server's message (or a status-class fallback), field-level
// validation errors when present, the numeric status, and a timestamp.
// Status 0 means the request never produced a response.
type APIError struct {
	Message   string              `json:"message"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Status    int                 `json:"status"`
	Timestamp int64               `json:"timestamp"`

	cause error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s", e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// IsAuth reports whether the error is an authorization failure (401-class).
func (e *APIError) IsAuth() bool { return e.Status == http.StatusUnauthorized }

// fallbackMessage mirrors the status-class messages the storefront UI shows
// when the server does not provide one.
func fallbackMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Please check your input and try again."
	case http.StatusUnauthorized:
		return "You are not authorized to perform this action."
	case http.StatusForbidden:
		return "Access denied."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	default:
		return "Network error. Please check your connection."
	}
}

// decodeError builds an [APIError] from a non-success response body. The body
// is best-effort: an undecodable body still yields a well-formed error.
func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:    status,
		Timestamp: time.Now().UnixMilli(),
	}

	var wire struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if len(body) > 0 && json.Unmarshal(body, &wire) == nil {
		apiErr.Message = wire.Message
		apiErr.Errors = wire.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = fallbackMessage(status)
	}
	return apiErr
}

// networkError builds an [APIError] for a request that produced no response.
func networkError(err error) *APIError {
	return &APIError{
		Message:   fallbackMessage(0),
		Status:    0,
		Timestamp: time.Now().UnixMilli(),
		cause:     err,
	}
}
