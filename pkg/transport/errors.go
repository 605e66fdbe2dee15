package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
	"github.com/ekaya-inc/assessment-console/pkg/jsonutil"
)

// NetworkError means no HTTP response reached the client: DNS, connect,
// TLS, reset, or context cancellation.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a response with a non-2xx status.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	// Message is the server-provided error text, if the body carried one.
	Message string
	// Body is the raw response body, truncated for safety.
	Body string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
}

// Is maps well-known statuses onto the apperrors sentinels.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case apperrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case apperrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// DecodeError is a 2xx response whose body did not match the expected type.
type DecodeError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// serverMessage extracts a human-readable message from an error body.
// Checked keys, in order: detail, message, error.
func serverMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		if msg := jsonutil.FlexibleStringValue(fields[key]); msg != "" {
			return msg
		}
	}
	return ""
}
