package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/assessment-console/pkg/transport"
)

// ErrorResponse represents a structured error in tool results.
// Errors go back as tool results so the calling model can read and act on them.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// NewAPIErrorResult maps a backend failure to a tool error result.
// Returns nil for errors that are not backend responses; the caller
// returns those as Go errors.
func NewAPIErrorResult(err error, apiBase string) *mcp.CallToolResult {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}

	var netErr *transport.NetworkError
	if errors.As(err, &netErr) {
		return NewErrorResultWithDetails("backend_unreachable",
			"the assessment API could not be reached; make sure the backend is running",
			map[string]any{"api_base": apiBase})
	}

	var httpErr *transport.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized:
			return NewErrorResult("unauthorized", "not signed in; run the login command and try again")
		case http.StatusForbidden:
			return NewErrorResult("forbidden", "the signed-in user cannot access this assessment")
		case http.StatusNotFound:
			return NewErrorResult("not_found", "assessment or resource not found")
		}
		msg := httpErr.Message
		if msg == "" {
			msg = http.StatusText(httpErr.StatusCode)
		}
		return NewErrorResultWithDetails("api_error", msg, map[string]any{"status": httpErr.StatusCode})
	}

	var decErr *transport.DecodeError
	if errors.As(err, &decErr) {
		return NewErrorResult("invalid_response", "the assessment API returned a response that could not be decoded")
	}

	return nil
}
