package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// trimString removes leading and trailing whitespace from a string.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return trimString(val)
}

// getOptionalInt extracts an optional integer argument. JSON numbers arrive as float64.
func getOptionalInt(req mcp.CallToolRequest, key string, defaultVal int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return defaultVal
	}
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultVal
}

// getOptionalBool extracts an optional boolean parameter from the request.
func getOptionalBool(req mcp.CallToolRequest, key string) (bool, bool) {
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		if val, ok := args[key].(bool); ok {
			return val, true
		}
	}
	return false, false
}

// requireAssessmentID reads the assessment_id argument. A nil result means
// the id is usable; otherwise the result is the error to return.
func requireAssessmentID(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	id, err := req.RequireString("assessment_id")
	if err != nil {
		return "", NewErrorResult("invalid_parameters", "parameter 'assessment_id' is required")
	}
	id = trimString(id)
	if id == "" {
		return "", NewErrorResult("invalid_parameters", "parameter 'assessment_id' cannot be empty")
	}
	if id == "." || id == ".." {
		return "", NewErrorResult("invalid_parameters", "parameter 'assessment_id' is not a valid id")
	}
	return id, nil
}

// jsonResult marshals v as the text of a successful tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
