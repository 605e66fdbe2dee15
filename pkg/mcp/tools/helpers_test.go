package tools

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func requestWith(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestTrimString(t *testing.T) {
	assert.Equal(t, "a1", trimString("  a1\t"))
	assert.Equal(t, "", trimString("   "))
}

func TestGetOptionalString(t *testing.T) {
	req := requestWith(map[string]any{"type": "  measure ", "limit": float64(3)})
	assert.Equal(t, "measure", getOptionalString(req, "type"))
	assert.Equal(t, "", getOptionalString(req, "limit"))
	assert.Equal(t, "", getOptionalString(req, "missing"))
	assert.Equal(t, "", getOptionalString(mcp.CallToolRequest{}, "type"))
}

func TestGetOptionalInt(t *testing.T) {
	req := requestWith(map[string]any{"limit": float64(25), "offset": 3, "bad": "10"})
	assert.Equal(t, 25, getOptionalInt(req, "limit", 100))
	assert.Equal(t, 3, getOptionalInt(req, "offset", 0))
	assert.Equal(t, 7, getOptionalInt(req, "bad", 7))
	assert.Equal(t, 100, getOptionalInt(mcp.CallToolRequest{}, "limit", 100))
}

func TestGetOptionalBool(t *testing.T) {
	req := requestWith(map[string]any{"wait": true, "other": "yes"})

	v, ok := getOptionalBool(req, "wait")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = getOptionalBool(req, "other")
	assert.False(t, ok)
}

func TestRequireAssessmentID(t *testing.T) {
	id, res := requireAssessmentID(requestWith(map[string]any{"assessment_id": " a1 "}))
	assert.Nil(t, res)
	assert.Equal(t, "a1", id)

	_, res = requireAssessmentID(requestWith(map[string]any{"assessment_id": "  "}))
	assert.NotNil(t, res)
	assert.True(t, res.IsError)

	_, res = requireAssessmentID(requestWith(map[string]any{}))
	assert.NotNil(t, res)

	_, res = requireAssessmentID(requestWith(map[string]any{"assessment_id": " .. "}))
	assert.NotNil(t, res)
	assert.True(t, res.IsError)
}
