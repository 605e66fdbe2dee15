package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/assessment-console/pkg/transport"
)

func TestNewErrorResult(t *testing.T) {
	result := NewErrorResult("test_error", "this is a test error")

	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	assert.True(t, result.IsError)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))
	assert.True(t, errResp.Error)
	assert.Equal(t, "test_error", errResp.Code)
	assert.Equal(t, "this is a test error", errResp.Message)
	assert.Nil(t, errResp.Details)
}

func TestNewErrorResultWithDetails(t *testing.T) {
	result := NewErrorResultWithDetails("run_not_allowed", "no files", map[string]any{"files": 0})

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &parsed))
	assert.Equal(t, map[string]any{"files": float64(0)}, parsed["details"])
}

func TestNewAPIErrorResult(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{name: "unreachable", err: &transport.NetworkError{Err: errors.New("connection refused")}, wantCode: "backend_unreachable"},
		{name: "401", err: &transport.HTTPError{StatusCode: 401}, wantCode: "unauthorized"},
		{name: "403", err: &transport.HTTPError{StatusCode: 403}, wantCode: "forbidden"},
		{name: "404", err: &transport.HTTPError{StatusCode: 404}, wantCode: "not_found"},
		{name: "500 with message", err: &transport.HTTPError{StatusCode: 500, Message: "boom"}, wantCode: "api_error", wantMsg: "boom"},
		{name: "502 without message", err: &transport.HTTPError{StatusCode: 502}, wantCode: "api_error", wantMsg: "Bad Gateway"},
		{name: "decode", err: &transport.DecodeError{Err: errors.New("bad json")}, wantCode: "invalid_response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewAPIErrorResult(tt.err, "http://localhost:8000/api")
			require.NotNil(t, result)

			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))
			assert.Equal(t, tt.wantCode, errResp.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errResp.Message)
			}
		})
	}
}

func TestNewAPIErrorResult_NonAPIErrors(t *testing.T) {
	assert.Nil(t, NewAPIErrorResult(nil, ""))
	assert.Nil(t, NewAPIErrorResult(errors.New("disk full"), ""))
	assert.Nil(t, NewAPIErrorResult(&transport.NetworkError{Err: context.Canceled}, ""))
}
