package tools

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/services"
	"github.com/ekaya-inc/assessment-console/pkg/transport"
)

func TestReportSummaryTool(t *testing.T) {
	client := newMockClient(models.AssessmentStatusCompleted, 1)
	client.report = &models.AssessmentReport{
		AssessmentID:       "a1",
		Version:            "2",
		Dashboards:         &models.BreakdownSection{TotalCount: 3, Complexity: &models.ComplexityBuckets{Low: 1, High: 2}, Items: []map[string]any{{"name": "Exec"}}},
		Measures:           &models.BreakdownSection{TotalCount: 10},
		ComplexityAnalysis: &models.ComplexityBuckets{Low: 4, Medium: 6, High: 2, Critical: 1},
		KeyFindings:        json.RawMessage(`["LOD expressions in 42 fields"]`),
	}
	s := newTestServer(t, client)

	text, isError := callTool(t, s, "get_report_summary", map[string]any{"assessment_id": "a1"})
	require.False(t, isError, text)

	var result reportSummaryResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	require.Len(t, result.Sections, 2)
	assert.Equal(t, "dashboards", result.Sections[0].Key)
	assert.Equal(t, 2, result.Sections[0].Complexity.High)
	assert.Equal(t, "measures", result.Sections[1].Key)
	assert.Equal(t, 13, result.ComplexityAnalysis.Total())
	assert.JSONEq(t, `["LOD expressions in 42 fields"]`, string(result.KeyFindings))
	assert.NotContains(t, text, "Exec")
}

func TestReportSummaryTool_Errors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{name: "unreachable", err: &transport.NetworkError{Err: errors.New("connection refused")}, wantCode: "unreachable"},
		{name: "401", err: &transport.HTTPError{StatusCode: 401}, wantCode: "unauthorized", wantMessage: services.MsgNotSignedIn},
		{name: "404", err: &transport.HTTPError{StatusCode: 404}, wantCode: "not_found", wantMessage: services.MsgReportNotFound},
		{name: "500", err: &transport.HTTPError{StatusCode: 500, Message: "boom"}, wantCode: "other", wantMessage: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(models.AssessmentStatusCompleted, 1)
			client.reportErr = tt.err
			s := newTestServer(t, client)

			text, isError := callTool(t, s, "get_report_summary", map[string]any{"assessment_id": "a1"})
			require.True(t, isError)

			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(text), &errResp))
			assert.Equal(t, tt.wantCode, errResp.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, errResp.Message)
			} else {
				assert.Contains(t, errResp.Message, "http://localhost:8000/api")
			}
		})
	}
}
