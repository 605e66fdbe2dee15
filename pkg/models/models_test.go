package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_AcceptsStringsAndNumbers(t *testing.T) {
	var payload struct {
		A ID  `json:"a"`
		B ID  `json:"b"`
		C *ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"7f3c","b":42,"c":null}`), &payload))

	assert.Equal(t, ID("7f3c"), payload.A)
	assert.Equal(t, ID("42"), payload.B)
	assert.Nil(t, payload.C)
}

func TestTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339 with zone",
			input: `"2025-03-01T10:20:30Z"`,
			want:  time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC),
		},
		{
			name:  "zone-less with microseconds",
			input: `"2025-03-01T10:20:30.123456"`,
			want:  time.Date(2025, 3, 1, 10, 20, 30, 123456000, time.UTC),
		},
		{
			name:  "space separated",
			input: `"2025-03-01 10:20:30"`,
			want:  time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestTimestamp_NullAndInvalid(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
}

func TestAssessment_DecodeKeepsOptionalFieldsOptional(t *testing.T) {
	body := `{
		"id": "a1",
		"name": "Q3 Cognos export",
		"bi_tool": "cognos",
		"status": "completed",
		"created_at": "2025-03-01T10:20:30",
		"files_count": 2,
		"objects_count": 1500,
		"relationships_count": 900
	}`

	var a Assessment
	require.NoError(t, json.Unmarshal([]byte(body), &a))

	assert.Equal(t, ID("a1"), a.ID)
	assert.Equal(t, AssessmentStatusCompleted, a.Status)
	assert.Nil(t, a.UpdatedAt)
	assert.Nil(t, a.UserID)
	assert.Equal(t, 1500, a.ObjectsCount)
}

func TestAssessmentStatus_IsTerminal(t *testing.T) {
	assert.True(t, AssessmentStatusCompleted.IsTerminal())
	assert.True(t, AssessmentStatusFailed.IsTerminal())
	assert.False(t, AssessmentStatusProcessing.IsTerminal())
	assert.False(t, AssessmentStatusCreated.IsTerminal())
	assert.False(t, AssessmentStatusUploading.IsTerminal())
}

func TestExtractedObject_Property(t *testing.T) {
	body := `{
		"id": 9,
		"assessment_id": "a1",
		"object_type": "calculated_field",
		"name": "Profit Ratio",
		"properties": {"expression": "SUM([Profit])/SUM([Sales])", "precision": 2, "hidden": false}
	}`

	var obj ExtractedObject
	require.NoError(t, json.Unmarshal([]byte(body), &obj))

	assert.Equal(t, ID("9"), obj.ID)
	assert.Equal(t, "SUM([Profit])/SUM([Sales])", obj.Property("expression"))
	assert.Equal(t, "2", obj.Property("precision"))
	assert.Equal(t, "false", obj.Property("hidden"))
	assert.Equal(t, "", obj.Property("missing"))
	assert.Nil(t, obj.ComplexityScore)

	var empty ExtractedObject
	assert.Equal(t, "", empty.Property("expression"))
}

func TestAssessmentReport_Sections(t *testing.T) {
	body := `{
		"assessment_id": "a1",
		"version": "2",
		"dashboards": {"total_count": 3, "complexity": {"low": 1, "medium": 1, "high": 1, "critical": 0}, "items": [{"name": "Exec"}]},
		"measures": {"total_count": 0, "items": []},
		"key_findings": ["42 calculated fields use LOD expressions"]
	}`

	var r AssessmentReport
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	sections := r.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, "dashboards", sections[0].Key)
	assert.Equal(t, 3, sections[0].Section.TotalCount)
	assert.Equal(t, 3, sections[0].Section.Complexity.Total())
	assert.Equal(t, "measures", sections[1].Key)
	assert.Nil(t, sections[1].Section.Complexity)
	assert.JSONEq(t, `["42 calculated fields use LOD expressions"]`, string(r.KeyFindings))
}
