package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apiclient"
	"github.com/ekaya-inc/assessment-console/pkg/config"
	"github.com/ekaya-inc/assessment-console/pkg/models"
)

// mockClient implements AssessmentClient in memory.
type mockClient struct {
	mu sync.Mutex

	healthy    bool
	assessment *models.Assessment
	files      []models.UploadedFile
	stats      *models.AssessmentStats
	objects    []models.ExtractedObject
	rels       []models.ObjectRelationship
	report     *models.AssessmentReport

	// statuses, when set, are returned by successive GetAssessment calls
	// after the first.
	statuses []models.AssessmentStatus

	assessmentErr error
	relErr        error
	reportErr     error
	runErr        error

	getAssessmentCalls int
	getStatsCalls      int
	triggerRunCalls    int
}

func (m *mockClient) Health(context.Context) bool { return m.healthy }

func (m *mockClient) BaseURL() string { return "http://localhost:8000/api" }

func (m *mockClient) GetAssessment(_ context.Context, _ string) (*models.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getAssessmentCalls++
	if m.assessmentErr != nil {
		return nil, m.assessmentErr
	}
	a := *m.assessment
	if m.getAssessmentCalls > 1 && len(m.statuses) > 0 {
		a.Status = m.statuses[min(m.getAssessmentCalls-2, len(m.statuses)-1)]
	}
	return &a, nil
}

func (m *mockClient) ListFiles(_ context.Context, _ string) ([]models.UploadedFile, error) {
	return m.files, nil
}

func (m *mockClient) GetStats(_ context.Context, _ string) (*models.AssessmentStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getStatsCalls++
	return m.stats, nil
}

func (m *mockClient) TriggerRun(_ context.Context, _ string) (*models.RunResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggerRunCalls++
	if m.runErr != nil {
		return nil, m.runErr
	}
	return &models.RunResponse{Status: "processing"}, nil
}

func (m *mockClient) GetObjects(_ context.Context, _ string, q apiclient.ObjectQuery) ([]models.ExtractedObject, error) {
	var matched []models.ExtractedObject
	for _, o := range m.objects {
		if q.Type == "" || o.ObjectType == q.Type {
			matched = append(matched, o)
		}
	}
	start := min(q.Skip, len(matched))
	end := min(q.Skip+q.Limit, len(matched))
	return matched[start:end], nil
}

func (m *mockClient) GetRelationships(_ context.Context, _ string, _ apiclient.RelationshipQuery) ([]models.ObjectRelationship, error) {
	if m.relErr != nil {
		return nil, m.relErr
	}
	return m.rels, nil
}

func (m *mockClient) GetReport(_ context.Context, _ string) (*models.AssessmentReport, error) {
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return m.report, nil
}

func newMockClient(status models.AssessmentStatus, fileCount int) *mockClient {
	files := make([]models.UploadedFile, 0, fileCount)
	for i := range fileCount {
		files = append(files, models.UploadedFile{ID: models.ID(fmt.Sprintf("f%d", i+1)), Filename: "export.zip"})
	}
	return &mockClient{
		healthy:    true,
		assessment: &models.Assessment{ID: "a1", Name: "Q3 Cognos export", BITool: "cognos", Status: status},
		files:      files,
		stats:      &models.AssessmentStats{TotalObjects: 3},
	}
}

func newTestServer(t *testing.T, client *mockClient) *server.MCPServer {
	t.Helper()
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterTools(s, &ToolDeps{
		Client: client,
		Loader: config.LoaderConfig{
			RunRefetchDelay:   time.Hour,
			ObjectPageSize:    2,
			RelationshipLimit: 100,
			PollInterval:      time.Millisecond,
			PollMaxInterval:   2 * time.Millisecond,
		},
		Version: "test-version",
		Logger:  zap.NewNop(),
	})
	return s
}

// callTool invokes a tool and returns the result text and error flag.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) (string, bool) {
	t.Helper()
	request, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	result := s.HandleMessage(context.Background(), request)
	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result *struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &response))
	if response.Error != nil {
		t.Fatalf("tool %s returned protocol error: %s", name, response.Error.Message)
	}
	require.NotNil(t, response.Result)
	require.NotEmpty(t, response.Result.Content)
	return response.Result.Content[0].Text, response.Result.IsError
}

// getTextContent extracts the text string from the first text content item.
func getTextContent(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	jsonBytes, _ := json.Marshal(result.Content[0])
	var textContent struct {
		Text string `json:"text"`
	}
	_ = json.Unmarshal(jsonBytes, &textContent)
	return textContent.Text
}
