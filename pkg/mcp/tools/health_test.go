package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
)

func TestRegisterHealthTool(t *testing.T) {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))

	RegisterHealthTool(mcpServer, &ToolDeps{Client: newMockClient("created", 0), Version: "test-version"})

	ctx := context.Background()
	result := mcpServer.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))

	resultBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}

	var response struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resultBytes, &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	found := false
	for _, tool := range response.Result.Tools {
		if tool.Name == "health" {
			found = true
			if tool.Description != "Returns server health status, version and backend reachability" {
				t.Errorf("unexpected description: %s", tool.Description)
			}
			break
		}
	}
	if !found {
		t.Error("health tool not found in tools/list response")
	}
}

func TestHealthTool_Execute(t *testing.T) {
	tests := []struct {
		name        string
		healthy     bool
		wantBackend string
	}{
		{name: "backend up", healthy: true, wantBackend: "ok"},
		{name: "backend down", healthy: false, wantBackend: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient("created", 0)
			client.healthy = tt.healthy
			s := newTestServer(t, client)

			text, isError := callTool(t, s, "health", nil)
			if isError {
				t.Fatalf("unexpected error result: %s", text)
			}

			var health healthResult
			if err := json.Unmarshal([]byte(text), &health); err != nil {
				t.Fatalf("failed to parse health result: %v", err)
			}
			if health.Status != "ok" {
				t.Errorf("expected status 'ok', got %q", health.Status)
			}
			if health.Version != "test-version" {
				t.Errorf("expected version 'test-version', got %q", health.Version)
			}
			if health.Backend != tt.wantBackend {
				t.Errorf("expected backend %q, got %q", tt.wantBackend, health.Backend)
			}
			if health.APIBase != "http://localhost:8000/api" {
				t.Errorf("unexpected api_base %q", health.APIBase)
			}
		})
	}
}

func TestRegisterTools_ListsAllTools(t *testing.T) {
	s := newTestServer(t, newMockClient("created", 0))
	result := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))

	resultBytes, _ := json.Marshal(result)
	var response struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resultBytes, &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	names := make(map[string]bool)
	for _, tool := range response.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"health", "get_assessment", "run_analysis", "list_objects", "get_relationship_graph", "get_report_summary"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}
