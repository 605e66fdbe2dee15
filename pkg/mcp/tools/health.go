package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type healthResult struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Backend string `json:"backend"`
	APIBase string `json:"api_base"`
}

// RegisterHealthTool adds a health check tool to the MCP server.
// The tool reports the console version and whether the backend answers its liveness check.
func RegisterHealthTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status, version and backend reachability"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		backend := "unavailable"
		if deps.Client.Health(ctx) {
			backend = "ok"
		}
		return jsonResult(healthResult{
			Status:  "ok",
			Version: deps.Version,
			Backend: backend,
			APIBase: deps.Client.BaseURL(),
		})
	})
}
