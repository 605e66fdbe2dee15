// Package tools provides the MCP tools that expose assessment results.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/config"
	"github.com/ekaya-inc/assessment-console/pkg/services"
)

// AssessmentClient is the backend surface the tools call.
type AssessmentClient interface {
	services.AssessmentAPI
	services.ObjectAPI
	services.ReportAPI
	Health(ctx context.Context) bool
}

// ToolDeps contains dependencies for the assessment tools.
type ToolDeps struct {
	Client  AssessmentClient
	Loader  config.LoaderConfig
	Version string
	Logger  *zap.Logger
}

// RegisterTools registers every assessment tool on s.
func RegisterTools(s *server.MCPServer, deps *ToolDeps) {
	RegisterHealthTool(s, deps)
	registerGetAssessmentTool(s, deps)
	registerRunAnalysisTool(s, deps)
	registerListObjectsTool(s, deps)
	registerRelationshipGraphTool(s, deps)
	registerReportSummaryTool(s, deps)
}
