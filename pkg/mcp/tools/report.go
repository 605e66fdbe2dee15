package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/services"
)

type sectionSummary struct {
	Key        string                    `json:"key"`
	TotalCount int                       `json:"total_count"`
	Complexity *models.ComplexityBuckets `json:"complexity,omitempty"`
}

type reportSummaryResult struct {
	AssessmentID       models.ID                 `json:"assessment_id"`
	Version            string                    `json:"version,omitempty"`
	GeneratedAt        *models.Timestamp         `json:"generated_at,omitempty"`
	Sections           []sectionSummary          `json:"sections"`
	ComplexityAnalysis *models.ComplexityBuckets `json:"complexity_analysis,omitempty"`
	KeyFindings        json.RawMessage           `json:"key_findings,omitempty"`
	Challenges         json.RawMessage           `json:"challenges,omitempty"`
}

func registerReportSummaryTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_report_summary",
		mcp.WithDescription(
			"Get the migration assessment report: per-category totals and complexity buckets, "+
				"the overall complexity analysis, key findings and challenges. Per-item detail is omitted.",
		),
		mcp.WithString(
			"assessment_id",
			mcp.Required(),
			mcp.Description("Assessment identifier"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requireAssessmentID(req)
		if errResult != nil {
			return errResult, nil
		}

		loader := services.NewReportLoader(deps.Client, id, deps.Logger)
		defer loader.Close()

		if err := loader.Load(ctx); err != nil {
			var reportErr *services.ReportError
			if errors.As(err, &reportErr) {
				return NewErrorResult(string(reportErr.Category), reportErr.Message), nil
			}
			return nil, err
		}

		report := loader.Report()
		if report == nil {
			return NewErrorResult(string(services.CategoryNotFound), services.MsgReportNotFound), nil
		}

		result := reportSummaryResult{
			AssessmentID:       report.AssessmentID,
			Version:            report.Version,
			GeneratedAt:        report.GeneratedAt,
			ComplexityAnalysis: report.ComplexityAnalysis,
			KeyFindings:        report.KeyFindings,
			Challenges:         report.Challenges,
			Sections:           []sectionSummary{},
		}
		for _, sec := range report.Sections() {
			result.Sections = append(result.Sections, sectionSummary{
				Key:        sec.Key,
				TotalCount: sec.Section.TotalCount,
				Complexity: sec.Section.Complexity,
			})
		}
		return jsonResult(result)
	})
}
