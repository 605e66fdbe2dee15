package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/retry"
	"github.com/ekaya-inc/assessment-console/pkg/services"
)

const defaultRunWaitTimeout = 5 * time.Minute

type assessmentResult struct {
	Assessment       *models.Assessment      `json:"assessment"`
	Files            []models.UploadedFile   `json:"files"`
	Stats            *models.AssessmentStats `json:"stats,omitempty"`
	CanRunAnalysis   bool                    `json:"can_run_analysis"`
	ResultsAvailable bool                    `json:"results_available"`
}

type runResult struct {
	AssessmentID string                  `json:"assessment_id"`
	Triggered    bool                    `json:"triggered"`
	Waited       bool                    `json:"waited"`
	Status       models.AssessmentStatus `json:"status"`
	Message      string                  `json:"message"`
}

func newLoader(deps *ToolDeps, assessmentID string) *services.AssessmentLoader {
	return services.NewAssessmentLoader(deps.Client, assessmentID, deps.Loader.RunRefetchDelay, deps.Logger)
}

func registerGetAssessmentTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_assessment",
		mcp.WithDescription(
			"Get an assessment with its uploaded files. Stats are included once the analysis has completed. "+
				"can_run_analysis and results_available say which follow-up tools make sense.",
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

		loader := newLoader(deps, id)
		defer loader.Close()

		if err := loader.Load(ctx); err != nil {
			if res := NewAPIErrorResult(err, deps.Client.BaseURL()); res != nil {
				return res, nil
			}
			return nil, fmt.Errorf("failed to load assessment: %w", err)
		}

		snap := loader.Snapshot()
		return jsonResult(assessmentResult{
			Assessment:       snap.Assessment,
			Files:            snap.Files,
			Stats:            snap.Stats,
			CanRunAnalysis:   services.CanRunAnalysis(snap.Assessment, len(snap.Files)),
			ResultsAvailable: services.ResultsAvailable(snap.Assessment),
		})
	})
}

func registerRunAnalysisTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"run_analysis",
		mcp.WithDescription(
			"Start the analysis run of an assessment. The assessment needs at least one uploaded file and must not already be processing. "+
				"With wait=true the tool polls until the run completes or fails, up to timeout_seconds.",
		),
		mcp.WithString(
			"assessment_id",
			mcp.Required(),
			mcp.Description("Assessment identifier"),
		),
		mcp.WithBoolean(
			"wait",
			mcp.Description("Optional - poll until the run reaches completed or failed (default false)"),
		),
		mcp.WithNumber(
			"timeout_seconds",
			mcp.Description("Optional - how long to wait when wait=true (default 300)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requireAssessmentID(req)
		if errResult != nil {
			return errResult, nil
		}
		wait, _ := getOptionalBool(req, "wait")
		timeout := defaultRunWaitTimeout
		if secs := getOptionalInt(req, "timeout_seconds", 0); secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}

		loader := newLoader(deps, id)
		defer loader.Close()

		if err := loader.Load(ctx); err != nil {
			if res := NewAPIErrorResult(err, deps.Client.BaseURL()); res != nil {
				return res, nil
			}
			return nil, fmt.Errorf("failed to load assessment: %w", err)
		}

		snap := loader.Snapshot()
		if !loader.CanRunAnalysis() {
			return NewErrorResultWithDetails("run_not_allowed",
				"analysis cannot start: the assessment is processing or has no uploaded files",
				map[string]any{"status": snap.Assessment.Status, "files": len(snap.Files)}), nil
		}

		if !loader.RunAnalysis(ctx) {
			return NewErrorResult("run_failed", "the backend rejected the run request"), nil
		}

		if !wait {
			return jsonResult(runResult{
				AssessmentID: id,
				Triggered:    true,
				Status:       models.AssessmentStatusProcessing,
				Message:      "analysis started; call get_assessment to follow progress",
			})
		}

		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		poller := services.NewPoller(deps.Client, &retry.Config{
			InitialDelay: deps.Loader.PollInterval,
			MaxDelay:     deps.Loader.PollMaxInterval,
			Multiplier:   1.5,
			JitterFactor: 0.1,
		}, deps.Logger)

		final, err := poller.WaitForTerminal(waitCtx, id, nil, services.SinceRun(snap.Assessment))
		if errors.Is(err, context.DeadlineExceeded) {
			return NewErrorResultWithDetails("timeout",
				"the run did not finish in time; it keeps running on the backend",
				map[string]any{"timeout_seconds": int(timeout.Seconds())}), nil
		}
		if err != nil {
			if res := NewAPIErrorResult(err, deps.Client.BaseURL()); res != nil {
				return res, nil
			}
			return nil, fmt.Errorf("failed waiting for run: %w", err)
		}

		deps.Logger.Info("Analysis run finished",
			zap.String("assessment_id", id),
			zap.String("status", string(final.Status)))

		return jsonResult(runResult{
			AssessmentID: id,
			Triggered:    true,
			Waited:       true,
			Status:       final.Status,
			Message:      "analysis " + string(final.Status),
		})
	})
}
