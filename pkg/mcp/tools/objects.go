package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/services"
)

const (
	defaultObjectLimit = 100
	maxObjectLimit     = 1000
	defaultEdgeLimit   = 500
)

type objectSummary struct {
	ID         models.ID `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Path       *string   `json:"path,omitempty"`
	Complexity *string   `json:"complexity,omitempty"`
	Score      *float64  `json:"score,omitempty"`
}

type typeCount struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type listObjectsResult struct {
	Total    int                      `json:"total"`
	Offset   int                      `json:"offset"`
	Returned int                      `json:"returned"`
	ByType   []typeCount              `json:"by_type"`
	Buckets  models.ComplexityBuckets `json:"complexity"`
	Objects  []objectSummary          `json:"objects"`
}

type edge struct {
	Type       string    `json:"type"`
	SourceID   models.ID `json:"source_id"`
	SourceName string    `json:"source"`
	TargetID   models.ID `json:"target_id"`
	TargetName string    `json:"target"`
}

type graphResult struct {
	Objects            int    `json:"objects"`
	TotalRelationships int    `json:"total_relationships"`
	Returned           int    `json:"returned"`
	Truncated          bool   `json:"truncated"`
	Edges              []edge `json:"edges"`
}

func newGraphLoader(deps *ToolDeps) *services.ObjectGraphLoader {
	return services.NewObjectGraphLoader(deps.Client, deps.Loader.ObjectPageSize, deps.Loader.RelationshipLimit, deps.Logger)
}

func byTypeCounts(s services.InventorySummary) []typeCount {
	out := make([]typeCount, 0, len(s.ByType))
	for _, tc := range s.ByType {
		out = append(out, typeCount{Type: tc.Type, Label: tc.Label, Count: tc.Count})
	}
	return out
}

func registerListObjectsTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"list_objects",
		mcp.WithDescription(
			"List objects extracted from an assessment's BI exports (reports, dashboards, measures, calculated fields, ...). "+
				"Returns per-type counts, complexity buckets and one window of objects. "+
				"Example: list_objects(assessment_id='a1', type='calculated_field', search='profit')",
		),
		mcp.WithString(
			"assessment_id",
			mcp.Required(),
			mcp.Description("Assessment identifier"),
		),
		mcp.WithString(
			"type",
			mcp.Description("Optional - object_type to filter on (e.g., 'dashboard', 'measure')"),
		),
		mcp.WithString(
			"search",
			mcp.Description("Optional - server-side name search"),
		),
		mcp.WithNumber(
			"offset",
			mcp.Description("Optional - index of the first object to return (default 0)"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Optional - number of objects to return (default 100, max 1000)"),
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

		offset := getOptionalInt(req, "offset", 0)
		limit := getOptionalInt(req, "limit", defaultObjectLimit)
		if offset < 0 || limit <= 0 {
			return NewErrorResult("invalid_parameters", "offset must be >= 0 and limit must be > 0"), nil
		}
		limit = min(limit, maxObjectLimit)

		objects, err := newGraphLoader(deps).LoadObjects(ctx, id, services.ObjectFilter{
			Type:   getOptionalString(req, "type"),
			Search: getOptionalString(req, "search"),
		})
		if err != nil {
			if res := NewAPIErrorResult(err, deps.Client.BaseURL()); res != nil {
				return res, nil
			}
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		summary := services.Summarize(&services.ObjectGraph{Objects: objects})
		window := objects[min(offset, len(objects)):min(offset+limit, len(objects))]

		result := listObjectsResult{
			Total:    len(objects),
			Offset:   offset,
			Returned: len(window),
			ByType:   byTypeCounts(summary),
			Buckets:  summary.Complexity,
			Objects:  make([]objectSummary, 0, len(window)),
		}
		for _, o := range window {
			result.Objects = append(result.Objects, objectSummary{
				ID:         o.ID,
				Type:       o.ObjectType,
				Name:       o.Name,
				Path:       o.Path,
				Complexity: o.ComplexityLevel,
				Score:      o.ComplexityScore,
			})
		}
		return jsonResult(result)
	})
}

func registerRelationshipGraphTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_relationship_graph",
		mcp.WithDescription(
			"Get the dependency edges between extracted objects, with both endpoint names resolved. "+
				"Endpoints missing from the object set are named 'Unknown'. "+
				"If relationships cannot be fetched the graph is returned without edges.",
		),
		mcp.WithString(
			"assessment_id",
			mcp.Required(),
			mcp.Description("Assessment identifier"),
		),
		mcp.WithString(
			"relationship_type",
			mcp.Description("Optional - relationship type to filter on"),
		),
		mcp.WithNumber(
			"max_edges",
			mcp.Description("Optional - maximum number of edges to return (default 500)"),
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
		maxEdges := getOptionalInt(req, "max_edges", defaultEdgeLimit)
		if maxEdges <= 0 {
			return NewErrorResult("invalid_parameters", "max_edges must be > 0"), nil
		}

		graph, err := newGraphLoader(deps).Load(ctx, id, services.ObjectFilter{
			RelationshipType: getOptionalString(req, "relationship_type"),
		})
		if err != nil {
			if res := NewAPIErrorResult(err, deps.Client.BaseURL()); res != nil {
				return res, nil
			}
			return nil, fmt.Errorf("failed to load object graph: %w", err)
		}

		resolved := services.NewObjectIndex(graph.Objects).ResolveEdges(graph.Relationships)
		shown := resolved[:min(maxEdges, len(resolved))]

		result := graphResult{
			Objects:            len(graph.Objects),
			TotalRelationships: len(resolved),
			Returned:           len(shown),
			Truncated:          len(shown) < len(resolved),
			Edges:              make([]edge, 0, len(shown)),
		}
		for _, e := range shown {
			result.Edges = append(result.Edges, edge{
				Type:       e.RelationshipType,
				SourceID:   e.SourceObjectID,
				SourceName: e.SourceName,
				TargetID:   e.TargetObjectID,
				TargetName: e.TargetName,
			})
		}
		return jsonResult(result)
	})
}
