// Package apiclient has one typed function per assessment API operation.
// It performs no business logic: payloads are returned exactly as the server
// sent them, with optional fields left optional.
package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/transport"
)

// ObjectQuery filters and pages GET /assessments/{id}/objects.
type ObjectQuery struct {
	Type   string
	Search string
	Skip   int
	// Limit of 0 lets the server apply its default page size.
	Limit int
}

// RelationshipQuery filters GET /assessments/{id}/relationships.
type RelationshipQuery struct {
	Type  string
	Limit int
}

// ErrorQuery filters and pages GET /assessments/{id}/errors.
type ErrorQuery struct {
	Type  string
	Skip  int
	Limit int
}

// Client provides typed access to the assessment API resources.
type Client struct {
	transport *transport.Client
	logger    *zap.Logger
}

// New creates a resource client over the given transport.
func New(t *transport.Client, logger *zap.Logger) *Client {
	return &Client{
		transport: t,
		logger:    logger.Named("apiclient"),
	}
}

// BaseURL returns the REST base the client talks to.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL()
}

// Health reports whether the backend liveness check answers 200.
func (c *Client) Health(ctx context.Context) bool {
	return c.transport.Health(ctx)
}

// GetAssessment fetches GET /assessments/{id}.
func (c *Client) GetAssessment(ctx context.Context, assessmentID string) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.transport.Get(ctx, nil, &a, "assessments", assessmentID); err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", assessmentID, err)
	}
	return &a, nil
}

// ListFiles fetches GET /assessments/{id}/files.
func (c *Client) ListFiles(ctx context.Context, assessmentID string) ([]models.UploadedFile, error) {
	var files []models.UploadedFile
	if err := c.transport.Get(ctx, nil, &files, "assessments", assessmentID, "files"); err != nil {
		return nil, fmt.Errorf("list files for %s: %w", assessmentID, err)
	}
	return files, nil
}

// CreateAssessment posts POST /assessments.
func (c *Client) CreateAssessment(ctx context.Context, req models.CreateAssessmentRequest) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.transport.Post(ctx, req, &a, "assessments"); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}

	c.logger.Info("Created assessment",
		zap.String("assessment_id", a.ID.String()),
		zap.String("bi_tool", req.BITool))
	return &a, nil
}

// TriggerRun posts POST /assessments/{id}/run. The response body is optional.
func (c *Client) TriggerRun(ctx context.Context, assessmentID string) (*models.RunResponse, error) {
	var resp models.RunResponse
	if err := c.transport.Post(ctx, nil, &resp, "assessments", assessmentID, "run"); err != nil {
		return nil, fmt.Errorf("trigger run for %s: %w", assessmentID, err)
	}
	return &resp, nil
}

// GetStats fetches GET /assessments/{id}/stats.
func (c *Client) GetStats(ctx context.Context, assessmentID string) (*models.AssessmentStats, error) {
	var s models.AssessmentStats
	if err := c.transport.Get(ctx, nil, &s, "assessments", assessmentID, "stats"); err != nil {
		return nil, fmt.Errorf("get stats for %s: %w", assessmentID, err)
	}
	return &s, nil
}

// GetObjects fetches one page of GET /assessments/{id}/objects.
func (c *Client) GetObjects(ctx context.Context, assessmentID string, q ObjectQuery) ([]models.ExtractedObject, error) {
	query := pageQuery(q.Skip, q.Limit)
	setIfNotEmpty(query, "type", q.Type)
	setIfNotEmpty(query, "search", q.Search)

	var objects []models.ExtractedObject
	if err := c.transport.Get(ctx, query, &objects, "assessments", assessmentID, "objects"); err != nil {
		return nil, fmt.Errorf("get objects for %s: %w", assessmentID, err)
	}
	return objects, nil
}

// GetObject fetches GET /assessments/{id}/objects/{objectId}.
func (c *Client) GetObject(ctx context.Context, assessmentID, objectID string) (*models.ObjectDetail, error) {
	var o models.ObjectDetail
	if err := c.transport.Get(ctx, nil, &o, "assessments", assessmentID, "objects", objectID); err != nil {
		return nil, fmt.Errorf("get object %s: %w", objectID, err)
	}
	return &o, nil
}

// GetRelationships fetches GET /assessments/{id}/relationships.
func (c *Client) GetRelationships(ctx context.Context, assessmentID string, q RelationshipQuery) ([]models.ObjectRelationship, error) {
	query := url.Values{}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	setIfNotEmpty(query, "type", q.Type)

	var rels []models.ObjectRelationship
	if err := c.transport.Get(ctx, query, &rels, "assessments", assessmentID, "relationships"); err != nil {
		return nil, fmt.Errorf("get relationships for %s: %w", assessmentID, err)
	}
	return rels, nil
}

// GetErrors fetches one page of GET /assessments/{id}/errors.
func (c *Client) GetErrors(ctx context.Context, assessmentID string, q ErrorQuery) ([]models.ParseError, error) {
	query := pageQuery(q.Skip, q.Limit)
	setIfNotEmpty(query, "type", q.Type)

	var errs []models.ParseError
	if err := c.transport.Get(ctx, query, &errs, "assessments", assessmentID, "errors"); err != nil {
		return nil, fmt.Errorf("get parse errors for %s: %w", assessmentID, err)
	}
	return errs, nil
}

// GetReport fetches the composite GET /assessments/{id}/report.
func (c *Client) GetReport(ctx context.Context, assessmentID string) (*models.AssessmentReport, error) {
	var r models.AssessmentReport
	if err := c.transport.Get(ctx, nil, &r, "assessments", assessmentID, "report"); err != nil {
		return nil, fmt.Errorf("get report for %s: %w", assessmentID, err)
	}
	return &r, nil
}

func pageQuery(skip, limit int) url.Values {
	query := url.Values{}
	if skip > 0 || limit > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return query
}

func setIfNotEmpty(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
