package services

import (
	"context"

	"github.com/ekaya-inc/assessment-console/pkg/apiclient"
	"github.com/ekaya-inc/assessment-console/pkg/models"
)

// AssessmentAPI is the slice of the resource client the assessment loader needs.
type AssessmentAPI interface {
	GetAssessment(ctx context.Context, assessmentID string) (*models.Assessment, error)
	ListFiles(ctx context.Context, assessmentID string) ([]models.UploadedFile, error)
	GetStats(ctx context.Context, assessmentID string) (*models.AssessmentStats, error)
	TriggerRun(ctx context.Context, assessmentID string) (*models.RunResponse, error)
}

// AssessmentGetter fetches a single assessment.
type AssessmentGetter interface {
	GetAssessment(ctx context.Context, assessmentID string) (*models.Assessment, error)
}

// ObjectAPI pages objects and fetches relationships.
type ObjectAPI interface {
	GetObjects(ctx context.Context, assessmentID string, q apiclient.ObjectQuery) ([]models.ExtractedObject, error)
	GetRelationships(ctx context.Context, assessmentID string, q apiclient.RelationshipQuery) ([]models.ObjectRelationship, error)
}

// ParseErrorAPI pages parse errors.
type ParseErrorAPI interface {
	GetErrors(ctx context.Context, assessmentID string, q apiclient.ErrorQuery) ([]models.ParseError, error)
}

// ReportAPI fetches the composite report. BaseURL names the API in
// user-facing "unreachable" messages.
type ReportAPI interface {
	GetReport(ctx context.Context, assessmentID string) (*models.AssessmentReport, error)
	BaseURL() string
}

// Ensure the resource client satisfies every loader dependency at compile time.
var (
	_ AssessmentAPI = (*apiclient.Client)(nil)
	_ ObjectAPI     = (*apiclient.Client)(nil)
	_ ParseErrorAPI = (*apiclient.Client)(nil)
	_ ReportAPI     = (*apiclient.Client)(nil)
)
