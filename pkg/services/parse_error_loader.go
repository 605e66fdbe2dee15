package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apiclient"
	"github.com/ekaya-inc/assessment-console/pkg/logging"
	"github.com/ekaya-inc/assessment-console/pkg/models"
)

// DefaultErrorPageSize is the page size used to walk parse errors.
const DefaultErrorPageSize = 500

// ParseErrorLoader collects every parse error of an assessment using the
// same short-page contract as objects.
type ParseErrorLoader struct {
	api      ParseErrorAPI
	pageSize int
	logger   *zap.Logger
}

// NewParseErrorLoader creates a loader. A non-positive pageSize uses DefaultErrorPageSize.
func NewParseErrorLoader(api ParseErrorAPI, pageSize int, logger *zap.Logger) *ParseErrorLoader {
	if pageSize <= 0 {
		pageSize = DefaultErrorPageSize
	}
	return &ParseErrorLoader{
		api:      api,
		pageSize: pageSize,
		logger:   logger.Named("parse-error-loader"),
	}
}

// Load returns all parse errors, optionally restricted to errorType.
func (l *ParseErrorLoader) Load(ctx context.Context, assessmentID, errorType string) ([]models.ParseError, error) {
	parseErrors, err := collectPages(ctx, l.pageSize, func(ctx context.Context, skip, limit int) ([]models.ParseError, error) {
		return l.api.GetErrors(ctx, assessmentID, apiclient.ErrorQuery{
			Type:  errorType,
			Skip:  skip,
			Limit: limit,
		})
	})
	if err != nil {
		l.logger.Error("Failed to load parse errors",
			zap.String("assessment_id", assessmentID),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("load parse errors for %s: %w", assessmentID, err)
	}
	return parseErrors, nil
}
