package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apiclient"
	"github.com/ekaya-inc/assessment-console/pkg/logging"
	"github.com/ekaya-inc/assessment-console/pkg/models"
)

const (
	// DefaultObjectPageSize is the page size used to walk the full object set.
	DefaultObjectPageSize = 1000
	// DefaultRelationshipLimit bounds the single relationships request.
	DefaultRelationshipLimit = 5000
)

// ObjectFilter narrows an object graph load. Empty fields match everything.
type ObjectFilter struct {
	Type             string
	Search           string
	RelationshipType string
}

// ObjectGraph is the complete object set and a bounded relationship set
// fetched in one invocation. Relationships is never nil.
type ObjectGraph struct {
	Objects       []models.ExtractedObject
	Relationships []models.ObjectRelationship
}

// ObjectGraphLoader pages through every object of an assessment, one page at
// a time, then fetches relationships with a single bounded request.
type ObjectGraphLoader struct {
	api               ObjectAPI
	pageSize          int
	relationshipLimit int
	logger            *zap.Logger
}

// NewObjectGraphLoader creates a loader. Non-positive sizes fall back to the defaults.
func NewObjectGraphLoader(api ObjectAPI, pageSize, relationshipLimit int, logger *zap.Logger) *ObjectGraphLoader {
	if pageSize <= 0 {
		pageSize = DefaultObjectPageSize
	}
	if relationshipLimit <= 0 {
		relationshipLimit = DefaultRelationshipLimit
	}
	return &ObjectGraphLoader{
		api:               api,
		pageSize:          pageSize,
		relationshipLimit: relationshipLimit,
		logger:            logger.Named("object-graph-loader"),
	}
}

// LoadObjects returns every object matching filter, in server order.
func (l *ObjectGraphLoader) LoadObjects(ctx context.Context, assessmentID string, filter ObjectFilter) ([]models.ExtractedObject, error) {
	objects, err := collectPages(ctx, l.pageSize, func(ctx context.Context, skip, limit int) ([]models.ExtractedObject, error) {
		return l.api.GetObjects(ctx, assessmentID, apiclient.ObjectQuery{
			Type:   filter.Type,
			Search: filter.Search,
			Skip:   skip,
			Limit:  limit,
		})
	})
	if err != nil {
		l.logger.Error("Failed to load objects",
			zap.String("assessment_id", assessmentID),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("load objects for %s: %w", assessmentID, err)
	}
	return objects, nil
}

// Load returns the object graph. An object failure fails the load; a
// relationship failure is logged and yields an empty edge set.
func (l *ObjectGraphLoader) Load(ctx context.Context, assessmentID string, filter ObjectFilter) (*ObjectGraph, error) {
	objects, err := l.LoadObjects(ctx, assessmentID, filter)
	if err != nil {
		return nil, err
	}

	relationships, err := l.api.GetRelationships(ctx, assessmentID, apiclient.RelationshipQuery{
		Type:  filter.RelationshipType,
		Limit: l.relationshipLimit,
	})
	if err != nil {
		l.logger.Warn("Failed to load relationships; continuing without edges",
			zap.String("assessment_id", assessmentID),
			zap.String("error", logging.SanitizeError(err)))
		relationships = nil
	}
	if relationships == nil {
		relationships = []models.ObjectRelationship{}
	}

	l.logger.Debug("Object graph loaded",
		zap.String("assessment_id", assessmentID),
		zap.Int("objects", len(objects)),
		zap.Int("relationships", len(relationships)))

	return &ObjectGraph{Objects: objects, Relationships: relationships}, nil
}
