package models

import (
	"encoding/json"

	"github.com/ekaya-inc/assessment-console/pkg/jsonutil"
)

// Known object_type tags. The set is open; unknown tags pass through.
const (
	ObjectTypeReport          = "report"
	ObjectTypeDashboard       = "dashboard"
	ObjectTypeTable           = "table"
	ObjectTypeCalculatedField = "calculated_field"
	ObjectTypeFilter          = "filter"
	ObjectTypeParameter       = "parameter"
	ObjectTypeMeasure         = "measure"
	ObjectTypeDimension       = "dimension"
	ObjectTypeQuery           = "query"
	ObjectTypeDataModule      = "data_module"
	ObjectTypePackage         = "package"
	ObjectTypeDataSource      = "data_source"
	ObjectTypeVisualization   = "visualization"
)

// Complexity buckets assigned by the server.
const (
	ComplexityLow      = "low"
	ComplexityMedium   = "medium"
	ComplexityHigh     = "high"
	ComplexityCritical = "critical"
)

// ExtractedObject is a named entity parsed out of a BI export.
// Complexity fields stay nil until the server has scored the assessment.
type ExtractedObject struct {
	ID              ID             `json:"id"`
	AssessmentID    ID             `json:"assessment_id"`
	FileID          *ID            `json:"file_id,omitempty"`
	ObjectType      string         `json:"object_type"`
	Name            string         `json:"name"`
	Path            *string        `json:"path,omitempty"`
	Properties      map[string]any `json:"properties,omitempty"`
	ComplexityScore *float64       `json:"complexity_score,omitempty"`
	ComplexityLevel *string        `json:"complexity_level,omitempty"`
	CreatedAt       *Timestamp     `json:"created_at,omitempty"`
}

// Property renders one entry of the open-ended properties map as text.
// Missing keys and nulls render as "".
func (o *ExtractedObject) Property(key string) string {
	if o.Properties == nil {
		return ""
	}
	return jsonutil.FlexibleAnyValue(o.Properties[key])
}

// ObjectDetail is the payload of GET /objects/{objectId}.
type ObjectDetail struct {
	ExtractedObject
	OutgoingRelationships []ObjectRelationship `json:"outgoing_relationships,omitempty"`
	IncomingRelationships []ObjectRelationship `json:"incoming_relationships,omitempty"`
}

// ObjectRelationship is a directed dependency edge between two extracted objects.
type ObjectRelationship struct {
	ID               ID             `json:"id"`
	SourceObjectID   ID             `json:"source_object_id"`
	TargetObjectID   ID             `json:"target_object_id"`
	RelationshipType string         `json:"relationship_type"`
	Details          map[string]any `json:"details,omitempty"`
}

// ParseError records one extraction problem in an uploaded file.
type ParseError struct {
	ID        ID              `json:"id"`
	FileID    *ID             `json:"file_id,omitempty"`
	ErrorType string          `json:"error_type"`
	Message   string          `json:"message"`
	Location  *string         `json:"location,omitempty"`
	Context   json.RawMessage `json:"context,omitempty"`
}
