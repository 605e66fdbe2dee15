package models

// AssessmentStatus is the server-owned lifecycle state of an assessment.
type AssessmentStatus string

// Assessment lifecycle: created -> uploading -> processing -> completed | failed.
const (
	AssessmentStatusCreated    AssessmentStatus = "created"
	AssessmentStatusUploading  AssessmentStatus = "uploading"
	AssessmentStatusProcessing AssessmentStatus = "processing"
	AssessmentStatusCompleted  AssessmentStatus = "completed"
	AssessmentStatusFailed     AssessmentStatus = "failed"
)

// IsTerminal reports whether no further server-side transition is expected.
func (s AssessmentStatus) IsTerminal() bool {
	return s == AssessmentStatusCompleted || s == AssessmentStatusFailed
}

// Assessment is a migration-analysis project scoped to one set of uploaded exports.
type Assessment struct {
	ID                 ID               `json:"id"`
	Name               string           `json:"name"`
	BITool             string           `json:"bi_tool"`
	Status             AssessmentStatus `json:"status"`
	UserID             *ID              `json:"user_id,omitempty"`
	Description        *string          `json:"description,omitempty"`
	CreatedAt          Timestamp        `json:"created_at"`
	UpdatedAt          *Timestamp       `json:"updated_at,omitempty"`
	FilesCount         int              `json:"files_count"`
	ObjectsCount       int              `json:"objects_count"`
	RelationshipsCount int              `json:"relationships_count"`
}

// CreateAssessmentRequest is the body of POST /assessments.
type CreateAssessmentRequest struct {
	Name   string `json:"name"`
	BITool string `json:"bi_tool"`
}

// ParseStatus is the per-file extraction state, independent of the assessment status.
type ParseStatus string

// File parse statuses.
const (
	ParseStatusPending   ParseStatus = "pending"
	ParseStatusParsing   ParseStatus = "parsing"
	ParseStatusCompleted ParseStatus = "completed"
	ParseStatusPartial   ParseStatus = "partial"
	ParseStatusFailed    ParseStatus = "failed"
)

// UploadedFile is an exported BI artifact attached to an assessment.
type UploadedFile struct {
	ID          ID          `json:"id"`
	Filename    string      `json:"filename"`
	FilePath    string      `json:"file_path"`
	FileType    string      `json:"file_type"`
	FileSize    int64       `json:"file_size"`
	ParseStatus ParseStatus `json:"parse_status"`
	UploadedAt  *Timestamp  `json:"uploaded_at,omitempty"`
}

// RunResponse is whatever the server acknowledges a run trigger with.
// Both fields are optional; callers must not depend on them.
type RunResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// AssessmentStats are server-computed aggregate counters.
type AssessmentStats struct {
	TotalObjects       int            `json:"total_objects"`
	TotalRelationships int            `json:"total_relationships"`
	TotalFiles         int            `json:"total_files"`
	TotalErrors        int            `json:"total_errors"`
	ObjectsByType      map[string]int `json:"objects_by_type"`
	ParseSuccessRate   float64        `json:"parse_success_rate"`
}
