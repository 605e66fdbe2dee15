package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ekaya-inc/assessment-console/pkg/apiclient"
	"github.com/ekaya-inc/assessment-console/pkg/models"
)

// mockAssessmentAPI implements AssessmentAPI with per-call counters.
// When block is set, GetAssessment waits on it or on ctx.
type mockAssessmentAPI struct {
	mu         sync.Mutex
	assessment *models.Assessment
	files      []models.UploadedFile
	stats      *models.AssessmentStats

	assessmentErr error
	filesErr      error
	statsErr      error
	runErr        error

	block chan struct{}

	getAssessmentCalls atomic.Int32
	listFilesCalls     atomic.Int32
	getStatsCalls      atomic.Int32
	triggerRunCalls    atomic.Int32
}

func newMockAssessmentAPI(status models.AssessmentStatus, fileCount int) *mockAssessmentAPI {
	files := make([]models.UploadedFile, 0, fileCount)
	for i := range fileCount {
		files = append(files, models.UploadedFile{
			ID:          models.ID(fmt.Sprintf("f%d", i+1)),
			Filename:    fmt.Sprintf("export-%d.zip", i+1),
			FileType:    "zip",
			ParseStatus: models.ParseStatusCompleted,
		})
	}
	return &mockAssessmentAPI{
		assessment: &models.Assessment{ID: "a1", Name: "Q3 Cognos export", BITool: "cognos", Status: status, FilesCount: fileCount},
		files:      files,
		stats:      &models.AssessmentStats{TotalObjects: 1500, TotalRelationships: 900, TotalFiles: fileCount},
	}
}

func (m *mockAssessmentAPI) setStatus(status models.AssessmentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := *m.assessment
	a.Status = status
	m.assessment = &a
}

func (m *mockAssessmentAPI) setFilesErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filesErr = err
}

func (m *mockAssessmentAPI) GetAssessment(ctx context.Context, _ string) (*models.Assessment, error) {
	m.getAssessmentCalls.Add(1)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.assessmentErr != nil {
		return nil, m.assessmentErr
	}
	a := *m.assessment
	return &a, nil
}

func (m *mockAssessmentAPI) ListFiles(_ context.Context, _ string) ([]models.UploadedFile, error) {
	m.listFilesCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filesErr != nil {
		return nil, m.filesErr
	}
	return append([]models.UploadedFile(nil), m.files...), nil
}

func (m *mockAssessmentAPI) GetStats(_ context.Context, _ string) (*models.AssessmentStats, error) {
	m.getStatsCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	s := *m.stats
	return &s, nil
}

func (m *mockAssessmentAPI) TriggerRun(_ context.Context, _ string) (*models.RunResponse, error) {
	m.triggerRunCalls.Add(1)
	if m.runErr != nil {
		return nil, m.runErr
	}
	return &models.RunResponse{Status: "processing", Message: "Analysis started"}, nil
}

// mockObjectAPI serves total objects in pages and records each query.
type mockObjectAPI struct {
	total         int
	objectsErr    error
	failAtSkip    int
	relationships []models.ObjectRelationship
	relErr        error

	mu          sync.Mutex
	objectCalls []apiclient.ObjectQuery
	relCalls    []apiclient.RelationshipQuery
}

func (m *mockObjectAPI) GetObjects(_ context.Context, _ string, q apiclient.ObjectQuery) ([]models.ExtractedObject, error) {
	m.mu.Lock()
	m.objectCalls = append(m.objectCalls, q)
	m.mu.Unlock()

	if m.objectsErr != nil && q.Skip >= m.failAtSkip {
		return nil, m.objectsErr
	}

	end := min(q.Skip+q.Limit, m.total)
	page := make([]models.ExtractedObject, 0, max(end-q.Skip, 0))
	for i := q.Skip; i < end; i++ {
		page = append(page, models.ExtractedObject{
			ID:         models.ID(fmt.Sprintf("obj-%d", i)),
			ObjectType: models.ObjectTypeMeasure,
			Name:       fmt.Sprintf("Measure %d", i),
		})
	}
	return page, nil
}

func (m *mockObjectAPI) GetRelationships(_ context.Context, _ string, q apiclient.RelationshipQuery) ([]models.ObjectRelationship, error) {
	m.mu.Lock()
	m.relCalls = append(m.relCalls, q)
	m.mu.Unlock()

	if m.relErr != nil {
		return nil, m.relErr
	}
	return m.relationships, nil
}

func (m *mockObjectAPI) objectQueries() []apiclient.ObjectQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]apiclient.ObjectQuery(nil), m.objectCalls...)
}

// mockParseErrorAPI serves total parse errors in pages.
type mockParseErrorAPI struct {
	total int
	calls []apiclient.ErrorQuery
}

func (m *mockParseErrorAPI) GetErrors(_ context.Context, _ string, q apiclient.ErrorQuery) ([]models.ParseError, error) {
	m.calls = append(m.calls, q)
	end := min(q.Skip+q.Limit, m.total)
	var page []models.ParseError
	for i := q.Skip; i < end; i++ {
		page = append(page, models.ParseError{
			ID:        models.ID(fmt.Sprintf("err-%d", i)),
			ErrorType: "xml_syntax",
			Message:   "unexpected end of element",
		})
	}
	return page, nil
}

// mockReportAPI returns report or err. When block is set, GetReport waits
// on it or on ctx.
type mockReportAPI struct {
	report *models.AssessmentReport
	err    error
	base   string
	block  chan struct{}
	calls  atomic.Int32
}

func (m *mockReportAPI) GetReport(ctx context.Context, _ string) (*models.AssessmentReport, error) {
	m.calls.Add(1)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockReportAPI) BaseURL() string {
	return m.base
}

// mockStatusSequence returns one scripted result per GetAssessment call and
// repeats the last one after the script runs out.
type mockStatusSequence struct {
	steps []statusStep
	calls atomic.Int32
}

type statusStep struct {
	status    models.AssessmentStatus
	updatedAt *models.Timestamp
	err       error
}

func (m *mockStatusSequence) GetAssessment(_ context.Context, assessmentID string) (*models.Assessment, error) {
	n := int(m.calls.Add(1)) - 1
	step := m.steps[min(n, len(m.steps)-1)]
	if step.err != nil {
		return nil, step.err
	}
	return &models.Assessment{ID: models.ID(assessmentID), Status: step.status, UpdatedAt: step.updatedAt}, nil
}
