package services

import "github.com/ekaya-inc/assessment-console/pkg/models"

// CanRunAnalysis reports whether triggering a run makes sense: the assessment
// exists, is not already processing, and has at least one file.
// The server decides; this only gates the affordance.
func CanRunAnalysis(a *models.Assessment, fileCount int) bool {
	if a == nil || fileCount == 0 {
		return false
	}
	return a.Status != models.AssessmentStatusProcessing
}

// ResultsAvailable reports whether result views (objects, graph, report) apply.
func ResultsAvailable(a *models.Assessment) bool {
	return a != nil && a.Status == models.AssessmentStatusCompleted
}
