package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
	"github.com/ekaya-inc/assessment-console/pkg/logging"
	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/transport"
)

// User-facing report failure messages.
const (
	MsgNotSignedIn    = "You are not signed in. Please log in and try again."
	MsgReportNotFound = "Report or assessment not found."
	MsgReportFailed   = "Failed to load report."
)

// ErrorCategory is the closed set of report failure kinds.
type ErrorCategory string

const (
	CategoryUnreachable  ErrorCategory = "unreachable"
	CategoryUnauthorized ErrorCategory = "unauthorized"
	CategoryNotFound     ErrorCategory = "not_found"
	CategoryOther        ErrorCategory = "other"
)

// ReportError is a categorized report failure carrying a display message.
type ReportError struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *ReportError) Error() string {
	return e.Message
}

// Unwrap returns the underlying transport error.
func (e *ReportError) Unwrap() error {
	return e.Err
}

// unreachableMessage names the API base so the user knows what to start.
func unreachableMessage(apiBase string) string {
	return fmt.Sprintf("Cannot reach the assessment API at %s. Make sure the backend is running and try again.", apiBase)
}

// ClassifyReportError maps err to a category, checking in order: no response
// received, 401, 404, anything else. Cancellation is not unreachability.
// Other HTTP failures show the server message, else the status line.
func ClassifyReportError(err error, apiBase string) *ReportError {
	if err == nil {
		return nil
	}

	var netErr *transport.NetworkError
	if errors.As(err, &netErr) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return &ReportError{Category: CategoryUnreachable, Message: unreachableMessage(apiBase), Err: err}
	}

	var httpErr *transport.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized:
			return &ReportError{Category: CategoryUnauthorized, Message: MsgNotSignedIn, Err: err}
		case http.StatusNotFound:
			return &ReportError{Category: CategoryNotFound, Message: MsgReportNotFound, Err: err}
		}
		if httpErr.Message != "" {
			return &ReportError{Category: CategoryOther, Message: httpErr.Message, Err: err}
		}
		if text := http.StatusText(httpErr.StatusCode); text != "" {
			return &ReportError{Category: CategoryOther, Message: fmt.Sprintf("HTTP %d %s", httpErr.StatusCode, text), Err: err}
		}
	}

	return &ReportError{Category: CategoryOther, Message: MsgReportFailed, Err: err}
}

// ReportLoader holds the composite report of one assessment. A failed fetch
// keeps the previous report and records the categorized error beside it.
// Close ends in-flight fetches and discards their results.
type ReportLoader struct {
	api          ReportAPI
	assessmentID string
	logger       *zap.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	report  *models.AssessmentReport
	lastErr *ReportError
	loading int
	closed  bool
}

// NewReportLoader creates a report loader for assessmentID.
func NewReportLoader(api ReportAPI, assessmentID string, logger *zap.Logger) *ReportLoader {
	lifetime, cancel := context.WithCancel(context.Background())
	return &ReportLoader{
		api:          api,
		assessmentID: assessmentID,
		logger:       logger.Named("report-loader"),
		lifetime:     lifetime,
		cancel:       cancel,
	}
}

// Load fetches the report. The returned error, if any, is a *ReportError,
// except apperrors.ErrLoaderClosed once the loader is closed.
func (l *ReportLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return apperrors.ErrLoaderClosed
	}
	l.loading++
	l.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.lifetime, cancel)
	report, err := l.api.GetReport(ctx, l.assessmentID)
	stop()
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading--

	if l.closed {
		return apperrors.ErrLoaderClosed
	}
	if err != nil {
		reportErr := ClassifyReportError(err, l.api.BaseURL())
		l.lastErr = reportErr
		l.logger.Error("Failed to load report",
			zap.String("assessment_id", l.assessmentID),
			zap.String("category", string(reportErr.Category)),
			zap.String("error", logging.SanitizeError(err)))
		return reportErr
	}

	l.report = report
	l.lastErr = nil
	return nil
}

// Reload fetches the report again. There is no automatic retry.
func (l *ReportLoader) Reload(ctx context.Context) error {
	return l.Load(ctx)
}

// Report returns the last successfully fetched report, or nil.
func (l *ReportLoader) Report() *models.AssessmentReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.report
}

// Err returns the categorized error of the most recent fetch, or nil.
func (l *ReportLoader) Err() *ReportError {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Close cancels in-flight fetches. Safe to call more than once.
func (l *ReportLoader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
}

// IsLoading reports whether a fetch is in flight.
func (l *ReportLoader) IsLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading > 0
}
