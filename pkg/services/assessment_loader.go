package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
	"github.com/ekaya-inc/assessment-console/pkg/logging"
	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/retry"
)

// DefaultRunRefetchDelay is how long RunAnalysis waits before its single re-fetch.
const DefaultRunRefetchDelay = 2 * time.Second

// AssessmentSnapshot is one consistent view of an assessment.
// Stats is nil unless the assessment was completed when fetched and the
// stats call succeeded.
type AssessmentSnapshot struct {
	Assessment *models.Assessment
	Files      []models.UploadedFile
	Stats      *models.AssessmentStats
	FetchedAt  time.Time
}

// Loaded reports whether the snapshot holds a fetched assessment.
func (s AssessmentSnapshot) Loaded() bool {
	return s.Assessment != nil
}

// AssessmentLoader keeps the {assessment, files, stats} view for one assessment.
// Overlapping loads are not cancelled; the last one to finish wins.
// After Close, in-flight results are discarded and the pending run re-fetch is cancelled.
type AssessmentLoader struct {
	api          AssessmentAPI
	assessmentID string
	refetchDelay time.Duration
	logger       *zap.Logger

	lifetime context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu         sync.Mutex
	snapshot   AssessmentSnapshot
	lastErr    error
	loading    int
	refreshing int
	closed     bool
}

// NewAssessmentLoader creates a loader for assessmentID. A non-positive
// refetchDelay uses DefaultRunRefetchDelay.
func NewAssessmentLoader(api AssessmentAPI, assessmentID string, refetchDelay time.Duration, logger *zap.Logger) *AssessmentLoader {
	if refetchDelay <= 0 {
		refetchDelay = DefaultRunRefetchDelay
	}
	lifetime, cancel := context.WithCancel(context.Background())
	return &AssessmentLoader{
		api:          api,
		assessmentID: assessmentID,
		refetchDelay: refetchDelay,
		logger:       logger.Named("assessment-loader"),
		lifetime:     lifetime,
		cancel:       cancel,
	}
}

// Load fetches the assessment view. On failure the previous snapshot is kept.
func (l *AssessmentLoader) Load(ctx context.Context) error {
	return l.load(ctx, false)
}

// Refresh re-runs Load, tracked under the refreshing flag instead of loading.
func (l *AssessmentLoader) Refresh(ctx context.Context) error {
	return l.load(ctx, true)
}

func (l *AssessmentLoader) load(ctx context.Context, refresh bool) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return apperrors.ErrLoaderClosed
	}
	if refresh {
		l.refreshing++
	} else {
		l.loading++
	}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if refresh {
			l.refreshing--
		} else {
			l.loading--
		}
		l.mu.Unlock()
	}()

	snap, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return apperrors.ErrLoaderClosed
	}
	if err != nil {
		l.lastErr = err
		l.logger.Error("Failed to load assessment",
			zap.String("assessment_id", l.assessmentID),
			zap.Bool("refresh", refresh),
			zap.String("error", logging.SanitizeError(err)))
		return err
	}
	l.snapshot = snap
	l.lastErr = nil
	return nil
}

// fetch gets assessment and files concurrently, then stats when completed.
func (l *AssessmentLoader) fetch(ctx context.Context) (AssessmentSnapshot, error) {
	ctx, stop := l.bind(ctx)
	defer stop()

	var (
		assessment *models.Assessment
		files      []models.UploadedFile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := l.api.GetAssessment(gctx, l.assessmentID)
		if err != nil {
			return err
		}
		assessment = a
		return nil
	})
	g.Go(func() error {
		f, err := l.api.ListFiles(gctx, l.assessmentID)
		if err != nil {
			return err
		}
		files = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return AssessmentSnapshot{}, err
	}
	if assessment == nil {
		return AssessmentSnapshot{}, fmt.Errorf("assessment %s: %w", l.assessmentID, apperrors.ErrNotFound)
	}
	if files == nil {
		files = []models.UploadedFile{}
	}

	snap := AssessmentSnapshot{
		Assessment: assessment,
		Files:      files,
		FetchedAt:  time.Now(),
	}

	if assessment.Status == models.AssessmentStatusCompleted {
		stats, err := l.api.GetStats(ctx, l.assessmentID)
		if err != nil {
			l.logger.Warn("Failed to load assessment stats",
				zap.String("assessment_id", l.assessmentID),
				zap.String("error", logging.SanitizeError(err)))
		} else {
			snap.Stats = stats
		}
	}

	return snap, nil
}

// RunAnalysis asks the server to start a run. On success it schedules exactly
// one Refresh after the re-fetch delay and returns true. A failed request
// returns false and schedules nothing.
func (l *AssessmentLoader) RunAnalysis(ctx context.Context) bool {
	if l.isClosed() {
		return false
	}

	ctx, stop := l.bind(ctx)
	defer stop()

	resp, err := l.api.TriggerRun(ctx, l.assessmentID)
	if err != nil {
		l.logger.Error("Failed to trigger analysis run",
			zap.String("assessment_id", l.assessmentID),
			zap.String("error", logging.SanitizeError(err)))
		return false
	}

	fields := []zap.Field{zap.String("assessment_id", l.assessmentID), zap.Duration("refetch_delay", l.refetchDelay)}
	if resp != nil && resp.Status != "" {
		fields = append(fields, zap.String("status", resp.Status))
	}
	l.logger.Info("Analysis run triggered", fields...)

	l.scheduleRefetch()
	return true
}

func (l *AssessmentLoader) scheduleRefetch() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		if err := retry.Sleep(l.lifetime, l.refetchDelay); err != nil {
			return
		}
		if err := l.Refresh(l.lifetime); err != nil && !errors.Is(err, apperrors.ErrLoaderClosed) {
			l.logger.Debug("Post-run refresh failed", zap.String("assessment_id", l.assessmentID))
		}
	}()
}

// Snapshot returns the last successfully loaded view.
func (l *AssessmentLoader) Snapshot() AssessmentSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

// Err returns the error of the most recent load, or nil if it succeeded.
func (l *AssessmentLoader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// IsLoading reports whether a Load is in flight.
func (l *AssessmentLoader) IsLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading > 0
}

// IsRefreshing reports whether a Refresh is in flight.
func (l *AssessmentLoader) IsRefreshing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshing > 0
}

// CanRunAnalysis applies CanRunAnalysis to the current snapshot.
func (l *AssessmentLoader) CanRunAnalysis() bool {
	snap := l.Snapshot()
	return CanRunAnalysis(snap.Assessment, len(snap.Files))
}

// Close cancels in-flight requests and the pending re-fetch, then waits for
// the re-fetch goroutine to exit. Safe to call more than once.
func (l *AssessmentLoader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
}

func (l *AssessmentLoader) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// bind derives a context that also ends when the loader is closed.
func (l *AssessmentLoader) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
