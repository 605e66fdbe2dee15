package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/logging"
	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/retry"
)

// Poller watches an assessment until it reaches a terminal status.
// Transient failures are logged and polled through; anything else stops the wait.
type Poller struct {
	api     AssessmentGetter
	backoff retry.Config
	logger  *zap.Logger
}

// NewPoller creates a poller. A nil cfg uses retry.DefaultConfig.
func NewPoller(api AssessmentGetter, cfg *retry.Config, logger *zap.Logger) *Poller {
	if cfg == nil {
		cfg = retry.DefaultConfig()
	}
	return &Poller{
		api:     api,
		backoff: *cfg,
		logger:  logger.Named("poller"),
	}
}

// WaitOption adjusts WaitForTerminal.
type WaitOption func(*waitOptions)

type waitOptions struct {
	before *models.Assessment
}

// SinceRun makes the wait skip a terminal status left over from the previous
// run. before is the assessment as loaded ahead of the trigger. When it was
// already completed or failed, a terminal status counts only after a
// non-terminal one has been seen or updated_at has moved past before's.
func SinceRun(before *models.Assessment) WaitOption {
	return func(o *waitOptions) {
		o.before = before
	}
}

// stale reports whether a is the previous run's terminal state.
func (o *waitOptions) stale(a *models.Assessment, sawActive bool) bool {
	if o.before == nil || sawActive || !a.Status.IsTerminal() || !o.before.Status.IsTerminal() {
		return false
	}
	if a.UpdatedAt != nil && o.before.UpdatedAt != nil && a.UpdatedAt.After(o.before.UpdatedAt.Time) {
		return false
	}
	return true
}

// WaitForTerminal polls until the assessment is completed or failed, ctx ends,
// or a non-transient error occurs. onUpdate, if set, sees the first fetch and
// every status change. The wait grows between polls and restarts on a change.
func (p *Poller) WaitForTerminal(ctx context.Context, assessmentID string, onUpdate func(*models.Assessment), opts ...WaitOption) (*models.Assessment, error) {
	o := &waitOptions{}
	for _, opt := range opts {
		opt(o)
	}

	backoff := retry.NewBackoff(&p.backoff)
	var last models.AssessmentStatus
	first := true
	sawActive := false

	for {
		a, err := p.api.GetAssessment(ctx, assessmentID)
		switch {
		case err != nil && retry.IsRetryable(err):
			p.logger.Warn("Status poll failed; will retry",
				zap.String("assessment_id", assessmentID),
				zap.String("error", logging.SanitizeError(err)))
		case err != nil:
			return nil, fmt.Errorf("poll assessment %s: %w", assessmentID, err)
		case o.stale(a, sawActive):
			p.logger.Debug("Run not picked up yet; ignoring previous terminal status",
				zap.String("assessment_id", assessmentID),
				zap.String("status", string(a.Status)))
		default:
			if !a.Status.IsTerminal() {
				sawActive = true
			}
			if first || a.Status != last {
				if !first {
					backoff.Reset()
				}
				first = false
				last = a.Status
				p.logger.Debug("Assessment status",
					zap.String("assessment_id", assessmentID),
					zap.String("status", string(a.Status)))
				if onUpdate != nil {
					onUpdate(a)
				}
			}
			if a.Status.IsTerminal() {
				return a, nil
			}
		}

		if err := retry.Sleep(ctx, backoff.Next()); err != nil {
			return nil, err
		}
	}
}
