package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/retry"
	"github.com/ekaya-inc/assessment-console/pkg/transport"
)

func fastPolling() *retry.Config {
	return &retry.Config{InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestPoller_WaitsForTerminalStatus(t *testing.T) {
	api := &mockStatusSequence{steps: []statusStep{
		{status: models.AssessmentStatusProcessing},
		{status: models.AssessmentStatusProcessing},
		{status: models.AssessmentStatusProcessing},
		{status: models.AssessmentStatusCompleted},
	}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	var seen []models.AssessmentStatus
	a, err := p.WaitForTerminal(context.Background(), "a1", func(a *models.Assessment) {
		seen = append(seen, a.Status)
	})
	require.NoError(t, err)

	assert.Equal(t, models.AssessmentStatusCompleted, a.Status)
	assert.Equal(t, []models.AssessmentStatus{models.AssessmentStatusProcessing, models.AssessmentStatusCompleted}, seen)
	assert.Equal(t, int32(4), api.calls.Load())
}

func TestPoller_AlreadyTerminal(t *testing.T) {
	api := &mockStatusSequence{steps: []statusStep{{status: models.AssessmentStatusFailed}}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	a, err := p.WaitForTerminal(context.Background(), "a1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentStatusFailed, a.Status)
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestPoller_TransientErrorsArePolledThrough(t *testing.T) {
	api := &mockStatusSequence{steps: []statusStep{
		{err: &transport.NetworkError{Method: "GET", Err: errors.New("connection refused")}},
		{err: &transport.HTTPError{StatusCode: 503}},
		{status: models.AssessmentStatusCompleted},
	}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	a, err := p.WaitForTerminal(context.Background(), "a1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentStatusCompleted, a.Status)
	assert.Equal(t, int32(3), api.calls.Load())
}

func TestPoller_PermanentErrorStops(t *testing.T) {
	api := &mockStatusSequence{steps: []statusStep{
		{status: models.AssessmentStatusProcessing},
		{err: &transport.HTTPError{StatusCode: 404, Message: "Assessment not found"}},
	}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	a, err := p.WaitForTerminal(context.Background(), "a1", nil)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPoller_ContextEndsWait(t *testing.T) {
	api := &mockStatusSequence{steps: []statusStep{{status: models.AssessmentStatusProcessing}}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := p.WaitForTerminal(ctx, "a1", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, api.calls.Load(), int32(1))
}

func TestPoller_SinceRunSkipsPreviousResult(t *testing.T) {
	before := &models.Assessment{ID: "a1", Status: models.AssessmentStatusCompleted}
	api := &mockStatusSequence{steps: []statusStep{
		{status: models.AssessmentStatusCompleted},
		{status: models.AssessmentStatusCompleted},
		{status: models.AssessmentStatusProcessing},
		{status: models.AssessmentStatusFailed},
	}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	var seen []models.AssessmentStatus
	a, err := p.WaitForTerminal(context.Background(), "a1", func(a *models.Assessment) {
		seen = append(seen, a.Status)
	}, SinceRun(before))
	require.NoError(t, err)

	assert.Equal(t, models.AssessmentStatusFailed, a.Status)
	assert.Equal(t, []models.AssessmentStatus{models.AssessmentStatusProcessing, models.AssessmentStatusFailed}, seen)
	assert.Equal(t, int32(4), api.calls.Load())
}

func TestPoller_SinceRunAcceptsNewerUpdate(t *testing.T) {
	prev := models.Timestamp{Time: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	next := models.Timestamp{Time: prev.Add(time.Minute)}
	before := &models.Assessment{ID: "a1", Status: models.AssessmentStatusCompleted, UpdatedAt: &prev}

	api := &mockStatusSequence{steps: []statusStep{
		{status: models.AssessmentStatusCompleted, updatedAt: &prev},
		{status: models.AssessmentStatusCompleted, updatedAt: &next},
	}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	a, err := p.WaitForTerminal(context.Background(), "a1", nil, SinceRun(before))
	require.NoError(t, err)
	assert.Equal(t, next.Time, a.UpdatedAt.Time)
	assert.Equal(t, int32(2), api.calls.Load())
}

func TestPoller_SinceRunFromNonTerminalAcceptsFirstResult(t *testing.T) {
	before := &models.Assessment{ID: "a1", Status: models.AssessmentStatusCreated}
	api := &mockStatusSequence{steps: []statusStep{{status: models.AssessmentStatusCompleted}}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	a, err := p.WaitForTerminal(context.Background(), "a1", nil, SinceRun(before))
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentStatusCompleted, a.Status)
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestPoller_SinceRunStaleUntilContextEnds(t *testing.T) {
	before := &models.Assessment{ID: "a1", Status: models.AssessmentStatusCompleted}
	api := &mockStatusSequence{steps: []statusStep{{status: models.AssessmentStatusCompleted}}}
	p := NewPoller(api, fastPolling(), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	a, err := p.WaitForTerminal(ctx, "a1", nil, SinceRun(before))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, a)
}
