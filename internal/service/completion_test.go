package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/event"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
	"github.com/quickgig/quickgig-api/internal/mocks"
)

type completionServiceFixture struct {
	completionRepo *mocks.MockCompletionRepository
	jobRepo        *mocks.MockJobRepository
	taskRepo       *mocks.MockTaskRepository
	notifier       *mocks.MockNotifier
	bus            *event.Bus
	service        *CompletionService
}

func newCompletionService(t *testing.T) *completionServiceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &completionServiceFixture{
		completionRepo: mocks.NewMockCompletionRepository(ctrl),
		jobRepo:        mocks.NewMockJobRepository(ctrl),
		taskRepo:       mocks.NewMockTaskRepository(ctrl),
		notifier:       mocks.NewMockNotifier(ctrl),
		bus:            event.NewBus(),
	}
	t.Cleanup(f.bus.StopAll)

	service, err := NewCompletionService(CompletionServiceOptions{
		CompletionRepo: f.completionRepo,
		JobRepo:        f.jobRepo,
		TaskRepo:       f.taskRepo,
		Bus:            f.bus,
		Notifier:       f.notifier,
	})
	require.NoError(t, err)
	f.service = service
	return f
}

func completionFixture(status model.CompletionStatus) *model.CompletionRecord {
	record := &model.CompletionRecord{
		ID:          "completion-123",
		JobID:       testJobID,
		Status:      status,
		RequestedBy: testWorkerID,
		RequestedAt: time.Now(),
	}
	if status == model.CompletionStatusApproved {
		record.ApprovedBy = stringPtr(testPosterID)
		now := time.Now()
		record.ApprovedAt = &now
	}
	return record
}

func TestCompletionService_Request_Success(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)
	unsub, requested := f.bus.Subscribe(event.KindCompletionRequested)
	t.Cleanup(unsub)

	ctx := context.Background()
	params := core.CompletionRequestParams{JobID: testJobID, RequestedBy: testWorkerID, Notes: "All done."}

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(nil, apperrors.NotFound("no completion record"))
	f.completionRepo.EXPECT().CreateRequested(ctx, params).Return(completionFixture(model.CompletionStatusRequested), nil)
	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	record, err := f.service.Request(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionStatusRequested, record.Status)

	select {
	case e := <-requested:
		assert.Equal(t, testWorkerID, e.ActorID)
	case <-time.After(time.Second):
		t.Fatal("expected a completion_requested event")
	}
}

func TestCompletionService_Request_NotInProgress(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusAssigned), nil)

	_, err := f.service.Request(ctx, core.CompletionRequestParams{JobID: testJobID, RequestedBy: testWorkerID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotInProgress, apperrors.CodeOf(err))
}

func TestCompletionService_Request_AlreadyRequested(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(completionFixture(model.CompletionStatusRequested), nil)

	_, err := f.service.Request(ctx, core.CompletionRequestParams{JobID: testJobID, RequestedBy: testPosterID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
}

func TestCompletionService_Request_NonParticipant(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)

	_, err := f.service.Request(ctx, core.CompletionRequestParams{JobID: testJobID, RequestedBy: "stranger"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestCompletionService_Approve_Success(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)
	unsub, completed := f.bus.Subscribe(event.KindJobCompleted)
	t.Cleanup(unsub)

	ctx := context.Background()
	params := core.CompletionApproveParams{
		JobID:        testJobID,
		ApprovedBy:   testPosterID,
		WorkerRating: intPtr(5),
	}
	inProgress := jobFixture(model.JobStatusInProgress)
	done := jobFixture(model.JobStatusCompleted)
	done.Version = 2

	finalized := params
	finalized.ExpectedJobVersion = 1

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(inProgress, nil)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(completionFixture(model.CompletionStatusRequested), nil)
	f.completionRepo.EXPECT().
		ApproveAndComplete(ctx, finalized).
		Return(completionFixture(model.CompletionStatusApproved), done, nil)
	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	record, job, err := f.service.Approve(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionStatusApproved, record.Status)
	assert.Equal(t, model.JobStatusCompleted, job.Status)

	select {
	case e := <-completed:
		assert.Equal(t, testPosterID, e.ActorID)
	case <-time.After(time.Second):
		t.Fatal("expected a job_completed event")
	}
}

func TestCompletionService_Approve_ConflictKeepsRequestRetriable(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	params := core.CompletionApproveParams{JobID: testJobID, ApprovedBy: testPosterID, ExpectedJobVersion: 1}

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(completionFixture(model.CompletionStatusRequested), nil)
	f.completionRepo.EXPECT().
		ApproveAndComplete(ctx, params).
		Return(nil, nil, apperrors.Conflict("job version moved"))

	_, _, err := f.service.Approve(ctx, params)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))

	// The rolled-back approval leaves the request pending, so a retry with
	// the fresh version goes through.
	refreshed := jobFixture(model.JobStatusInProgress)
	refreshed.Version = 2
	retried := params
	retried.ExpectedJobVersion = 2
	done := jobFixture(model.JobStatusCompleted)
	done.Version = 3

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(refreshed, nil)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(completionFixture(model.CompletionStatusRequested), nil)
	f.completionRepo.EXPECT().
		ApproveAndComplete(ctx, retried).
		Return(completionFixture(model.CompletionStatusApproved), done, nil)
	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	record, job, err := f.service.Approve(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionStatusApproved, record.Status)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
}

func TestCompletionService_Approve_RequesterCannotApprove(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(completionFixture(model.CompletionStatusRequested), nil)

	_, _, err := f.service.Approve(ctx, core.CompletionApproveParams{JobID: testJobID, ApprovedBy: testWorkerID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestCompletionService_Approve_NoPendingRequest(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(nil, apperrors.NotFound("no completion record"))

	_, _, err := f.service.Approve(ctx, core.CompletionApproveParams{JobID: testJobID, ApprovedBy: testPosterID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNoPendingRequest, apperrors.CodeOf(err))
}

func TestCompletionService_Approve_InvalidRating(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(completionFixture(model.CompletionStatusRequested), nil)

	_, _, err := f.service.Approve(ctx, core.CompletionApproveParams{
		JobID:        testJobID,
		ApprovedBy:   testPosterID,
		WorkerRating: intPtr(6),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidRating, apperrors.CodeOf(err))
}

func TestCompletionService_CompleteDirectly_Success(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	inProgress := jobFixture(model.JobStatusInProgress)
	done := jobFixture(model.JobStatusCompleted)
	done.Version = 2

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(inProgress, nil)
	f.taskRepo.EXPECT().Progress(ctx, testJobID).Return(model.ChecklistProgress{Completed: 3, Total: 3}, nil)
	f.completionRepo.EXPECT().
		CreateApprovedAndComplete(ctx, core.CompletionApproveParams{
			JobID:              testJobID,
			ApprovedBy:         testWorkerID,
			PosterRating:       intPtr(4),
			ExpectedJobVersion: 1,
		}).
		Return(completionFixture(model.CompletionStatusApproved), done, nil)
	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	record, job, err := f.service.CompleteDirectly(ctx, testJobID, testWorkerID, nil, intPtr(4))
	require.NoError(t, err)
	assert.Equal(t, model.CompletionStatusApproved, record.Status)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
}

func TestCompletionService_CompleteDirectly_TasksIncomplete(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)
	f.taskRepo.EXPECT().Progress(ctx, testJobID).Return(model.ChecklistProgress{Completed: 1, Total: 3}, nil)

	_, _, err := f.service.CompleteDirectly(ctx, testJobID, testWorkerID, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTasksIncomplete, apperrors.CodeOf(err))

	progress, ok := apperrors.DetailsOf(err).(model.ChecklistProgress)
	require.True(t, ok)
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, 3, progress.Total)
}

func TestCompletionService_CompleteDirectly_NoTasksIsTriviallyEligible(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	done := jobFixture(model.JobStatusCompleted)
	done.Version = 2

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil)
	f.taskRepo.EXPECT().Progress(ctx, testJobID).Return(model.ChecklistProgress{}, nil)
	f.completionRepo.EXPECT().
		CreateApprovedAndComplete(ctx, gomock.Any()).
		Return(completionFixture(model.CompletionStatusApproved), done, nil)
	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	_, _, err := f.service.CompleteDirectly(ctx, testJobID, testWorkerID, nil, nil)
	require.NoError(t, err)
}

func TestCompletionService_CompleteDirectly_NotInProgress(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusAssigned), nil)

	_, _, err := f.service.CompleteDirectly(ctx, testJobID, testWorkerID, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotInProgress, apperrors.CodeOf(err))
}

func TestCompletionService_GetForJob_ParticipantOnly(t *testing.T) {
	t.Parallel()
	f := newCompletionService(t)

	ctx := context.Background()
	record := completionFixture(model.CompletionStatusRequested)

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusInProgress), nil).Times(2)
	f.completionRepo.EXPECT().GetForJob(ctx, testJobID).Return(record, nil)

	got, err := f.service.GetForJob(ctx, testJobID, testWorkerID)
	require.NoError(t, err)
	assert.Equal(t, record, got)

	_, err = f.service.GetForJob(ctx, testJobID, "stranger")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}
