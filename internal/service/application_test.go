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

type applicationServiceFixture struct {
	appRepo  *mocks.MockApplicationRepository
	jobRepo  *mocks.MockJobRepository
	notifier *mocks.MockNotifier
	bus      *event.Bus
	service  *ApplicationService
}

func newApplicationService(t *testing.T) *applicationServiceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &applicationServiceFixture{
		appRepo:  mocks.NewMockApplicationRepository(ctrl),
		jobRepo:  mocks.NewMockJobRepository(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
		bus:      event.NewBus(),
	}
	t.Cleanup(f.bus.StopAll)

	service, err := NewApplicationService(ApplicationServiceOptions{
		AppRepo:  f.appRepo,
		JobRepo:  f.jobRepo,
		Bus:      f.bus,
		Notifier: f.notifier,
	})
	require.NoError(t, err)
	f.service = service
	return f
}

func applicationFixture(status model.ApplicationStatus) *model.Application {
	now := time.Now()
	return &model.Application{
		ID:         testAppID,
		JobID:      testJobID,
		WorkerID:   testWorkerID,
		Status:     status,
		HourlyRate: float64Ptr(22),
		Message:    "I have my own tools.",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestApplicationService_Apply_Success(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)
	unsub, submitted := f.bus.Subscribe(event.KindApplicationSubmitted)
	t.Cleanup(unsub)

	ctx := context.Background()
	req := &model.ApplyRequest{JobID: testJobID, WorkerID: testWorkerID, HourlyRate: float64Ptr(22)}
	expected := applicationFixture(model.ApplicationStatusPending)

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusOpen), nil)
	f.appRepo.EXPECT().Create(ctx, req).Return(expected, nil)
	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	app, err := f.service.Apply(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, expected, app)

	select {
	case e := <-submitted:
		assert.Equal(t, testWorkerID, e.ActorID)
		assert.Equal(t, testAppID, e.SubjectID)
	case <-time.After(time.Second):
		t.Fatal("expected an application_submitted event")
	}
}

func TestApplicationService_Apply_SelfApplication(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusOpen), nil)

	_, err := f.service.Apply(ctx, &model.ApplyRequest{JobID: testJobID, WorkerID: testPosterID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSelfApplication, apperrors.CodeOf(err))
}

func TestApplicationService_Apply_JobNotOpen(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusAssigned), nil)

	_, err := f.service.Apply(ctx, &model.ApplyRequest{JobID: testJobID, WorkerID: "worker-2"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeJobNotOpen, apperrors.CodeOf(err))
}

func TestApplicationService_Apply_DuplicatePassesThrough(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	req := &model.ApplyRequest{JobID: testJobID, WorkerID: testWorkerID}

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusOpen), nil)
	f.appRepo.EXPECT().Create(ctx, req).
		Return(nil, apperrors.New(apperrors.ErrCodeAlreadyApplied, "a live application already exists"))

	_, err := f.service.Apply(ctx, req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAlreadyApplied, apperrors.CodeOf(err))
}

func TestApplicationService_Accept_Success(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)
	unsub, assigned := f.bus.Subscribe(event.KindJobAssigned)
	t.Cleanup(unsub)

	ctx := context.Background()
	pending := applicationFixture(model.ApplicationStatusPending)
	open := jobFixture(model.JobStatusOpen)
	acceptedApp := applicationFixture(model.ApplicationStatusAccepted)
	assignedJob := jobFixture(model.JobStatusAssigned)
	assignedJob.Version = 2

	f.appRepo.EXPECT().GetByID(ctx, testAppID).Return(pending, nil)
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(open, nil)
	f.appRepo.EXPECT().
		AcceptAndAssign(ctx, core.AcceptParams{
			ApplicationID:      testAppID,
			JobID:              testJobID,
			WorkerID:           testWorkerID,
			ExpectedJobVersion: 1,
		}).
		Return(acceptedApp, assignedJob, nil)
	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	app, job, err := f.service.Accept(ctx, testAppID, testPosterID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, app.Status)
	assert.Equal(t, model.JobStatusAssigned, job.Status)

	select {
	case e := <-assigned:
		assert.Equal(t, testPosterID, e.ActorID)
	case <-time.After(time.Second):
		t.Fatal("expected a job_assigned event")
	}
}

func TestApplicationService_Accept_NotThePoster(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	f.appRepo.EXPECT().GetByID(ctx, testAppID).Return(applicationFixture(model.ApplicationStatusPending), nil)
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusOpen), nil)

	_, _, err := f.service.Accept(ctx, testAppID, "somebody-else")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestApplicationService_Accept_AlreadyDecided(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	f.appRepo.EXPECT().GetByID(ctx, testAppID).Return(applicationFixture(model.ApplicationStatusRejected), nil)
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusOpen), nil)

	_, _, err := f.service.Accept(ctx, testAppID, testPosterID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAlreadyDecided, apperrors.CodeOf(err))
}

func TestApplicationService_Accept_JobNoLongerOpen(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	f.appRepo.EXPECT().GetByID(ctx, testAppID).Return(applicationFixture(model.ApplicationStatusPending), nil)
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusAssigned), nil)

	_, _, err := f.service.Accept(ctx, testAppID, testPosterID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeJobNotOpen, apperrors.CodeOf(err))
}

func TestApplicationService_Accept_RacingAcceptLosesWithConflict(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	f.appRepo.EXPECT().GetByID(ctx, testAppID).Return(applicationFixture(model.ApplicationStatusPending), nil)
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusOpen), nil)
	f.appRepo.EXPECT().
		AcceptAndAssign(ctx, gomock.Any()).
		Return(nil, nil, apperrors.Conflictf("job %s was assigned concurrently", testJobID))

	_, _, err := f.service.Accept(ctx, testAppID, testPosterID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
}

func TestApplicationService_Reject_Success(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)
	unsub, rejected := f.bus.Subscribe(event.KindApplicationRejected)
	t.Cleanup(unsub)

	ctx := context.Background()
	f.appRepo.EXPECT().GetByID(ctx, testAppID).Return(applicationFixture(model.ApplicationStatusPending), nil)
	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusOpen), nil)
	f.appRepo.EXPECT().MarkRejected(ctx, testAppID).Return(applicationFixture(model.ApplicationStatusRejected), nil)
	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	app, err := f.service.Reject(ctx, testAppID, testPosterID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusRejected, app.Status)

	select {
	case e := <-rejected:
		assert.Equal(t, testAppID, e.SubjectID)
	case <-time.After(time.Second):
		t.Fatal("expected an application_rejected event")
	}
}

func TestApplicationService_ListForJob_PosterOnly(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	apps := []*model.Application{applicationFixture(model.ApplicationStatusPending)}

	f.jobRepo.EXPECT().GetByID(ctx, testJobID).Return(jobFixture(model.JobStatusOpen), nil).Times(2)
	f.appRepo.EXPECT().ListForJob(ctx, testJobID, model.ApplicationOrderRate).Return(apps, nil)

	got, err := f.service.ListForJob(ctx, testJobID, testPosterID, model.ApplicationOrderRate)
	require.NoError(t, err)
	assert.Equal(t, apps, got)

	_, err = f.service.ListForJob(ctx, testJobID, testWorkerID, model.ApplicationOrderNewest)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestApplicationService_ListForWorker(t *testing.T) {
	t.Parallel()
	f := newApplicationService(t)

	ctx := context.Background()
	apps := []*model.Application{applicationFixture(model.ApplicationStatusPending)}

	f.appRepo.EXPECT().ListForWorker(ctx, testWorkerID).Return(apps, nil)

	got, err := f.service.ListForWorker(ctx, testWorkerID)
	require.NoError(t, err)
	assert.Equal(t, apps, got)
}
