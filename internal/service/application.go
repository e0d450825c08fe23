package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/event"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
	"github.com/quickgig/quickgig-api/internal/ports"
)

// ApplicationServiceOptions groups dependencies for ApplicationService.
type ApplicationServiceOptions struct {
	AppRepo  core.ApplicationRepository
	JobRepo  core.JobRepository
	Bus      *event.Bus
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// ApplicationService runs the application ledger: workers apply to open jobs,
// posters accept or reject. Accepting is the one write that spans two
// aggregates, and the repository commits it in a single transaction.
type ApplicationService struct {
	apps     core.ApplicationRepository
	jobs     core.JobRepository
	bus      *event.Bus
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(opts ApplicationServiceOptions) (*ApplicationService, error) {
	if opts.AppRepo == nil {
		return nil, errors.New("application repository is required")
	}
	if opts.JobRepo == nil {
		return nil, errors.New("job repository is required")
	}
	return &ApplicationService{
		apps:     opts.AppRepo,
		jobs:     opts.JobRepo,
		bus:      opts.Bus,
		notifier: opts.Notifier,
		logger:   opts.Logger,
	}, nil
}

// MustNewApplicationService constructs an ApplicationService and panics on error.
func MustNewApplicationService(opts ApplicationServiceOptions) *ApplicationService {
	svc, err := NewApplicationService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create ApplicationService: %v", err))
	}
	return svc
}

func (s *ApplicationService) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func (s *ApplicationService) notify(ctx context.Context, n ports.Notification) {
	if s.notifier == nil || n.RecipientID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			"job_id", n.JobID, "recipient_id", n.RecipientID, "kind", n.Kind, "err", err)
	}
}

// Apply submits a worker's application to an open job. Re-applying is allowed
// only after a rejection; a duplicate live application surfaces as
// already_applied from the ledger's uniqueness constraint.
func (s *ApplicationService) Apply(ctx context.Context, req *model.ApplyRequest) (*model.Application, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID == req.WorkerID {
		return nil, apperrors.New(apperrors.ErrCodeSelfApplication, "you cannot apply to your own job")
	}
	if job.Status != model.JobStatusOpen {
		return nil, apperrors.Newf(apperrors.ErrCodeJobNotOpen, "job is %s and not accepting applications", job.Status)
	}

	app, err := s.apps.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.publish(event.Event{Kind: event.KindApplicationSubmitted, JobID: job.ID, ActorID: req.WorkerID, SubjectID: app.ID})
	s.notify(ctx, ports.Notification{
		RecipientID: job.PosterID,
		JobID:       job.ID,
		Kind:        string(event.KindApplicationSubmitted),
		Message:     "A worker applied to your job.",
	})
	return app, nil
}

// Accept accepts a pending application and assigns the job to its worker in
// one transaction. Racing accepts on the same job settle by job version: the
// first one wins, the rest get a conflict.
func (s *ApplicationService) Accept(ctx context.Context, applicationID, posterID string) (*model.Application, *model.Job, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, err
	}

	if job.PosterID != posterID {
		return nil, nil, apperrors.Unauthorized("only the job poster can accept applications")
	}
	if app.Status != model.ApplicationStatusPending {
		return nil, nil, apperrors.Newf(apperrors.ErrCodeAlreadyDecided, "application is already %s", app.Status)
	}
	if job.Status != model.JobStatusOpen {
		return nil, nil, apperrors.Newf(apperrors.ErrCodeJobNotOpen, "job is %s and cannot be assigned", job.Status)
	}

	accepted, assigned, err := s.apps.AcceptAndAssign(ctx, core.AcceptParams{
		ApplicationID:      app.ID,
		JobID:              job.ID,
		WorkerID:           app.WorkerID,
		ExpectedJobVersion: job.Version,
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(event.Event{Kind: event.KindJobAssigned, JobID: assigned.ID, ActorID: posterID, SubjectID: accepted.ID})
	s.notify(ctx, ports.Notification{
		RecipientID: accepted.WorkerID,
		JobID:       assigned.ID,
		Kind:        string(event.KindJobAssigned),
		Message:     "Your application was accepted. The job is yours.",
	})
	return accepted, assigned, nil
}

// Reject declines a pending application. The job stays open and the worker
// may apply again later.
func (s *ApplicationService) Reject(ctx context.Context, applicationID, posterID string) (*model.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}

	if job.PosterID != posterID {
		return nil, apperrors.Unauthorized("only the job poster can reject applications")
	}
	if app.Status != model.ApplicationStatusPending {
		return nil, apperrors.Newf(apperrors.ErrCodeAlreadyDecided, "application is already %s", app.Status)
	}

	rejected, err := s.apps.MarkRejected(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	s.publish(event.Event{Kind: event.KindApplicationRejected, JobID: job.ID, ActorID: posterID, SubjectID: rejected.ID})
	s.notify(ctx, ports.Notification{
		RecipientID: rejected.WorkerID,
		JobID:       job.ID,
		Kind:        string(event.KindApplicationRejected),
		Message:     "Your application was not selected this time.",
	})
	return rejected, nil
}

// ListForJob returns a job's applications in the requested order. Only the
// poster sees the ledger.
func (s *ApplicationService) ListForJob(ctx context.Context, jobID, requesterID string, order model.ApplicationOrder) ([]*model.Application, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID != requesterID {
		return nil, apperrors.Unauthorized("only the job poster can list applications")
	}
	return s.apps.ListForJob(ctx, jobID, order)
}

// ListForWorker returns a worker's own applications, newest first.
func (s *ApplicationService) ListForWorker(ctx context.Context, workerID string) ([]*model.Application, error) {
	return s.apps.ListForWorker(ctx, workerID)
}
