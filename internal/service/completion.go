package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/event"
	jobdomain "github.com/quickgig/quickgig-api/internal/domain/job"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
	"github.com/quickgig/quickgig-api/internal/ports"
)

// CompletionServiceOptions groups dependencies for CompletionService.
type CompletionServiceOptions struct {
	CompletionRepo core.CompletionRepository
	JobRepo        core.JobRepository
	TaskRepo       core.TaskRepository
	Bus            *event.Bus
	Notifier       ports.Notifier
	Logger         *slog.Logger
}

// CompletionService runs the completion handshake: one party requests, the
// counterpart approves, the job moves to completed. The direct path skips the
// handshake when the checklist proves the work is done.
type CompletionService struct {
	records  core.CompletionRepository
	jobs     core.JobRepository
	tasks    core.TaskRepository
	bus      *event.Bus
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewCompletionService constructs a CompletionService.
func NewCompletionService(opts CompletionServiceOptions) (*CompletionService, error) {
	if opts.CompletionRepo == nil {
		return nil, errors.New("completion repository is required")
	}
	if opts.JobRepo == nil {
		return nil, errors.New("job repository is required")
	}
	if opts.TaskRepo == nil {
		return nil, errors.New("task repository is required")
	}
	return &CompletionService{
		records:  opts.CompletionRepo,
		jobs:     opts.JobRepo,
		tasks:    opts.TaskRepo,
		bus:      opts.Bus,
		notifier: opts.Notifier,
		logger:   opts.Logger,
	}, nil
}

// MustNewCompletionService constructs a CompletionService and panics on error.
func MustNewCompletionService(opts CompletionServiceOptions) *CompletionService {
	svc, err := NewCompletionService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create CompletionService: %v", err))
	}
	return svc
}

func (s *CompletionService) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func (s *CompletionService) notify(ctx context.Context, n ports.Notification) {
	if s.notifier == nil || n.RecipientID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			"job_id", n.JobID, "recipient_id", n.RecipientID, "kind", n.Kind, "err", err)
	}
}

// Request opens the completion handshake on an in-progress job. Either
// participant can request; the counterpart must approve.
func (s *CompletionService) Request(ctx context.Context, params core.CompletionRequestParams) (*model.CompletionRecord, error) {
	job, err := s.jobs.GetByID(ctx, params.JobID)
	if err != nil {
		return nil, err
	}
	if !job.IsParticipant(params.RequestedBy) {
		return nil, apperrors.Unauthorized("only job participants can request completion")
	}
	if job.Status != model.JobStatusInProgress {
		return nil, apperrors.Newf(apperrors.ErrCodeNotInProgress, "job is %s; completion needs an in-progress job", job.Status)
	}

	if existing, getErr := s.records.GetForJob(ctx, params.JobID); getErr == nil && existing != nil {
		return nil, apperrors.Conflictf("completion is already %s", existing.Status)
	} else if getErr != nil && !apperrors.IsCode(getErr, apperrors.ErrCodeNotFound) {
		return nil, getErr
	}

	record, err := s.records.CreateRequested(ctx, params)
	if err != nil {
		return nil, err
	}

	s.publish(event.Event{Kind: event.KindCompletionRequested, JobID: job.ID, ActorID: params.RequestedBy})
	s.notify(ctx, ports.Notification{
		RecipientID: job.Counterpart(params.RequestedBy),
		JobID:       job.ID,
		Kind:        string(event.KindCompletionRequested),
		Message:     "Completion of the job has been requested and awaits your approval.",
	})
	return record, nil
}

// Approve closes the handshake: the counterpart confirms, optional ratings
// are recorded, and the record finalization commits together with the job's
// transition to completed. On a version conflict neither lands and the
// request stays pending for a retry.
func (s *CompletionService) Approve(ctx context.Context, params core.CompletionApproveParams) (*model.CompletionRecord, *model.Job, error) {
	job, err := s.jobs.GetByID(ctx, params.JobID)
	if err != nil {
		return nil, nil, err
	}
	if !job.IsParticipant(params.ApprovedBy) {
		return nil, nil, apperrors.Unauthorized("only job participants can approve completion")
	}
	if job.Status != model.JobStatusInProgress {
		return nil, nil, apperrors.Newf(apperrors.ErrCodeNotInProgress, "job is %s; completion needs an in-progress job", job.Status)
	}

	record, err := s.records.GetForJob(ctx, params.JobID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			return nil, nil, apperrors.New(apperrors.ErrCodeNoPendingRequest, "no completion request to approve")
		}
		return nil, nil, err
	}
	if record.RequestedBy == params.ApprovedBy {
		return nil, nil, apperrors.Unauthorized("the counterpart must approve the completion request")
	}
	if err := validRatings(params.WorkerRating, params.PosterRating); err != nil {
		return nil, nil, err
	}

	params.ExpectedJobVersion = job.Version
	approved, updated, err := s.records.ApproveAndComplete(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	s.publish(event.Event{Kind: event.KindJobCompleted, JobID: updated.ID, ActorID: params.ApprovedBy})
	s.notify(ctx, ports.Notification{
		RecipientID: updated.Counterpart(params.ApprovedBy),
		JobID:       updated.ID,
		Kind:        string(event.KindJobCompleted),
		Message:     "The job has been completed.",
	})
	return approved, updated, nil
}

// CompleteDirectly finishes an in-progress job without the handshake. Only
// allowed when every checklist task is complete; a job with no tasks is
// trivially eligible.
func (s *CompletionService) CompleteDirectly(ctx context.Context, jobID, actorID string, workerRating, posterRating *int) (*model.CompletionRecord, *model.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	role, ok := participantRole(job, actorID)
	if !ok {
		return nil, nil, apperrors.Unauthorized("only job participants can complete the job")
	}
	if !jobdomain.Allowed(jobdomain.Transition{From: job.Status, To: model.JobStatusCompleted}, role) {
		return nil, nil, apperrors.Newf(apperrors.ErrCodeNotInProgress, "job is %s; completion needs an in-progress job", job.Status)
	}

	progress, err := s.tasks.Progress(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if !progress.AllComplete() {
		return nil, nil, apperrors.Newf(
			apperrors.ErrCodeTasksIncomplete,
			"%d of %d tasks remain incomplete", progress.Total-progress.Completed, progress.Total,
		).WithDetails(progress)
	}
	if err := validRatings(workerRating, posterRating); err != nil {
		return nil, nil, err
	}

	record, updated, err := s.records.CreateApprovedAndComplete(ctx, core.CompletionApproveParams{
		JobID:              jobID,
		ApprovedBy:         actorID,
		WorkerRating:       workerRating,
		PosterRating:       posterRating,
		ExpectedJobVersion: job.Version,
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(event.Event{Kind: event.KindJobCompleted, JobID: updated.ID, ActorID: actorID})
	s.notify(ctx, ports.Notification{
		RecipientID: updated.Counterpart(actorID),
		JobID:       updated.ID,
		Kind:        string(event.KindJobCompleted),
		Message:     "The job has been completed.",
	})
	return record, updated, nil
}

// GetForJob returns the job's completion record to its participants.
func (s *CompletionService) GetForJob(ctx context.Context, jobID, requesterID string) (*model.CompletionRecord, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsParticipant(requesterID) {
		return nil, apperrors.Unauthorized("only job participants can view the completion record")
	}
	return s.records.GetForJob(ctx, jobID)
}

func validRatings(workerRating, posterRating *int) error {
	if !model.RatingValid(workerRating) {
		return apperrors.New(apperrors.ErrCodeInvalidRating, "worker rating must be between 1 and 5")
	}
	if !model.RatingValid(posterRating) {
		return apperrors.New(apperrors.ErrCodeInvalidRating, "poster rating must be between 1 and 5")
	}
	return nil
}
