package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/event"
	"github.com/quickgig/quickgig-api/internal/domain/geo"
	jobdomain "github.com/quickgig/quickgig-api/internal/domain/job"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
	"github.com/quickgig/quickgig-api/internal/ports"
)

// JobServiceOptions groups dependencies for JobService. JobRepo and Verifier
// are required; everything else degrades gracefully when absent.
type JobServiceOptions struct {
	JobRepo  core.JobRepository
	Verifier *geo.Verifier
	Tracker  core.LocationTracker
	Bus      *event.Bus
	Notifier ports.Notifier
	Payments ports.PaymentProvider
	Logger   *slog.Logger
	Clock    core.Clock
}

// JobService orchestrates the job lifecycle: posting, the location-gated
// start, worker tracking, cancellation and the payment phase. Status changes
// go through the transition table and the repository's optimistic write, so a
// concurrent writer surfaces as a conflict rather than a lost update.
type JobService struct {
	jobs     core.JobRepository
	verifier *geo.Verifier
	tracker  core.LocationTracker
	bus      *event.Bus
	notifier ports.Notifier
	payments ports.PaymentProvider
	logger   *slog.Logger
	clock    core.Clock
}

// NewJobService constructs a JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.JobRepo == nil {
		return nil, errors.New("job repository is required")
	}
	if opts.Verifier == nil {
		return nil, errors.New("geo verifier is required")
	}
	return &JobService{
		jobs:     opts.JobRepo,
		verifier: opts.Verifier,
		tracker:  opts.Tracker,
		bus:      opts.Bus,
		notifier: opts.Notifier,
		payments: opts.Payments,
		logger:   opts.Logger,
		clock:    opts.Clock,
	}, nil
}

// MustNewJobService constructs a JobService and panics on error.
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

func (s *JobService) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return time.Now()
}

func (s *JobService) publish(e event.Event) {
	if s.bus == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	s.bus.Publish(e)
}

func (s *JobService) notify(ctx context.Context, n ports.Notification) {
	if s.notifier == nil || n.RecipientID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			"job_id", n.JobID, "recipient_id", n.RecipientID, "kind", n.Kind, "err", err)
	}
}

// Create posts a new job in the open state.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.jobs.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.publish(event.Event{Kind: event.KindJobPosted, JobID: job.ID, ActorID: job.PosterID})
	return job, nil
}

// Get returns a job by id.
func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// ListOpen returns open jobs for worker discovery, newest first.
func (s *JobService) ListOpen(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	return s.jobs.ListOpen(ctx, opts)
}

// ListByPoster returns a poster's jobs regardless of status.
func (s *JobService) ListByPoster(ctx context.Context, posterID string, opts model.JobListOptions) ([]*model.Job, error) {
	return s.jobs.ListByPoster(ctx, posterID, opts)
}

// Start moves an assigned job to in_progress after the geofence gate accepts
// the worker's location sample. The accepted sample and its verification
// outcome are persisted with the transition. On a gate rejection the returned
// error carries the full verification result as details.
func (s *JobService) Start(ctx context.Context, jobID, workerID string, sample *model.LocationSample) (*model.Job, *geo.VerificationResult, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	if job.WorkerID == nil || *job.WorkerID != workerID {
		return nil, nil, apperrors.Unauthorized("only the assigned worker can start the job")
	}
	if !jobdomain.Allowed(jobdomain.Transition{From: job.Status, To: model.JobStatusInProgress}, jobdomain.ActorWorker) {
		return nil, nil, apperrors.InvalidTransitionf("cannot start a job in status %q", job.Status)
	}

	if sample == nil {
		return nil, nil, apperrors.New(apperrors.ErrCodeLocationUnavailable, "a location sample is required to start the job")
	}
	if err := sample.Validate(); err != nil {
		return nil, nil, apperrors.Validation(err.Error())
	}
	if !job.Location.Coordinates.Valid() {
		return nil, nil, apperrors.New(apperrors.ErrCodeMissingLocation, "job has no location anchor")
	}

	result := s.verifier.Verify(*sample, job.Location.Coordinates)
	if !result.IsValid {
		return nil, &result, apperrors.Newf(
			apperrors.ErrCodeLocationVerificationFailed,
			"worker is %.0fm from the job site (limit %.0fm)",
			result.DistanceMeters, s.verifier.MaxRadiusMeters(),
		).WithDetails(result)
	}

	updated, err := s.jobs.Transition(ctx, core.TransitionParams{
		JobID:           job.ID,
		ExpectedVersion: job.Version,
		To:              model.JobStatusInProgress,
		MarkStarted:     true,
		GateSample:      sample,
		GateResult:      &result,
	})
	if err != nil {
		return nil, &result, err
	}

	s.publish(event.Event{Kind: event.KindJobStarted, JobID: updated.ID, ActorID: workerID})
	s.notify(ctx, ports.Notification{
		RecipientID: updated.PosterID,
		JobID:       updated.ID,
		Kind:        string(event.KindJobStarted),
		Message:     "The worker has arrived and started the job.",
	})
	return updated, &result, nil
}

// RecordWorkerLocation ingests one tracking sample for an in-progress job.
// Tracking is permissive and non-fatal: stale or out-of-order samples are
// discarded silently, and a hot-path store failure never fails the request.
// Returns whether the sample was accepted as the new last location.
func (s *JobService) RecordWorkerLocation(ctx context.Context, jobID, workerID string, sample model.LocationSample) (bool, error) {
	if err := sample.Validate(); err != nil {
		return false, apperrors.Validation(err.Error())
	}

	accepted, err := s.jobs.UpdateWorkerLocation(ctx, core.WorkerLocationParams{
		JobID:    jobID,
		WorkerID: workerID,
		Sample:   sample,
	})
	if err != nil {
		return false, err
	}

	if accepted && s.tracker != nil {
		if trackErr := s.tracker.Record(ctx, jobID, sample); trackErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "location tracker write failed", "job_id", jobID, "err", trackErr)
		}
	}
	if accepted {
		s.publish(event.Event{Kind: event.KindWorkerLocationUpdated, JobID: jobID, ActorID: workerID})
	}
	return accepted, nil
}

// LatestWorkerLocation returns the freshest tracked location for a job,
// falling back to the persisted last-location pointer when the hot-path store
// has nothing. Only job participants may look.
func (s *JobService) LatestWorkerLocation(ctx context.Context, jobID, requesterID string) (*model.LocationSample, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsParticipant(requesterID) {
		return nil, apperrors.Unauthorized("only job participants can view the worker location")
	}

	if s.tracker != nil {
		sample, trackErr := s.tracker.Latest(ctx, jobID)
		if trackErr != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "location tracker read failed", "job_id", jobID, "err", trackErr)
			}
		} else if sample != nil {
			return sample, nil
		}
	}

	if job.WorkerLastLocation == nil {
		return nil, nil
	}
	return &model.LocationSample{
		Coordinates: model.Coordinates{
			Latitude:  job.WorkerLastLocation.Latitude,
			Longitude: job.WorkerLastLocation.Longitude,
		},
		CapturedAt: job.WorkerLastLocation.RecordedAt,
		Source:     model.LocationSourceGPS,
	}, nil
}

// Cancel cancels a job. Posters can cancel while the job is open or assigned;
// either party can cancel once work is in progress.
func (s *JobService) Cancel(ctx context.Context, jobID, actorID string) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	role, ok := participantRole(job, actorID)
	if !ok {
		return nil, apperrors.Unauthorized("only job participants can cancel")
	}
	if !jobdomain.Allowed(jobdomain.Transition{From: job.Status, To: model.JobStatusCanceled}, role) {
		return nil, apperrors.InvalidTransitionf("cannot cancel a job in status %q as %s", job.Status, role)
	}

	updated, err := s.jobs.Transition(ctx, core.TransitionParams{
		JobID:           job.ID,
		ExpectedVersion: job.Version,
		To:              model.JobStatusCanceled,
	})
	if err != nil {
		return nil, err
	}

	s.publish(event.Event{Kind: event.KindJobCanceled, JobID: updated.ID, ActorID: actorID})
	s.notify(ctx, ports.Notification{
		RecipientID: updated.Counterpart(actorID),
		JobID:       updated.ID,
		Kind:        string(event.KindJobCanceled),
		Message:     "The job has been canceled.",
	})
	return updated, nil
}

// BeginPaymentCapture moves a completed job into pending_payment and asks the
// payment collaborator to capture. When initiation itself fails the job is
// parked in payment_failed immediately; a capture that was handed off reports
// back asynchronously through ReportPaymentResult.
func (s *JobService) BeginPaymentCapture(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !jobdomain.Allowed(jobdomain.Transition{From: job.Status, To: model.JobStatusPendingPayment}, jobdomain.ActorSystem) {
		return nil, apperrors.InvalidTransitionf("cannot begin payment for a job in status %q", job.Status)
	}

	updated, err := s.jobs.Transition(ctx, core.TransitionParams{
		JobID:           job.ID,
		ExpectedVersion: job.Version,
		To:              model.JobStatusPendingPayment,
	})
	if err != nil {
		return nil, err
	}
	s.publish(event.Event{Kind: event.KindPaymentPending, JobID: updated.ID})

	if s.payments == nil {
		return updated, nil
	}

	workerID := ""
	if updated.WorkerID != nil {
		workerID = *updated.WorkerID
	}
	captureErr := s.payments.InitiateCapture(ctx, ports.CaptureRequest{
		JobID:    updated.ID,
		PosterID: updated.PosterID,
		WorkerID: workerID,
		Amount:   updated.PaymentAmount,
	})
	if captureErr == nil {
		return updated, nil
	}

	if s.logger != nil {
		s.logger.ErrorContext(ctx, "payment capture initiation failed", "job_id", updated.ID, "err", captureErr)
	}
	failed, failErr := s.ReportPaymentResult(ctx, updated.ID, false)
	if failErr != nil {
		return updated, failErr
	}
	return failed, apperrors.Internal("initiate payment capture", captureErr)
}

// ReportPaymentResult is the payment collaborator's callback: success settles
// the job back to completed, failure parks it in payment_failed for manual
// intervention. Settlement publishes payment_settled, not job_completed: the
// job has already been through completion once and must not re-enter the
// capture flow.
func (s *JobService) ReportPaymentResult(ctx context.Context, jobID string, succeeded bool) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	to := model.JobStatusPaymentFailed
	if succeeded {
		to = model.JobStatusCompleted
	}
	if !jobdomain.Allowed(jobdomain.Transition{From: job.Status, To: to}, jobdomain.ActorPayment) {
		return nil, apperrors.InvalidTransitionf("cannot report payment result for a job in status %q", job.Status)
	}

	updated, err := s.jobs.Transition(ctx, core.TransitionParams{
		JobID:           job.ID,
		ExpectedVersion: job.Version,
		To:              to,
	})
	if err != nil {
		return nil, err
	}

	if succeeded {
		s.publish(event.Event{Kind: event.KindPaymentSettled, JobID: updated.ID})
	} else {
		s.publish(event.Event{Kind: event.KindPaymentFailed, JobID: updated.ID})
		s.notify(ctx, ports.Notification{
			RecipientID: updated.PosterID,
			JobID:       updated.ID,
			Kind:        string(event.KindPaymentFailed),
			Message:     "Payment for the job failed and needs attention.",
		})
	}
	return updated, nil
}

// LocationAudit returns the accepted gate samples for a job, newest first.
// Restricted to participants; this is the record disputes are settled with.
func (s *JobService) LocationAudit(ctx context.Context, jobID, requesterID string) ([]*model.LocationAuditEntry, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsParticipant(requesterID) {
		return nil, apperrors.Unauthorized("only job participants can view the location audit trail")
	}
	return s.jobs.LocationAudit(ctx, jobID)
}

// participantRole maps a user to their transition-table role on the job.
func participantRole(job *model.Job, userID string) (jobdomain.Actor, bool) {
	switch {
	case userID == "":
		return "", false
	case job.PosterID == userID:
		return jobdomain.ActorPoster, true
	case job.WorkerID != nil && *job.WorkerID == userID:
		return jobdomain.ActorWorker, true
	}
	return "", false
}
