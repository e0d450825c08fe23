package core

import (
	"context"
	"time"

	"github.com/quickgig/quickgig-api/internal/domain/geo"
	"github.com/quickgig/quickgig-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// TransitionParams groups parameters for JobRepository.Transition. The write
// is optimistic: it only lands when the stored version still equals
// ExpectedVersion, and every successful write increments the version.
type TransitionParams struct {
	JobID           string
	ExpectedVersion int64
	To              model.JobStatus
	// SetWorkerID assigns the worker (open → assigned).
	SetWorkerID *string
	// MarkStarted stamps started_at and records the gate sample (assigned → in_progress).
	MarkStarted bool
	// MarkCompleted stamps completed_at (in_progress → completed).
	MarkCompleted bool
	// GateSample is the location sample accepted by the start gate; persisted
	// as worker_last_location and appended to the audit trail together with
	// the verification outcome.
	GateSample *model.LocationSample
	// GateResult is the verification outcome for the audit trail.
	GateResult *geo.VerificationResult
}

// WorkerLocationParams groups parameters for JobRepository.UpdateWorkerLocation.
type WorkerLocationParams struct {
	JobID    string
	WorkerID string
	Sample   model.LocationSample
}

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	ListOpen(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error)
	ListByPoster(ctx context.Context, posterID string, opts model.JobListOptions) ([]*model.Job, error)
	// Transition atomically applies a validated status change. It fails with
	// a conflict error when the version moved underneath the caller, and
	// never partially applies.
	Transition(ctx context.Context, params TransitionParams) (*model.Job, error)
	// UpdateWorkerLocation overwrites worker_last_location, last write wins.
	// Returns false when the write was discarded as stale or out of order.
	UpdateWorkerLocation(ctx context.Context, params WorkerLocationParams) (bool, error)
	// LocationAudit returns the accepted gate samples for dispute resolution,
	// newest first.
	LocationAudit(ctx context.Context, jobID string) ([]*model.LocationAuditEntry, error)
}

// AcceptParams groups parameters for ApplicationRepository.AcceptAndAssign.
type AcceptParams struct {
	ApplicationID      string
	JobID              string
	WorkerID           string
	ExpectedJobVersion int64
}

// ApplicationRepository defines the interface for application data operations.
type ApplicationRepository interface {
	Create(ctx context.Context, req *model.ApplyRequest) (*model.Application, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	// AcceptAndAssign flips the application to accepted and the job to
	// assigned in a single transaction: a crash can never leave an accepted
	// application pointing at a still-open job.
	AcceptAndAssign(ctx context.Context, params AcceptParams) (*model.Application, *model.Job, error)
	MarkRejected(ctx context.Context, id string) (*model.Application, error)
	ListForJob(ctx context.Context, jobID string, order model.ApplicationOrder) ([]*model.Application, error)
	ListForWorker(ctx context.Context, workerID string) ([]*model.Application, error)
}

// SetTaskCompletedParams groups parameters for TaskRepository.SetCompleted.
type SetTaskCompletedParams struct {
	TaskID    string
	ActorID   string
	Completed bool
}

// TaskRepository defines the interface for job task data operations.
type TaskRepository interface {
	Create(ctx context.Context, req *model.CreateTaskRequest) (*model.TaskItem, error)
	GetByID(ctx context.Context, id string) (*model.TaskItem, error)
	ListForJob(ctx context.Context, jobID string) ([]*model.TaskItem, error)
	SetCompleted(ctx context.Context, params SetTaskCompletedParams) (*model.TaskItem, error)
	Progress(ctx context.Context, jobID string) (model.ChecklistProgress, error)
}

// CompletionRequestParams groups parameters for creating a completion record.
type CompletionRequestParams struct {
	JobID       string
	RequestedBy string
	Notes       string
}

// CompletionApproveParams groups parameters for finalizing a completion. The
// job write is optimistic against ExpectedJobVersion, like Transition.
type CompletionApproveParams struct {
	JobID              string
	ApprovedBy         string
	WorkerRating       *int
	PosterRating       *int
	ExpectedJobVersion int64
}

// CompletionRepository defines the interface for completion record data operations.
type CompletionRepository interface {
	// GetForJob returns the job's completion record, or a not-found error
	// when the handshake has not begun.
	GetForJob(ctx context.Context, jobID string) (*model.CompletionRecord, error)
	CreateRequested(ctx context.Context, params CompletionRequestParams) (*model.CompletionRecord, error)
	// CreateApprovedAndComplete is the direct-completion path: the record is
	// born approved and the job moves in_progress → completed in the same
	// transaction.
	CreateApprovedAndComplete(ctx context.Context, params CompletionApproveParams) (*model.CompletionRecord, *model.Job, error)
	// ApproveAndComplete finalizes a requested record and completes the job
	// in one transaction. A version conflict on the job rolls back the record
	// approval too, so the request stays pending and the caller can retry.
	ApproveAndComplete(ctx context.Context, params CompletionApproveParams) (*model.CompletionRecord, *model.Job, error)
}

// LocationTracker stores the high-frequency worker tracking stream. Last
// write wins; entries expire on their own.
type LocationTracker interface {
	Record(ctx context.Context, jobID string, sample model.LocationSample) error
	Latest(ctx context.Context, jobID string) (*model.LocationSample, error)
}

// Clock abstracts time for services so tests can pin it.
type Clock interface {
	Now() time.Time
}
