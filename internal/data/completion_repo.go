package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/data/pgxutil"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
)

// CompletionRepo provides database operations for completion records.
type CompletionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewCompletionRepo creates a new CompletionRepo instance.
func NewCompletionRepo(db *sql.DB, cfg RepoConfig) *CompletionRepo {
	return &CompletionRepo{
		DB:           db,
		timeProvider: cfg.timeProvider(),
		logger:       cfg.Logger,
	}
}

const completionColumns = `
  id,
  job_id,
  status,
  notes,
  requested_by,
  approved_by,
  worker_rating,
  poster_rating,
  requested_at,
  approved_at
`

func scanCompletion(row rowScanner) (*model.CompletionRecord, error) {
	var (
		c            model.CompletionRecord
		approvedBy   sql.NullString
		workerRating sql.NullInt64
		posterRating sql.NullInt64
		approvedAt   sql.NullTime
	)

	err := row.Scan(
		&c.ID,
		&c.JobID,
		&c.Status,
		&c.Notes,
		&c.RequestedBy,
		&approvedBy,
		&workerRating,
		&posterRating,
		&c.RequestedAt,
		&approvedAt,
	)
	if err != nil {
		return nil, err
	}

	if approvedBy.Valid {
		c.ApprovedBy = &approvedBy.String
	}
	if workerRating.Valid {
		v := int(workerRating.Int64)
		c.WorkerRating = &v
	}
	if posterRating.Valid {
		v := int(posterRating.Int64)
		c.PosterRating = &v
	}
	if approvedAt.Valid {
		c.ApprovedAt = &approvedAt.Time
	}
	return &c, nil
}

// GetForJob returns the job's completion record, or a not-found error when
// the handshake has not begun. One record per job, enforced by schema.
func (r *CompletionRepo) GetForJob(ctx context.Context, jobID string) (*model.CompletionRecord, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	row := r.DB.QueryRowContext(ctx,
		`SELECT `+completionColumns+` FROM completion_records WHERE job_id = $1`, jobID)
	record, err := scanCompletion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("no completion record for job %s", jobID)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get completion record: %w", err))
	}
	return record, nil
}

// CreateRequested starts the completion handshake.
func (r *CompletionRepo) CreateRequested(
	ctx context.Context,
	params core.CompletionRequestParams,
) (*model.CompletionRecord, error) {
	if strings.TrimSpace(params.JobID) == "" {
		return nil, ErrJobIDRequired
	}
	if strings.TrimSpace(params.RequestedBy) == "" {
		return nil, errors.New("requested_by is required")
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO completion_records (job_id, status, notes, requested_by, requested_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+completionColumns,
		params.JobID, model.CompletionStatusRequested, params.Notes,
		params.RequestedBy, r.timeProvider.Now(),
	)

	record, err := scanCompletion(row)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("insert completion request: %w", err))
	}
	return record, nil
}

// completeJobSQL moves the job in_progress → completed with the optimistic
// version check; shared by both completion paths.
const completeJobSQL = `
	UPDATE jobs
	SET status = $3, completed_at = $4, updated_at = $4, version = version + 1
	WHERE id = $1 AND version = $2 AND status = 'in_progress'
	RETURNING ` + jobColumns

// CreateApprovedAndComplete records the direct-completion path: the checklist
// was already done, so the record is born approved and the job completes in
// the same transaction.
func (r *CompletionRepo) CreateApprovedAndComplete(
	ctx context.Context,
	params core.CompletionApproveParams,
) (*model.CompletionRecord, *model.Job, error) {
	if strings.TrimSpace(params.JobID) == "" {
		return nil, nil, ErrJobIDRequired
	}
	if strings.TrimSpace(params.ApprovedBy) == "" {
		return nil, nil, errors.New("approved_by is required")
	}

	now := r.timeProvider.Now()

	var (
		record *model.CompletionRecord
		job    *model.Job
	)
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			recordRow := tx.QueryRow(ctx, `
				INSERT INTO completion_records (
					job_id, status, notes, requested_by, approved_by,
					worker_rating, poster_rating, requested_at, approved_at
				) VALUES ($1, $2, '', $3, $3, $4, $5, $6, $6)
				RETURNING `+completionColumns,
				params.JobID, model.CompletionStatusApproved, params.ApprovedBy,
				params.WorkerRating, params.PosterRating, now,
			)

			var scanErr error
			record, scanErr = scanCompletion(recordRow)
			if scanErr != nil {
				return fmt.Errorf("insert approved completion: %w", scanErr)
			}

			job, scanErr = r.completeJob(ctx, tx, params, now)
			return scanErr
		},
	})
	if txErr != nil {
		return nil, nil, apperrors.MapDBError(txErr)
	}
	return record, job, nil
}

// ApproveAndComplete finalizes a requested record and completes the job in
// one transaction. The record update is conditioned on status so a double
// approval races to a no-pending-request error instead of overwriting, and a
// version conflict on the job rolls the approval back too.
func (r *CompletionRepo) ApproveAndComplete(
	ctx context.Context,
	params core.CompletionApproveParams,
) (*model.CompletionRecord, *model.Job, error) {
	if strings.TrimSpace(params.JobID) == "" {
		return nil, nil, ErrJobIDRequired
	}
	if strings.TrimSpace(params.ApprovedBy) == "" {
		return nil, nil, errors.New("approved_by is required")
	}

	now := r.timeProvider.Now()

	var (
		record *model.CompletionRecord
		job    *model.Job
	)
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			recordRow := tx.QueryRow(ctx, `
				UPDATE completion_records
				SET status = $2, approved_by = $3, worker_rating = $4, poster_rating = $5, approved_at = $6
				WHERE job_id = $1 AND status = 'requested'
				RETURNING `+completionColumns,
				params.JobID, model.CompletionStatusApproved, params.ApprovedBy,
				params.WorkerRating, params.PosterRating, now,
			)

			var scanErr error
			record, scanErr = scanCompletion(recordRow)
			if scanErr != nil {
				if errors.Is(scanErr, pgx.ErrNoRows) {
					return apperrors.New(apperrors.ErrCodeNoPendingRequest,
						"no pending completion request for this job")
				}
				return fmt.Errorf("approve completion: %w", scanErr)
			}

			job, scanErr = r.completeJob(ctx, tx, params, now)
			return scanErr
		},
	})
	if txErr != nil {
		return nil, nil, apperrors.MapDBError(txErr)
	}
	return record, job, nil
}

// completeJob runs the job's in_progress → completed write inside the
// caller's transaction. A missed update rolls back the whole transaction.
func (r *CompletionRepo) completeJob(
	ctx context.Context,
	tx pgx.Tx,
	params core.CompletionApproveParams,
	now time.Time,
) (*model.Job, error) {
	jobRow := tx.QueryRow(ctx, completeJobSQL,
		params.JobID, params.ExpectedJobVersion, model.JobStatusCompleted, now)

	job, err := scanJob(jobRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Rolls back the record finalization too.
			return nil, apperrors.Conflictf(
				"job %s is no longer in progress at version %d; re-read and retry",
				params.JobID, params.ExpectedJobVersion)
		}
		return nil, fmt.Errorf("complete job: %w", err)
	}
	return job, nil
}

var _ core.CompletionRepository = (*CompletionRepo)(nil)
