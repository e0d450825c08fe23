package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/data/pgxutil"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
)

// ApplicationRepo provides database operations for job applications.
type ApplicationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewApplicationRepo creates a new ApplicationRepo instance.
func NewApplicationRepo(db *sql.DB, cfg RepoConfig) *ApplicationRepo {
	return &ApplicationRepo{
		DB:           db,
		timeProvider: cfg.timeProvider(),
		logger:       cfg.Logger,
	}
}

const applicationColumns = `
  id,
  job_id,
  worker_id,
  status,
  hourly_rate,
  expected_duration_hours,
  message,
  created_at,
  updated_at
`

func scanApplication(row rowScanner) (*model.Application, error) {
	var (
		a        model.Application
		rate     sql.NullFloat64
		duration sql.NullFloat64
	)

	err := row.Scan(
		&a.ID,
		&a.JobID,
		&a.WorkerID,
		&a.Status,
		&rate,
		&duration,
		&a.Message,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rate.Valid {
		a.HourlyRate = &rate.Float64
	}
	if duration.Valid {
		a.ExpectedDurationHours = &duration.Float64
	}
	return &a, nil
}

// Create inserts a pending application. The partial unique index on
// (job_id, worker_id) where status <> 'rejected' backstops the
// one-live-application rule under concurrent applies; its violation surfaces
// as an already-applied error.
func (r *ApplicationRepo) Create(ctx context.Context, req *model.ApplyRequest) (*model.Application, error) {
	if req == nil {
		return nil, errors.New("apply request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO applications (
			job_id, worker_id, status, hourly_rate, expected_duration_hours,
			message, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+applicationColumns,
		req.JobID, req.WorkerID, model.ApplicationStatusPending,
		req.HourlyRate, req.ExpectedDurationHours, req.Message, now,
	)

	app, err := scanApplication(row)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("insert application: %w", err))
	}
	return app, nil
}

// GetByID returns an application by its ID.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("application id is required")
	}

	row := r.DB.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("application %s not found", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get application: %w", err))
	}
	return app, nil
}

// AcceptAndAssign commits the accept decision and the job's open → assigned
// transition in one transaction. Either both land or neither does: a crash in
// between can never leave an accepted application on a still-open job.
func (r *ApplicationRepo) AcceptAndAssign(
	ctx context.Context,
	params core.AcceptParams,
) (*model.Application, *model.Job, error) {
	if strings.TrimSpace(params.ApplicationID) == "" {
		return nil, nil, errors.New("application id is required")
	}
	if strings.TrimSpace(params.JobID) == "" {
		return nil, nil, ErrJobIDRequired
	}

	now := r.timeProvider.Now()

	var (
		app *model.Application
		job *model.Job
	)
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			appRow := tx.QueryRow(ctx, `
				UPDATE applications
				SET status = $2, updated_at = $3
				WHERE id = $1 AND status = 'pending'
				RETURNING `+applicationColumns,
				params.ApplicationID, model.ApplicationStatusAccepted, now,
			)

			var scanErr error
			app, scanErr = scanApplication(appRow)
			if scanErr != nil {
				if errors.Is(scanErr, pgx.ErrNoRows) {
					return apperrors.New(apperrors.ErrCodeAlreadyDecided,
						"application has already been decided")
				}
				return fmt.Errorf("accept application: %w", scanErr)
			}

			jobRow := tx.QueryRow(ctx, `
				UPDATE jobs
				SET status = $3, worker_id = $4, updated_at = $5, version = version + 1
				WHERE id = $1 AND version = $2 AND status = 'open'
				RETURNING `+jobColumns,
				params.JobID, params.ExpectedJobVersion,
				model.JobStatusAssigned, params.WorkerID, now,
			)

			job, scanErr = scanJob(jobRow)
			if scanErr != nil {
				if errors.Is(scanErr, pgx.ErrNoRows) {
					// Rolls back the application update too.
					return apperrors.Conflictf(
						"job %s is no longer open at version %d; re-read and retry",
						params.JobID, params.ExpectedJobVersion)
				}
				return fmt.Errorf("assign job: %w", scanErr)
			}
			return nil
		},
	})
	if txErr != nil {
		return nil, nil, apperrors.MapDBError(txErr)
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "application accepted and job assigned",
			"application_id", app.ID, "job_id", job.ID, "worker_id", params.WorkerID)
	}
	return app, job, nil
}

// MarkRejected flips a pending application to rejected. No job transition.
func (r *ApplicationRepo) MarkRejected(ctx context.Context, id string) (*model.Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("application id is required")
	}

	row := r.DB.QueryRowContext(ctx, `
		UPDATE applications
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING `+applicationColumns,
		id, model.ApplicationStatusRejected, r.timeProvider.Now(),
	)

	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.ErrCodeAlreadyDecided,
				"application has already been decided")
		}
		return nil, apperrors.MapDBError(fmt.Errorf("reject application: %w", err))
	}
	return app, nil
}

// ListForJob returns a job's applications in the requested order. The rating
// order joins each worker's average received rating from approved completion
// records; workers without ratings sort last. All orders are stable with
// created_at breaking ties.
func (r *ApplicationRepo) ListForJob(
	ctx context.Context,
	jobID string,
	order model.ApplicationOrder,
) ([]*model.Application, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	var query string
	switch order {
	case model.ApplicationOrderRate:
		query = `SELECT ` + applicationColumns + `
			FROM applications
			WHERE job_id = $1
			ORDER BY hourly_rate DESC NULLS LAST, created_at DESC`
	case model.ApplicationOrderRating:
		query = `SELECT a.id, a.job_id, a.worker_id, a.status, a.hourly_rate,
				a.expected_duration_hours, a.message, a.created_at, a.updated_at
			FROM applications a
			LEFT JOIN (
				SELECT j.worker_id, AVG(cr.worker_rating) AS rating
				FROM completion_records cr
				JOIN jobs j ON j.id = cr.job_id
				WHERE cr.worker_rating IS NOT NULL AND j.worker_id IS NOT NULL
				GROUP BY j.worker_id
			) wr ON wr.worker_id = a.worker_id
			WHERE a.job_id = $1
			ORDER BY wr.rating DESC NULLS LAST, a.created_at DESC`
	default:
		query = `SELECT ` + applicationColumns + `
			FROM applications
			WHERE job_id = $1
			ORDER BY created_at DESC`
	}

	return r.listApplications(ctx, query, jobID)
}

// ListForWorker returns a worker's applications, newest first.
func (r *ApplicationRepo) ListForWorker(ctx context.Context, workerID string) ([]*model.Application, error) {
	if strings.TrimSpace(workerID) == "" {
		return nil, ErrWorkerIDRequired
	}

	return r.listApplications(ctx, `SELECT `+applicationColumns+`
		FROM applications
		WHERE worker_id = $1
		ORDER BY created_at DESC`, workerID)
}

func (r *ApplicationRepo) listApplications(
	ctx context.Context,
	query string,
	args ...any,
) ([]*model.Application, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list applications: %w", err))
	}
	defer func() {
		_ = rows.Close()
	}()

	apps := []*model.Application{}
	for rows.Next() {
		app, scanErr := scanApplication(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan application: %w", scanErr)
		}
		apps = append(apps, app)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("iterate applications: %w", rowsErr))
	}
	return apps, nil
}

var _ core.ApplicationRepository = (*ApplicationRepo)(nil)
