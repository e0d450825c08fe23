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
	"github.com/quickgig/quickgig-api/internal/domain/geo"
	"github.com/quickgig/quickgig-api/internal/data/pgxutil"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
)

// RepoConfig holds configuration options shared by the repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

func (c RepoConfig) timeProvider() TimeProvider {
	if c.TimeProvider != nil {
		return c.TimeProvider
	}
	return &RealTimeProvider{}
}

// JobRepo provides database operations for job lifecycle management.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	return &JobRepo{
		DB:           db,
		timeProvider: cfg.timeProvider(),
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  id,
  poster_id,
  worker_id,
  title,
  description,
  status,
  latitude,
  longitude,
  display_address,
  payment_amount,
  payment_type,
  estimated_hours,
  started_at,
  completed_at,
  worker_last_latitude,
  worker_last_longitude,
  worker_last_recorded_at,
  version,
  created_at,
  updated_at
`

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		j           model.Job
		lastLat     sql.NullFloat64
		lastLon     sql.NullFloat64
		lastRecAt   sql.NullTime
		workerID    sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
		estHours    sql.NullFloat64
	)

	err := row.Scan(
		&j.ID,
		&j.PosterID,
		&workerID,
		&j.Title,
		&j.Description,
		&j.Status,
		&j.Location.Latitude,
		&j.Location.Longitude,
		&j.Location.DisplayAddress,
		&j.PaymentAmount,
		&j.PaymentType,
		&estHours,
		&startedAt,
		&completedAt,
		&lastLat,
		&lastLon,
		&lastRecAt,
		&j.Version,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if workerID.Valid {
		j.WorkerID = &workerID.String
	}
	if estHours.Valid {
		j.EstimatedHours = &estHours.Float64
	}
	if startedAt.Valid {
		j.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}
	if lastLat.Valid && lastLon.Valid && lastRecAt.Valid {
		j.WorkerLastLocation = &model.WorkerLocation{
			Coordinates: model.Coordinates{Latitude: lastLat.Float64, Longitude: lastLon.Float64},
			RecordedAt:  lastRecAt.Time,
		}
	}

	return &j, nil
}

// Create inserts a new open job along with its initial tasks, all in one
// transaction.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now()

	var job *model.Job
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			row := tx.QueryRow(ctx, `
				INSERT INTO jobs (
					poster_id, title, description, status,
					latitude, longitude, display_address,
					payment_amount, payment_type, estimated_hours,
					created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
				RETURNING `+jobColumns,
				req.PosterID, req.Title, req.Description, model.JobStatusOpen,
				req.Location.Latitude, req.Location.Longitude, req.Location.DisplayAddress,
				req.PaymentAmount, req.PaymentType, req.EstimatedHours,
				now,
			)

			var scanErr error
			job, scanErr = scanJob(row)
			if scanErr != nil {
				return fmt.Errorf("insert job: %w", scanErr)
			}

			for _, description := range req.Tasks {
				if _, insertErr := tx.Exec(ctx, `
					INSERT INTO job_tasks (job_id, description, created_at, updated_at)
					VALUES ($1, $2, $3, $3)`,
					job.ID, strings.TrimSpace(description), now,
				); insertErr != nil {
					return fmt.Errorf("insert initial task: %w", insertErr)
				}
			}
			return nil
		},
	})
	if txErr != nil {
		return nil, apperrors.MapDBError(txErr)
	}

	return job, nil
}

// GetByID returns a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrJobIDRequired
	}

	row := r.DB.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get job: %w", err))
	}
	return job, nil
}

// ListOpen returns open jobs, newest first, for the marketplace browse view.
func (r *JobRepo) ListOpen(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	return r.list(ctx, `SELECT `+jobColumns+`
		FROM jobs
		WHERE status = 'open'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset)
}

// ListByPoster returns the poster's jobs, newest first.
func (r *JobRepo) ListByPoster(
	ctx context.Context,
	posterID string,
	opts model.JobListOptions,
) ([]*model.Job, error) {
	if strings.TrimSpace(posterID) == "" {
		return nil, errors.New("poster id is required")
	}
	return r.list(ctx, `SELECT `+jobColumns+`
		FROM jobs
		WHERE poster_id = $3
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset, posterID)
}

func (r *JobRepo) list(ctx context.Context, query string, args ...any) ([]*model.Job, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list jobs: %w", err))
	}
	defer func() {
		_ = rows.Close()
	}()

	jobs := []*model.Job{}
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("iterate jobs: %w", rowsErr))
	}
	return jobs, nil
}

// Transition atomically applies a validated status change using optimistic
// concurrency: the UPDATE is conditioned on the stored version still matching
// params.ExpectedVersion, and every write bumps the version. When a gate
// sample is present the audit append rides in the same transaction.
func (r *JobRepo) Transition(ctx context.Context, params core.TransitionParams) (*model.Job, error) {
	if strings.TrimSpace(params.JobID) == "" {
		return nil, ErrJobIDRequired
	}
	if !params.To.Valid() {
		return nil, fmt.Errorf("invalid target status: %q", params.To)
	}

	now := r.timeProvider.Now()

	sets := []string{"status = $3", "updated_at = $4", "version = version + 1"}
	args := []any{params.JobID, params.ExpectedVersion, params.To, now}

	if params.SetWorkerID != nil {
		args = append(args, *params.SetWorkerID)
		sets = append(sets, fmt.Sprintf("worker_id = $%d", len(args)))
	}
	if params.MarkStarted {
		sets = append(sets, "started_at = $4")
	}
	if params.MarkCompleted {
		sets = append(sets, "completed_at = $4")
	}
	if params.GateSample != nil {
		args = append(args, params.GateSample.Latitude)
		sets = append(sets, fmt.Sprintf("worker_last_latitude = $%d", len(args)))
		args = append(args, params.GateSample.Longitude)
		sets = append(sets, fmt.Sprintf("worker_last_longitude = $%d", len(args)))
		args = append(args, params.GateSample.CapturedAt)
		sets = append(sets, fmt.Sprintf("worker_last_recorded_at = $%d", len(args)))
	}

	query := `UPDATE jobs SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1 AND version = $2
		RETURNING ` + jobColumns

	var job *model.Job
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			row := tx.QueryRow(ctx, query, args...)

			var scanErr error
			job, scanErr = scanJob(row)
			if scanErr != nil {
				if errors.Is(scanErr, pgx.ErrNoRows) {
					return r.classifyMissedUpdate(ctx, params)
				}
				return fmt.Errorf("update job status: %w", scanErr)
			}

			if params.GateSample != nil {
				if auditErr := appendLocationAudit(ctx, tx, auditParams{
					Job:    job,
					Sample: params.GateSample,
					Result: params.GateResult,
					Now:    now,
				}); auditErr != nil {
					return auditErr
				}
			}
			return nil
		},
	})
	if txErr != nil {
		return nil, apperrors.MapDBError(txErr)
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "job transitioned",
			"id", job.ID, "status", job.Status, "version", job.Version)
	}
	return job, nil
}

// classifyMissedUpdate distinguishes "job gone" from "version moved" after a
// conditional update touched zero rows.
func (r *JobRepo) classifyMissedUpdate(ctx context.Context, params core.TransitionParams) error {
	var version int64
	err := r.DB.QueryRowContext(ctx, `SELECT version FROM jobs WHERE id = $1`, params.JobID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFoundf("job %s not found", params.JobID)
	}
	if err != nil {
		return fmt.Errorf("check job version: %w", err)
	}
	return apperrors.Conflictf(
		"job %s changed (version %d, expected %d); re-read and retry",
		params.JobID, version, params.ExpectedVersion)
}

type auditParams struct {
	Job    *model.Job
	Sample *model.LocationSample
	Result *geo.VerificationResult
	Now    time.Time
}

// UpdateWorkerLocation overwrites worker_last_location while the job is in
// progress. Last write wins: samples captured at or before the stored
// recorded_at are discarded, so late arrivals can never move the pointer
// backwards. The job version is deliberately not bumped; tracking writes must
// not fail concurrent transitions.
func (r *JobRepo) UpdateWorkerLocation(
	ctx context.Context,
	params core.WorkerLocationParams,
) (bool, error) {
	if strings.TrimSpace(params.JobID) == "" {
		return false, ErrJobIDRequired
	}
	if strings.TrimSpace(params.WorkerID) == "" {
		return false, ErrWorkerIDRequired
	}
	if err := params.Sample.Validate(); err != nil {
		return false, apperrors.Validation(err.Error())
	}

	result, err := r.DB.ExecContext(ctx, `
		UPDATE jobs SET
			worker_last_latitude = $3,
			worker_last_longitude = $4,
			worker_last_recorded_at = $5,
			updated_at = $6
		WHERE id = $1
		  AND worker_id = $2
		  AND status = 'in_progress'
		  AND (worker_last_recorded_at IS NULL OR worker_last_recorded_at < $5)`,
		params.JobID, params.WorkerID,
		params.Sample.Latitude, params.Sample.Longitude, params.Sample.CapturedAt,
		r.timeProvider.Now(),
	)
	if err != nil {
		return false, apperrors.MapDBError(fmt.Errorf("update worker location: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// LocationAudit returns the accepted gate samples for a job, newest first.
func (r *JobRepo) LocationAudit(ctx context.Context, jobID string) ([]*model.LocationAuditEntry, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, job_id, worker_id, latitude, longitude, accuracy_meters,
		       distance_meters, confidence, captured_at, created_at
		FROM job_location_audit
		WHERE job_id = $1
		ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list location audit: %w", err))
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := []*model.LocationAuditEntry{}
	for rows.Next() {
		var e model.LocationAuditEntry
		if scanErr := rows.Scan(
			&e.ID, &e.JobID, &e.WorkerID, &e.Latitude, &e.Longitude, &e.AccuracyMeters,
			&e.DistanceMeters, &e.Confidence, &e.CapturedAt, &e.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan audit entry: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("iterate audit entries: %w", rowsErr))
	}
	return entries, nil
}

func appendLocationAudit(ctx context.Context, tx pgx.Tx, p auditParams) error {
	workerID := ""
	if p.Job.WorkerID != nil {
		workerID = *p.Job.WorkerID
	}

	distance := 0.0
	confidence := ""
	if p.Result != nil {
		distance = p.Result.DistanceMeters
		confidence = string(p.Result.Confidence)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO job_location_audit (
			job_id, worker_id, latitude, longitude, accuracy_meters,
			distance_meters, confidence, captured_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.Job.ID, workerID,
		p.Sample.Latitude, p.Sample.Longitude, p.Sample.AccuracyMeters,
		distance, confidence, p.Sample.CapturedAt, p.Now,
	); err != nil {
		return fmt.Errorf("append location audit: %w", err)
	}
	return nil
}

var _ core.JobRepository = (*JobRepo)(nil)
