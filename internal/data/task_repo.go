package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
)

// TaskRepo provides database operations for job task checklists.
type TaskRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewTaskRepo creates a new TaskRepo instance.
func NewTaskRepo(db *sql.DB, cfg RepoConfig) *TaskRepo {
	return &TaskRepo{
		DB:           db,
		timeProvider: cfg.timeProvider(),
		logger:       cfg.Logger,
	}
}

const taskColumns = `
  id,
  job_id,
  description,
  is_completed,
  completed_by,
  completed_at,
  created_at,
  updated_at
`

func scanTask(row rowScanner) (*model.TaskItem, error) {
	var (
		t           model.TaskItem
		completedBy sql.NullString
		completedAt sql.NullTime
	)

	err := row.Scan(
		&t.ID,
		&t.JobID,
		&t.Description,
		&t.IsCompleted,
		&completedBy,
		&completedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedBy.Valid {
		t.CompletedBy = &completedBy.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

// Create inserts a new incomplete task for a job.
func (r *TaskRepo) Create(ctx context.Context, req *model.CreateTaskRequest) (*model.TaskItem, error) {
	if req == nil {
		return nil, errors.New("create task request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO job_tasks (job_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING `+taskColumns,
		req.JobID, strings.TrimSpace(req.Description), now,
	)

	task, err := scanTask(row)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("insert task: %w", err))
	}
	return task, nil
}

// GetByID returns a task by its ID.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*model.TaskItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("task id is required")
	}

	row := r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM job_tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("task %s not found", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get task: %w", err))
	}
	return task, nil
}

// ListForJob returns a job's tasks in creation order.
func (r *TaskRepo) ListForJob(ctx context.Context, jobID string) ([]*model.TaskItem, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM job_tasks WHERE job_id = $1 ORDER BY created_at ASC, id ASC`, jobID)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list tasks: %w", err))
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := []*model.TaskItem{}
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan task: %w", scanErr)
		}
		tasks = append(tasks, task)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("iterate tasks: %w", rowsErr))
	}
	return tasks, nil
}

// SetCompleted toggles a task. Re-marking with the same value is a no-op
// overwrite, not an error, so the operation is idempotent for clients that
// retry.
func (r *TaskRepo) SetCompleted(
	ctx context.Context,
	params core.SetTaskCompletedParams,
) (*model.TaskItem, error) {
	if strings.TrimSpace(params.TaskID) == "" {
		return nil, errors.New("task id is required")
	}

	now := r.timeProvider.Now()

	var row *sql.Row
	if params.Completed {
		row = r.DB.QueryRowContext(ctx, `
			UPDATE job_tasks
			SET is_completed = TRUE, completed_by = $2, completed_at = $3, updated_at = $3
			WHERE id = $1
			RETURNING `+taskColumns,
			params.TaskID, params.ActorID, now,
		)
	} else {
		row = r.DB.QueryRowContext(ctx, `
			UPDATE job_tasks
			SET is_completed = FALSE, completed_by = NULL, completed_at = NULL, updated_at = $2
			WHERE id = $1
			RETURNING `+taskColumns,
			params.TaskID, now,
		)
	}

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("task %s not found", params.TaskID)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("toggle task: %w", err))
	}
	return task, nil
}

// Progress reports how many of a job's tasks are complete.
func (r *TaskRepo) Progress(ctx context.Context, jobID string) (model.ChecklistProgress, error) {
	if strings.TrimSpace(jobID) == "" {
		return model.ChecklistProgress{}, ErrJobIDRequired
	}

	var progress model.ChecklistProgress
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_completed), COUNT(*)
		FROM job_tasks
		WHERE job_id = $1`, jobID).Scan(&progress.Completed, &progress.Total)
	if err != nil {
		return model.ChecklistProgress{}, apperrors.MapDBError(fmt.Errorf("task progress: %w", err))
	}
	return progress, nil
}

var _ core.TaskRepository = (*TaskRepo)(nil)
