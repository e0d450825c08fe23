package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
)

// ChecklistServiceOptions groups dependencies for ChecklistService.
type ChecklistServiceOptions struct {
	TaskRepo core.TaskRepository
	JobRepo  core.JobRepository
	Logger   *slog.Logger
}

// ChecklistService manages a job's task checklist. The poster defines the
// checklist; either participant can toggle tasks. The checklist freezes once
// the job leaves the active phase of its lifecycle.
type ChecklistService struct {
	tasks  core.TaskRepository
	jobs   core.JobRepository
	logger *slog.Logger
}

// NewChecklistService constructs a ChecklistService.
func NewChecklistService(opts ChecklistServiceOptions) (*ChecklistService, error) {
	if opts.TaskRepo == nil {
		return nil, errors.New("task repository is required")
	}
	if opts.JobRepo == nil {
		return nil, errors.New("job repository is required")
	}
	return &ChecklistService{tasks: opts.TaskRepo, jobs: opts.JobRepo, logger: opts.Logger}, nil
}

// MustNewChecklistService constructs a ChecklistService and panics on error.
func MustNewChecklistService(opts ChecklistServiceOptions) *ChecklistService {
	svc, err := NewChecklistService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create ChecklistService: %v", err))
	}
	return svc
}

// checklistMutable reports whether the job's checklist still accepts writes.
func checklistMutable(status model.JobStatus) bool {
	switch status {
	case model.JobStatusOpen, model.JobStatusAssigned, model.JobStatusInProgress:
		return true
	}
	return false
}

// AddTask appends a task to the job's checklist. Only the poster defines the
// work; workers check it off.
func (s *ChecklistService) AddTask(ctx context.Context, req *model.CreateTaskRequest) (*model.TaskItem, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID != req.ActorID {
		return nil, apperrors.Unauthorized("only the poster can add tasks")
	}
	if !checklistMutable(job.Status) {
		return nil, apperrors.Validation("the checklist can no longer be changed")
	}

	return s.tasks.Create(ctx, req)
}

// Toggle marks a task complete or uncomplete. Both participants hold the
// capability; completion records who flipped the task and when.
func (s *ChecklistService) Toggle(ctx context.Context, taskID, actorID string, completed bool) (*model.TaskItem, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, task.JobID)
	if err != nil {
		return nil, err
	}
	if !job.IsParticipant(actorID) {
		return nil, apperrors.Unauthorized("only job participants can toggle tasks")
	}
	if !checklistMutable(job.Status) {
		return nil, apperrors.Validation("the checklist can no longer be changed")
	}

	return s.tasks.SetCompleted(ctx, core.SetTaskCompletedParams{
		TaskID:    taskID,
		ActorID:   actorID,
		Completed: completed,
	})
}

// List returns the job's tasks in creation order.
func (s *ChecklistService) List(ctx context.Context, jobID string) ([]*model.TaskItem, error) {
	return s.tasks.ListForJob(ctx, jobID)
}

// Progress reports how many of the job's tasks are complete.
func (s *ChecklistService) Progress(ctx context.Context, jobID string) (model.ChecklistProgress, error) {
	return s.tasks.Progress(ctx, jobID)
}
