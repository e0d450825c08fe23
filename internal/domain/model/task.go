package model

import (
	"errors"
	"strings"
	"time"
)

// TaskItem is a sub-task attached to a job. Tasks are owned exclusively by the
// job and gate direct completion.
type TaskItem struct {
	ID          string     `json:"id"                     db:"id"`
	JobID       string     `json:"job_id"                 db:"job_id"`
	Description string     `json:"description"            db:"description"`
	IsCompleted bool       `json:"is_completed"           db:"is_completed"`
	CompletedBy *string    `json:"completed_by,omitempty" db:"completed_by"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"             db:"updated_at"`
}

// CreateTaskRequest represents a poster's request to add a task to a job.
type CreateTaskRequest struct {
	JobID       string `json:"job_id"`
	ActorID     string `json:"actor_id"`
	Description string `json:"description"`
}

// Validate validates the CreateTaskRequest fields.
func (r *CreateTaskRequest) Validate() error {
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("job id is required")
	}
	if strings.TrimSpace(r.ActorID) == "" {
		return errors.New("actor id is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	return nil
}

// ChecklistProgress reports how many tasks of a job are complete.
type ChecklistProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// AllComplete returns true when every task is complete. A job with no tasks is
// trivially complete and always eligible for direct completion.
func (p ChecklistProgress) AllComplete() bool {
	return p.Completed >= p.Total
}
