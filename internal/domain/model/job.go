// Package model defines the core data types and structures used throughout the quickgig job system.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the current lifecycle status of a job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

// PaymentType represents how a job pays out.
type PaymentType string

const (
	// JobStatusOpen indicates a job is accepting applications.
	JobStatusOpen JobStatus = "open"
	// JobStatusAssigned indicates a worker has been accepted but has not started.
	JobStatusAssigned JobStatus = "assigned"
	// JobStatusInProgress indicates the assigned worker has started on site.
	JobStatusInProgress JobStatus = "in_progress"
	// JobStatusCompleted indicates the job has finished.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusCanceled indicates the job was canceled before completion.
	JobStatusCanceled JobStatus = "canceled"
	// JobStatusPendingPayment indicates payment capture is in flight.
	JobStatusPendingPayment JobStatus = "pending_payment"
	// JobStatusPaymentFailed indicates payment capture failed and requires poster intervention.
	JobStatusPaymentFailed JobStatus = "payment_failed"

	// PaymentTypeFixed pays a fixed amount for the whole job.
	PaymentTypeFixed PaymentType = "fixed"
	// PaymentTypeHourly pays the amount per hour worked.
	PaymentTypeHourly PaymentType = "hourly"
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusAssigned, JobStatusInProgress, JobStatusCompleted,
		JobStatusCanceled, JobStatusPendingPayment, JobStatusPaymentFailed:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus to allow env and query parsing.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", v)
	}
	*s = v
	return nil
}

// Valid returns true if the PaymentType is valid.
func (t PaymentType) Valid() bool {
	return t == PaymentTypeFixed || t == PaymentTypeHourly
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid returns true if the coordinates are within WGS84 range.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// JobLocation is the physical anchor of a job. Immutable once the job is
// posted: address edits never move the verification anchor after a worker
// has started.
type JobLocation struct {
	Coordinates
	DisplayAddress string `json:"display_address"`
}

// WorkerLocation is the most recently accepted worker location snapshot.
type WorkerLocation struct {
	Coordinates
	RecordedAt time.Time `json:"recorded_at"`
}

// Job represents a gig in the system with all of its lifecycle state.
type Job struct {
	ID                 string          `json:"id"                        db:"id"`
	PosterID           string          `json:"poster_id"                 db:"poster_id"`
	WorkerID           *string         `json:"worker_id,omitempty"       db:"worker_id"`
	Title              string          `json:"title"                     db:"title"`
	Description        string          `json:"description"               db:"description"`
	Status             JobStatus       `json:"status"                    db:"status"`
	Location           JobLocation     `json:"location"`
	PaymentAmount      float64         `json:"payment_amount"            db:"payment_amount"`
	PaymentType        PaymentType     `json:"payment_type"              db:"payment_type"`
	EstimatedHours     *float64        `json:"estimated_hours,omitempty" db:"estimated_hours"`
	StartedAt          *time.Time      `json:"started_at,omitempty"      db:"started_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"    db:"completed_at"`
	WorkerLastLocation *WorkerLocation `json:"worker_last_location,omitempty"`
	Version            int64           `json:"version"                   db:"version"`
	CreatedAt          time.Time       `json:"created_at"                db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"                db:"updated_at"`
}

// IsParticipant returns true when userID is a party to the job: the poster or
// the assigned worker. Several capabilities (task toggles, direct completion)
// are deliberately this permissive.
func (j *Job) IsParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	if j.PosterID == userID {
		return true
	}
	return j.WorkerID != nil && *j.WorkerID == userID
}

// Counterpart returns the other party of the job relative to userID, or ""
// when userID is not a participant or no worker is assigned.
func (j *Job) Counterpart(userID string) string {
	if j.WorkerID == nil {
		return ""
	}
	switch userID {
	case j.PosterID:
		return *j.WorkerID
	case *j.WorkerID:
		return j.PosterID
	}
	return ""
}

// CreateJobRequest represents a request to post a new job.
type CreateJobRequest struct {
	PosterID       string      `json:"poster_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Location       JobLocation `json:"location"`
	PaymentAmount  float64     `json:"payment_amount"`
	PaymentType    PaymentType `json:"payment_type"`
	EstimatedHours *float64    `json:"estimated_hours,omitempty"`
	Tasks          []string    `json:"tasks,omitempty"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.PosterID) == "" {
		return errors.New("poster id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if !r.Location.Valid() {
		return errors.New("location coordinates are out of range")
	}
	if r.PaymentAmount <= 0 {
		return errors.New("payment amount must be positive")
	}
	if !r.PaymentType.Valid() {
		return fmt.Errorf("invalid payment type: %q", r.PaymentType)
	}
	if r.EstimatedHours != nil && *r.EstimatedHours <= 0 {
		return errors.New("estimated hours must be positive")
	}
	for _, task := range r.Tasks {
		if strings.TrimSpace(task) == "" {
			return errors.New("task descriptions must not be blank")
		}
	}
	return nil
}

// JobListOptions holds pagination for job listing queries.
type JobListOptions struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
