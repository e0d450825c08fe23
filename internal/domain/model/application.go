package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus represents the decision state of a worker's application.
//
// Accepting one application deliberately does not auto-reject its siblings;
// they stay pending and simply become unacceptable once the job leaves open.
type ApplicationStatus string

const (
	// ApplicationStatusPending indicates the poster has not decided yet.
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusAccepted indicates the poster accepted this worker.
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	// ApplicationStatusRejected indicates the poster declined this worker.
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Valid returns true if the ApplicationStatus is valid.
func (s ApplicationStatus) Valid() bool {
	return s == ApplicationStatusPending || s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// Application represents a worker's application to a job.
type Application struct {
	ID                    string            `json:"id"                                db:"id"`
	JobID                 string            `json:"job_id"                            db:"job_id"`
	WorkerID              string            `json:"worker_id"                         db:"worker_id"`
	Status                ApplicationStatus `json:"status"                            db:"status"`
	HourlyRate            *float64          `json:"hourly_rate,omitempty"             db:"hourly_rate"`
	ExpectedDurationHours *float64          `json:"expected_duration_hours,omitempty" db:"expected_duration_hours"`
	Message               string            `json:"message"                           db:"message"`
	CreatedAt             time.Time         `json:"created_at"                        db:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"                        db:"updated_at"`
}

// ApplyRequest represents a worker's request to apply to a job.
type ApplyRequest struct {
	JobID                 string   `json:"job_id"`
	WorkerID              string   `json:"worker_id"`
	HourlyRate            *float64 `json:"hourly_rate,omitempty"`
	ExpectedDurationHours *float64 `json:"expected_duration_hours,omitempty"`
	Message               string   `json:"message,omitempty"`
}

// Validate validates the ApplyRequest fields.
func (r *ApplyRequest) Validate() error {
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("job id is required")
	}
	if strings.TrimSpace(r.WorkerID) == "" {
		return errors.New("worker id is required")
	}
	if r.HourlyRate != nil && *r.HourlyRate <= 0 {
		return errors.New("hourly rate must be positive")
	}
	if r.ExpectedDurationHours != nil && *r.ExpectedDurationHours <= 0 {
		return errors.New("expected duration must be positive")
	}
	return nil
}

// ApplicationOrder selects the sort order for application listings.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ApplicationOrder string

const (
	// ApplicationOrderNewest sorts by created_at descending (default).
	ApplicationOrderNewest ApplicationOrder = "newest"
	// ApplicationOrderRate sorts by hourly_rate descending, created_at breaking ties.
	ApplicationOrderRate ApplicationOrder = "rate"
	// ApplicationOrderRating sorts by worker rating descending, created_at breaking ties.
	ApplicationOrderRating ApplicationOrder = "rating"
)

// Valid returns true if the ApplicationOrder is valid.
func (o ApplicationOrder) Valid() bool {
	return o == ApplicationOrderNewest || o == ApplicationOrderRate || o == ApplicationOrderRating
}

// UnmarshalText implements encoding.TextUnmarshaler so the order can be parsed
// from query strings. Empty input selects the default order.
func (o *ApplicationOrder) UnmarshalText(text []byte) error {
	v := ApplicationOrder(strings.ToLower(strings.TrimSpace(string(text))))
	if v == "" {
		*o = ApplicationOrderNewest
		return nil
	}
	if !v.Valid() {
		return fmt.Errorf("invalid ApplicationOrder: %q", v)
	}
	*o = v
	return nil
}
