package model

import "time"

// CompletionStatus represents the request/approve handshake state nested
// inside an in-progress job. No record at all means "none".
type CompletionStatus string

const (
	// CompletionStatusRequested indicates one party asked to finish the job.
	CompletionStatusRequested CompletionStatus = "requested"
	// CompletionStatusApproved indicates the counterpart confirmed (or the
	// checklist was already complete and the record was auto-approved).
	CompletionStatusApproved CompletionStatus = "approved"
)

// Valid returns true if the CompletionStatus is valid.
func (s CompletionStatus) Valid() bool {
	return s == CompletionStatusRequested || s == CompletionStatusApproved
}

// CompletionRecord captures the completion handshake and the ratings both
// parties leave for each other.
type CompletionRecord struct {
	ID           string           `json:"id"                      db:"id"`
	JobID        string           `json:"job_id"                  db:"job_id"`
	Status       CompletionStatus `json:"status"                  db:"status"`
	Notes        string           `json:"notes"                   db:"notes"`
	RequestedBy  string           `json:"requested_by"            db:"requested_by"`
	ApprovedBy   *string          `json:"approved_by,omitempty"   db:"approved_by"`
	WorkerRating *int             `json:"worker_rating,omitempty" db:"worker_rating"`
	PosterRating *int             `json:"poster_rating,omitempty" db:"poster_rating"`
	RequestedAt  time.Time        `json:"requested_at"            db:"requested_at"`
	ApprovedAt   *time.Time       `json:"approved_at,omitempty"   db:"approved_at"`
}

// RatingValid returns true when a rating pointer is either absent or in the
// 1-5 range.
func RatingValid(r *int) bool {
	return r == nil || (*r >= 1 && *r <= 5)
}
