package model

import (
	"errors"
	"time"
)

// LocationSource identifies how a location sample was captured.
type LocationSource string

// LocationSourceGPS is a sample read from the device GPS.
const LocationSourceGPS LocationSource = "gps"

// LocationSample is a worker-device location reading handed to the engine.
// Samples are ephemeral: the engine keeps only the job's last-location pointer
// plus an audit trail appended on each successful start gate.
type LocationSample struct {
	Coordinates
	AccuracyMeters float64        `json:"accuracy_meters"`
	CapturedAt     time.Time      `json:"captured_at"`
	Source         LocationSource `json:"source"`
}

// LocationAuditEntry is one accepted gate sample kept for dispute
// resolution, with the verification outcome that admitted it.
type LocationAuditEntry struct {
	ID             int64     `json:"id"              db:"id"`
	JobID          string    `json:"job_id"          db:"job_id"`
	WorkerID       string    `json:"worker_id"       db:"worker_id"`
	Latitude       float64   `json:"latitude"        db:"latitude"`
	Longitude      float64   `json:"longitude"       db:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters" db:"accuracy_meters"`
	DistanceMeters float64   `json:"distance_meters" db:"distance_meters"`
	Confidence     string    `json:"confidence"      db:"confidence"`
	CapturedAt     time.Time `json:"captured_at"     db:"captured_at"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
}

// Validate validates the LocationSample fields.
func (s *LocationSample) Validate() error {
	if !s.Coordinates.Valid() {
		return errors.New("sample coordinates are out of range")
	}
	if s.AccuracyMeters < 0 {
		return errors.New("accuracy must not be negative")
	}
	if s.CapturedAt.IsZero() {
		return errors.New("captured_at is required")
	}
	return nil
}
