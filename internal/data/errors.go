package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrJobIDRequired is returned when a job id is missing.
	ErrJobIDRequired = errors.New("job id is required")
	// ErrWorkerIDRequired is returned when a worker id is missing.
	ErrWorkerIDRequired = errors.New("worker id is required")
	// ErrSampleRequired is returned when a location sample is missing.
	ErrSampleRequired = errors.New("location sample is required")
	// ErrTrackerNotConfigured is returned when the location tracker has no client.
	ErrTrackerNotConfigured = errors.New("location tracker is not configured")
)
