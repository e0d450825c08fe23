package service

import (
	"time"

	"github.com/quickgig/quickgig-api/internal/domain/model"
)

const (
	testJobID    = "job-123"
	testPosterID = "poster-1"
	testWorkerID = "worker-1"
	testAppID    = "app-123"
)

// jobSite is the location anchor used throughout the service tests.
var jobSite = model.Coordinates{Latitude: 40.0, Longitude: -74.0}

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func float64Ptr(f float64) *float64 { return &f }

// jobFixture builds a job in the given status. Statuses past open get the
// test worker assigned.
func jobFixture(status model.JobStatus) *model.Job {
	now := time.Now()
	job := &model.Job{
		ID:          testJobID,
		PosterID:    testPosterID,
		Title:       "Assemble flat-pack shelving",
		Description: "Two bookcases and a desk",
		Status:      status,
		Location: model.JobLocation{
			Coordinates:    jobSite,
			DisplayAddress: "123 Main St",
		},
		PaymentAmount: 85,
		PaymentType:   model.PaymentTypeFixed,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status != model.JobStatusOpen {
		job.WorkerID = stringPtr(testWorkerID)
	}
	return job
}

// sampleNear returns a location sample a few meters from the job site.
func sampleNear() *model.LocationSample {
	return &model.LocationSample{
		Coordinates:    model.Coordinates{Latitude: 40.00001, Longitude: -74.00001},
		AccuracyMeters: 15,
		CapturedAt:     time.Now(),
		Source:         model.LocationSourceGPS,
	}
}

// sampleFar returns a location sample roughly 1.4km from the job site.
func sampleFar() *model.LocationSample {
	return &model.LocationSample{
		Coordinates:    model.Coordinates{Latitude: 40.01, Longitude: -74.01},
		AccuracyMeters: 15,
		CapturedAt:     time.Now(),
		Source:         model.LocationSourceGPS,
	}
}
