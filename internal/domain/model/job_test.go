package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatusUnmarshalText(t *testing.T) {
	t.Parallel()

	var s JobStatus
	require.NoError(t, s.UnmarshalText([]byte("  In_Progress ")))
	assert.Equal(t, JobStatusInProgress, s)

	require.Error(t, s.UnmarshalText([]byte("paused")))
}

func TestCoordinatesValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Coordinates{Latitude: 40, Longitude: -74}.Valid())
	assert.True(t, Coordinates{Latitude: -90, Longitude: 180}.Valid())
	assert.False(t, Coordinates{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, Coordinates{Latitude: 0, Longitude: -181}.Valid())
}

func TestJobParticipants(t *testing.T) {
	t.Parallel()

	worker := "worker-1"
	job := &Job{PosterID: "poster-1", WorkerID: &worker}

	assert.True(t, job.IsParticipant("poster-1"))
	assert.True(t, job.IsParticipant("worker-1"))
	assert.False(t, job.IsParticipant("stranger"))
	assert.False(t, job.IsParticipant(""))

	assert.Equal(t, "worker-1", job.Counterpart("poster-1"))
	assert.Equal(t, "poster-1", job.Counterpart("worker-1"))
	assert.Empty(t, job.Counterpart("stranger"))

	unassigned := &Job{PosterID: "poster-1"}
	assert.True(t, unassigned.IsParticipant("poster-1"))
	assert.Empty(t, unassigned.Counterpart("poster-1"))
}

func TestCreateJobRequestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *CreateJobRequest {
		return &CreateJobRequest{
			PosterID: "poster-1",
			Title:    "Move boxes",
			Location: JobLocation{
				Coordinates:    Coordinates{Latitude: 40, Longitude: -74},
				DisplayAddress: "123 Main St",
			},
			PaymentAmount: 85,
			PaymentType:   PaymentTypeFixed,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*CreateJobRequest)
	}{
		{"missing poster", func(r *CreateJobRequest) { r.PosterID = "  " }},
		{"missing title", func(r *CreateJobRequest) { r.Title = "" }},
		{"bad coordinates", func(r *CreateJobRequest) { r.Location.Latitude = 120 }},
		{"zero payment", func(r *CreateJobRequest) { r.PaymentAmount = 0 }},
		{"unknown payment type", func(r *CreateJobRequest) { r.PaymentType = "barter" }},
		{"negative estimate", func(r *CreateJobRequest) { h := -2.0; r.EstimatedHours = &h }},
		{"blank task", func(r *CreateJobRequest) { r.Tasks = []string{"Unpack", "  "} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := valid()
			tt.mutate(req)
			assert.Error(t, req.Validate())
		})
	}
}
