package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskRequestValidate(t *testing.T) {
	t.Parallel()

	req := &CreateTaskRequest{JobID: "job-1", ActorID: "poster-1", Description: "Unpack boxes"}
	require.NoError(t, req.Validate())

	assert.Error(t, (&CreateTaskRequest{ActorID: "poster-1", Description: "x"}).Validate())
	assert.Error(t, (&CreateTaskRequest{JobID: "job-1", Description: "x"}).Validate())
	assert.Error(t, (&CreateTaskRequest{JobID: "job-1", ActorID: "poster-1", Description: " "}).Validate())
}

func TestChecklistProgressAllComplete(t *testing.T) {
	t.Parallel()

	assert.True(t, ChecklistProgress{}.AllComplete())
	assert.True(t, ChecklistProgress{Completed: 3, Total: 3}.AllComplete())
	assert.False(t, ChecklistProgress{Completed: 1, Total: 3}.AllComplete())
}
