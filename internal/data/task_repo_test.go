package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
	"github.com/quickgig/quickgig-api/internal/testutil"
)

func TestTaskRepo_CreateListAndToggle(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewTaskRepo(db, RepoConfig{})
		job := createTestJob(t, db, "poster-1")

		first, err := repo.Create(ctx, &model.CreateTaskRequest{
			JobID:       job.ID,
			ActorID:     "poster-1",
			Description: "  Unpack boxes  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "Unpack boxes", first.Description)
		assert.False(t, first.IsCompleted)

		_, err = repo.Create(ctx, &model.CreateTaskRequest{
			JobID:       job.ID,
			ActorID:     "poster-1",
			Description: "Assemble frames",
		})
		require.NoError(t, err)

		tasks, err := repo.ListForJob(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, first.ID, tasks[0].ID)

		done, err := repo.SetCompleted(ctx, core.SetTaskCompletedParams{
			TaskID:    first.ID,
			ActorID:   "worker-1",
			Completed: true,
		})
		require.NoError(t, err)
		assert.True(t, done.IsCompleted)
		require.NotNil(t, done.CompletedBy)
		assert.Equal(t, "worker-1", *done.CompletedBy)
		assert.NotNil(t, done.CompletedAt)

		progress, err := repo.Progress(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ChecklistProgress{Completed: 1, Total: 2}, progress)

		// Unchecking clears the completion stamp.
		undone, err := repo.SetCompleted(ctx, core.SetTaskCompletedParams{
			TaskID:  first.ID,
			ActorID: "worker-1",
		})
		require.NoError(t, err)
		assert.False(t, undone.IsCompleted)
		assert.Nil(t, undone.CompletedBy)
		assert.Nil(t, undone.CompletedAt)
	})
}

func TestTaskRepo_SetCompleted_NotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewTaskRepo(db, RepoConfig{})
		_, err := repo.SetCompleted(context.Background(), core.SetTaskCompletedParams{
			TaskID:    "00000000-0000-0000-0000-000000000000",
			ActorID:   "worker-1",
			Completed: true,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
	})
}

func TestTaskRepo_Progress_EmptyChecklist(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewTaskRepo(db, RepoConfig{})
		job := createTestJob(t, db, "poster-1")

		progress, err := repo.Progress(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ChecklistProgress{}, progress)
		assert.True(t, progress.AllComplete())
	})
}
