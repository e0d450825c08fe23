package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	apperrors "github.com/quickgig/quickgig-api/internal/errors"
	"github.com/quickgig/quickgig-api/internal/testutil"
)

// startTestJob drives a fresh job to in_progress for the given worker.
func startTestJob(t *testing.T, db *sql.DB, posterID, workerID string) *model.Job {
	t.Helper()
	repo := NewJobRepo(db, RepoConfig{})
	assigned := assignTestJob(t, db, createTestJob(t, db, posterID), workerID)
	started, err := repo.Transition(context.Background(), core.TransitionParams{
		JobID:           assigned.ID,
		ExpectedVersion: assigned.Version,
		To:              model.JobStatusInProgress,
		MarkStarted:     true,
	})
	require.NoError(t, err)
	return started
}

func TestCompletionRepo_RequestAndApprove(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCompletionRepo(db, RepoConfig{})
		job := startTestJob(t, db, "poster-1", "worker-1")

		requested, err := repo.CreateRequested(ctx, core.CompletionRequestParams{
			JobID:       job.ID,
			RequestedBy: "worker-1",
			Notes:       "all boxes moved",
		})
		require.NoError(t, err)
		assert.Equal(t, model.CompletionStatusRequested, requested.Status)
		assert.Equal(t, "worker-1", requested.RequestedBy)
		assert.Equal(t, "all boxes moved", requested.Notes)
		assert.Nil(t, requested.ApprovedBy)
		assert.Nil(t, requested.ApprovedAt)

		fetched, err := repo.GetForJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, requested.ID, fetched.ID)

		approved, completedJob, err := repo.ApproveAndComplete(ctx, core.CompletionApproveParams{
			JobID:              job.ID,
			ApprovedBy:         "poster-1",
			WorkerRating:       testutil.IntPtr(5),
			PosterRating:       testutil.IntPtr(4),
			ExpectedJobVersion: job.Version,
		})
		require.NoError(t, err)
		assert.Equal(t, model.CompletionStatusApproved, approved.Status)
		require.NotNil(t, approved.ApprovedBy)
		assert.Equal(t, "poster-1", *approved.ApprovedBy)
		require.NotNil(t, approved.WorkerRating)
		assert.Equal(t, 5, *approved.WorkerRating)
		require.NotNil(t, approved.PosterRating)
		assert.Equal(t, 4, *approved.PosterRating)
		assert.NotNil(t, approved.ApprovedAt)

		assert.Equal(t, model.JobStatusCompleted, completedJob.Status)
		assert.Equal(t, job.Version+1, completedJob.Version)
		assert.NotNil(t, completedJob.CompletedAt)
	})
}

func TestCompletionRepo_Approve_NoPendingRequest(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCompletionRepo(db, RepoConfig{})
		job := startTestJob(t, db, "poster-1", "worker-1")

		_, err := repo.CreateRequested(ctx, core.CompletionRequestParams{
			JobID:       job.ID,
			RequestedBy: "worker-1",
		})
		require.NoError(t, err)

		_, _, err = repo.ApproveAndComplete(ctx, core.CompletionApproveParams{
			JobID:              job.ID,
			ApprovedBy:         "poster-1",
			ExpectedJobVersion: job.Version,
		})
		require.NoError(t, err)

		// A second approval finds no requested record left to finalize.
		_, _, err = repo.ApproveAndComplete(ctx, core.CompletionApproveParams{
			JobID:              job.ID,
			ApprovedBy:         "poster-1",
			ExpectedJobVersion: job.Version + 1,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNoPendingRequest, apperrors.CodeOf(err))
	})
}

func TestCompletionRepo_Approve_StaleVersionRollsBackRecord(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCompletionRepo(db, RepoConfig{})
		job := startTestJob(t, db, "poster-1", "worker-1")

		_, err := repo.CreateRequested(ctx, core.CompletionRequestParams{
			JobID:       job.ID,
			RequestedBy: "worker-1",
		})
		require.NoError(t, err)

		_, _, err = repo.ApproveAndComplete(ctx, core.CompletionApproveParams{
			JobID:              job.ID,
			ApprovedBy:         "poster-1",
			ExpectedJobVersion: job.Version - 1,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))

		// The conflict rolled the record approval back with the job write.
		record, err := repo.GetForJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.CompletionStatusRequested, record.Status)

		jobRepo := NewJobRepo(db, RepoConfig{})
		current, err := jobRepo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusInProgress, current.Status)

		// The request is still pending, so a retry at the right version lands.
		approved, completedJob, err := repo.ApproveAndComplete(ctx, core.CompletionApproveParams{
			JobID:              job.ID,
			ApprovedBy:         "poster-1",
			ExpectedJobVersion: current.Version,
		})
		require.NoError(t, err)
		assert.Equal(t, model.CompletionStatusApproved, approved.Status)
		assert.Equal(t, model.JobStatusCompleted, completedJob.Status)
	})
}

func TestCompletionRepo_DuplicateRecordConflicts(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCompletionRepo(db, RepoConfig{})
		job := startTestJob(t, db, "poster-1", "worker-1")

		_, err := repo.CreateRequested(ctx, core.CompletionRequestParams{
			JobID:       job.ID,
			RequestedBy: "worker-1",
		})
		require.NoError(t, err)

		_, err = repo.CreateRequested(ctx, core.CompletionRequestParams{
			JobID:       job.ID,
			RequestedBy: "worker-1",
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
	})
}

func TestCompletionRepo_CreateApprovedAndComplete(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		repo := NewCompletionRepo(db, RepoConfig{TimeProvider: NewFixedTimeProvider(fixed)})
		job := startTestJob(t, db, "poster-1", "worker-1")

		record, completedJob, err := repo.CreateApprovedAndComplete(ctx, core.CompletionApproveParams{
			JobID:              job.ID,
			ApprovedBy:         "poster-1",
			WorkerRating:       testutil.IntPtr(3),
			ExpectedJobVersion: job.Version,
		})
		require.NoError(t, err)
		assert.Equal(t, model.CompletionStatusApproved, record.Status)
		assert.Equal(t, "poster-1", record.RequestedBy)
		require.NotNil(t, record.ApprovedBy)
		assert.Equal(t, "poster-1", *record.ApprovedBy)
		require.NotNil(t, record.WorkerRating)
		assert.Equal(t, 3, *record.WorkerRating)
		assert.Nil(t, record.PosterRating)
		require.NotNil(t, record.ApprovedAt)
		// Born approved: the request and approval share one timestamp.
		assert.True(t, record.RequestedAt.Equal(fixed))
		assert.True(t, record.ApprovedAt.Equal(fixed))

		assert.Equal(t, model.JobStatusCompleted, completedJob.Status)
		require.NotNil(t, completedJob.CompletedAt)
		assert.True(t, completedJob.CompletedAt.Equal(fixed))
	})
}

func TestCompletionRepo_RatingOutOfRange(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCompletionRepo(db, RepoConfig{})
		job := startTestJob(t, db, "poster-1", "worker-1")

		_, _, err := repo.CreateApprovedAndComplete(ctx, core.CompletionApproveParams{
			JobID:              job.ID,
			ApprovedBy:         "poster-1",
			WorkerRating:       testutil.IntPtr(6),
			ExpectedJobVersion: job.Version,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidRating, apperrors.CodeOf(err))
	})
}

func TestCompletionRepo_GetForJob_NotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewCompletionRepo(db, RepoConfig{})
		_, err := repo.GetForJob(context.Background(), "00000000-0000-0000-0000-000000000000")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
	})
}
