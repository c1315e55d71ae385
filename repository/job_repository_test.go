package repository

import (
	"context"
	"testing"

	"legalmitra-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRepositoryLifecycle(t *testing.T) {
	repo := NewJobRepository()

	job := repo.Create(models.JobKindAnalyze, "", nil)
	assert.Equal(t, models.JobStatusPending, job.Status)

	require.NoError(t, repo.UpdateStatus(job.ID, models.JobStatusInProgress))
	require.NoError(t, repo.Complete(job.ID, models.JobResult{CaseID: "CASE-000001", Version: 1, Text: "done"}))

	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "done", got.Result.Text)
	assert.NotNil(t, got.CompletedAt)

	assert.ErrorIs(t, repo.Fail(job.ID, "late failure"), ErrJobFinished)
	assert.Equal(t, 0, repo.Active())
}

func TestJobRepositoryCancel(t *testing.T) {
	repo := NewJobRepository()
	ctx, cancel := context.WithCancel(context.Background())

	job := repo.Create(models.JobKindEvidence, "CASE-000001", cancel)
	assert.Equal(t, 1, repo.Active())

	cancelled, err := repo.Cancel(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)
	assert.Error(t, ctx.Err())

	// a cancelled job can no longer complete
	assert.ErrorIs(t, repo.Complete(job.ID, models.JobResult{Text: "too late"}), ErrJobFinished)
	_, err = repo.Cancel(job.ID)
	assert.ErrorIs(t, err, ErrJobFinished)
}

func TestJobRepositoryCommit(t *testing.T) {
	repo := NewJobRepository()

	job := repo.Create(models.JobKindAnalyze, "", nil)
	writes := 0
	err := repo.Commit(job.ID, func() (*models.JobResult, error) {
		writes++
		return &models.JobResult{CaseID: "CASE-000001", Text: "analysis"}, nil
	})
	require.NoError(t, err)

	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, "CASE-000001", got.Result.CaseID)

	cancelled := repo.Create(models.JobKindAnalyze, "", nil)
	_, err = repo.Cancel(cancelled.ID)
	require.NoError(t, err)

	err = repo.Commit(cancelled.ID, func() (*models.JobResult, error) {
		writes++
		return &models.JobResult{}, nil
	})
	assert.ErrorIs(t, err, ErrJobFinished)
	assert.Equal(t, 1, writes)
}

func TestJobRepositoryCommitWriteError(t *testing.T) {
	repo := NewJobRepository()
	job := repo.Create(models.JobKindEvidence, "CASE-000004", nil)

	err := repo.Commit(job.ID, func() (*models.JobResult, error) {
		return nil, ErrCaseNotFound
	})
	assert.ErrorIs(t, err, ErrCaseNotFound)

	// the job stays active so the caller can mark it failed
	require.NoError(t, repo.Fail(job.ID, err.Error()))
}

func TestJobRepositoryCancelAll(t *testing.T) {
	repo := NewJobRepository()
	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())

	a := repo.Create(models.JobKindAnalyze, "", cancelA)
	repo.Create(models.JobKindPrecedents, "", cancelB)
	done := repo.Create(models.JobKindAnalyze, "", nil)
	require.NoError(t, repo.Fail(done.ID, "boom"))

	assert.Equal(t, 2, repo.CancelAll())
	assert.Error(t, ctxA.Err())
	assert.Error(t, ctxB.Err())

	got, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, got.Status)
	assert.Len(t, repo.List(), 3)
}

func TestJobRepositoryNotFound(t *testing.T) {
	repo := NewJobRepository()

	_, err := repo.GetByID(uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(uuid.New(), models.JobStatusInProgress), ErrJobNotFound)
}
