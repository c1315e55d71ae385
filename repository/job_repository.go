package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"legalmitra-backend/models"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobFinished = errors.New("job already finished")
)

// JobRepository tracks the asynchronous jobs of one session in memory
type JobRepository struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*models.Job
	cancels map[uuid.UUID]context.CancelFunc
}

// NewJobRepository creates an empty job repository
func NewJobRepository() *JobRepository {
	return &JobRepository{
		jobs:    make(map[uuid.UUID]*models.Job),
		cancels: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Create registers a new pending job. The cancel func is invoked when the
// job is cancelled or the repository is closed.
func (r *JobRepository) Create(kind models.JobKind, caseID string, cancel context.CancelFunc) *models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	job := &models.Job{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    models.JobStatusPending,
		CaseID:    caseID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.jobs[job.ID] = job
	if cancel != nil {
		r.cancels[job.ID] = cancel
	}
	return job.Clone()
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(id uuid.UUID) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

// UpdateStatus moves a job to a non-terminal status
func (r *JobRepository) UpdateStatus(id uuid.UUID, status models.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.activeLocked(id)
	if err != nil {
		return err
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	return nil
}

// Complete marks a job as completed with its result
func (r *JobRepository) Complete(id uuid.UUID, result models.JobResult) error {
	return r.finish(id, models.JobStatusCompleted, func(job *models.Job) {
		job.Result = &result
	})
}

// Commit runs write while the job is still active and completes the job with
// its result. Cancel cannot interleave, so a cancelled job never writes.
func (r *JobRepository) Commit(id uuid.UUID, write func() (*models.JobResult, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.activeLocked(id)
	if err != nil {
		return err
	}
	result, err := write()
	if err != nil {
		return err
	}
	job.Result = result
	r.finishLocked(job, models.JobStatusCompleted)
	return nil
}

// Fail marks a job as failed
func (r *JobRepository) Fail(id uuid.UUID, errorMessage string) error {
	return r.finish(id, models.JobStatusFailed, func(job *models.Job) {
		job.ErrorMessage = &errorMessage
	})
}

// Cancel marks a job as cancelled and stops its context
func (r *JobRepository) Cancel(id uuid.UUID) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.activeLocked(id)
	if err != nil {
		return nil, err
	}
	r.finishLocked(job, models.JobStatusCancelled)
	return job.Clone(), nil
}

// List returns every job, newest first
func (r *JobRepository) List() []*models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*models.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// Active returns the number of jobs that have not finished
func (r *JobRepository) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, job := range r.jobs {
		if !job.Status.Terminal() {
			n++
		}
	}
	return n
}

// CancelAll cancels every unfinished job
func (r *JobRepository) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, job := range r.jobs {
		if !job.Status.Terminal() {
			r.finishLocked(job, models.JobStatusCancelled)
			n++
		}
	}
	return n
}

func (r *JobRepository) finish(id uuid.UUID, status models.JobStatus, apply func(*models.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.activeLocked(id)
	if err != nil {
		return err
	}
	apply(job)
	r.finishLocked(job, status)
	return nil
}

func (r *JobRepository) activeLocked(id uuid.UUID) (*models.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Status.Terminal() {
		return nil, ErrJobFinished
	}
	return job, nil
}

func (r *JobRepository) finishLocked(job *models.Job, status models.JobStatus) {
	now := time.Now()
	job.Status = status
	job.UpdatedAt = now
	job.CompletedAt = &now
	if cancel, ok := r.cancels[job.ID]; ok {
		cancel()
		delete(r.cancels, job.ID)
	}
}
