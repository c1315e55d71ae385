package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"legalmitra-backend/logger"
	"legalmitra-backend/models"
	"legalmitra-backend/repository"
	"legalmitra-backend/session"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// JobService runs generation work in the background. Submit methods
// validate synchronously and return a pending job immediately.
type JobService struct {
	cases      *CaseService
	references *ReferenceService
	sem        *semaphore.Weighted
	timeout    time.Duration
	log        *logger.Logger

	wg sync.WaitGroup
}

// JobServiceOption is a functional option for JobService
type JobServiceOption func(*JobService)

// JobWithCaseService sets the case service
func JobWithCaseService(c *CaseService) JobServiceOption {
	return func(s *JobService) {
		s.cases = c
	}
}

// JobWithReferenceService sets the reference service
func JobWithReferenceService(r *ReferenceService) JobServiceOption {
	return func(s *JobService) {
		s.references = r
	}
}

// JobWithTimeout bounds every job, including time spent queued
func JobWithTimeout(d time.Duration) JobServiceOption {
	return func(s *JobService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// JobWithMaxConcurrent bounds concurrent generation calls across all sessions
func JobWithMaxConcurrent(n int) JobServiceOption {
	return func(s *JobService) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// JobWithLogger sets the logger
func JobWithLogger(l *logger.Logger) JobServiceOption {
	return func(s *JobService) {
		s.log = l
	}
}

// NewJobService creates a new job service
func NewJobService(opts ...JobServiceOption) *JobService {
	s := &JobService{
		sem:     semaphore.NewWeighted(4),
		timeout: 120 * time.Second,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cases == nil {
		s.cases = NewCaseService(CaseWithLogger(s.log))
	}
	if s.references == nil {
		s.references = NewReferenceService(ReferenceWithLogger(s.log))
	}
	return s
}

// AnalyzeJobRequest represents a request to analyze a case in the background
type AnalyzeJobRequest struct {
	Scenario              string
	Language              models.Language
	ReferenceText         string
	UseUploadedReferences bool
	UseReferenceLibrary   bool
}

// SubmitAnalyze starts an analysis job
func (s *JobService) SubmitAnalyze(sess *session.Session, req AnalyzeJobRequest) (*models.Job, error) {
	if strings.TrimSpace(req.Scenario) == "" {
		return nil, ErrEmptyScenario
	}

	return s.start(sess, models.JobKindAnalyze, "", func(ctx context.Context, commit CommitFunc) error {
		reference := s.references.ResolveContext(ctx, sess, ContextRequest{
			Scenario:    req.Scenario,
			Text:        req.ReferenceText,
			UseUploaded: req.UseUploadedReferences,
			UseLibrary:  req.UseReferenceLibrary,
		})

		_, err := s.cases.Analyze(ctx, sess.Cases, AnalyzeRequest{
			Scenario:         req.Scenario,
			ReferenceContext: reference,
			Language:         req.Language,
			Commit:           commit,
		})
		return err
	})
}

// EvidenceJobRequest represents new evidence to assess in the background.
// An empty Language answers in the case's own language.
type EvidenceJobRequest struct {
	CaseID   string
	Evidence string
	Language models.Language
}

// SubmitEvidence starts an amendment job. An unknown case fails immediately.
func (s *JobService) SubmitEvidence(sess *session.Session, req EvidenceJobRequest) (*models.Job, error) {
	if strings.TrimSpace(req.Evidence) == "" {
		return nil, ErrEmptyEvidence
	}
	if _, err := sess.Cases.Get(req.CaseID); err != nil {
		return nil, err
	}

	return s.start(sess, models.JobKindEvidence, req.CaseID, func(ctx context.Context, commit CommitFunc) error {
		_, err := s.cases.AmendWithEvidence(ctx, sess.Cases, AmendRequest{
			CaseID:   req.CaseID,
			Evidence: req.Evidence,
			Language: req.Language,
			Commit:   commit,
		})
		return err
	})
}

// SubmitPrecedents starts a precedent search job
func (s *JobService) SubmitPrecedents(sess *session.Session, scenario string) (*models.Job, error) {
	if strings.TrimSpace(scenario) == "" {
		return nil, ErrEmptyScenario
	}

	return s.start(sess, models.JobKindPrecedents, "", func(ctx context.Context, commit CommitFunc) error {
		text, err := s.cases.SearchPrecedents(ctx, scenario)
		if err != nil {
			return err
		}
		return commit(func() (*models.JobResult, error) {
			return &models.JobResult{Text: text}, nil
		})
	})
}

// GetJob retrieves a job of the session
func (s *JobService) GetJob(sess *session.Session, id uuid.UUID) (*models.Job, error) {
	return sess.Jobs.GetByID(id)
}

// CancelJob stops a job. Its result, if any arrives later, is discarded.
func (s *JobService) CancelJob(sess *session.Session, id uuid.UUID) (*models.Job, error) {
	job, err := sess.Jobs.Cancel(id)
	if err != nil {
		return nil, err
	}
	s.log.Info("job cancelled", "session_id", sess.ID, "job_id", id)
	return job, nil
}

// Wait blocks until every running job has returned or ctx is done
func (s *JobService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type jobFunc func(ctx context.Context, commit CommitFunc) error

func (s *JobService) start(sess *session.Session, kind models.JobKind, caseID string, fn jobFunc) (*models.Job, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	job := sess.Jobs.Create(kind, caseID, cancel)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.process(ctx, sess, job.ID, kind, fn)
	}()

	return job, nil
}

// process performs the work of one job in the background
func (s *JobService) process(ctx context.Context, sess *session.Session, jobID uuid.UUID, kind models.JobKind, fn jobFunc) {
	log := s.log.With("session_id", sess.ID, "job_id", jobID, "kind", kind)
	started := time.Now()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.markJobFailed(sess, jobID, &CollaboratorError{Op: string(kind), Err: err}, log)
		return
	}
	defer s.sem.Release(1)

	if err := sess.Jobs.UpdateStatus(jobID, models.JobStatusInProgress); err != nil {
		// cancelled while queued
		log.Debug("job no longer active", "error", err)
		return
	}

	commit := func(write func() (*models.JobResult, error)) error {
		return sess.Jobs.Commit(jobID, write)
	}

	if err := fn(ctx, commit); err != nil {
		s.markJobFailed(sess, jobID, err, log)
		return
	}

	log.Info("job completed", "duration", time.Since(started).String())
}

// markJobFailed marks a job as failed unless it already finished
func (s *JobService) markJobFailed(sess *session.Session, jobID uuid.UUID, cause error, log *logger.Logger) {
	if errors.Is(cause, repository.ErrJobFinished) {
		log.Debug("result discarded for finished job")
		return
	}

	msg := cause.Error()
	if errors.Is(cause, context.DeadlineExceeded) {
		msg = "generation timed out: " + msg
	}

	if err := sess.Jobs.Fail(jobID, msg); err != nil {
		log.Debug("could not mark job failed", "error", err)
		return
	}
	log.Warn("job failed", "error", cause)
}
