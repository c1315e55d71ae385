package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of an asynchronous job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether the status can no longer change
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// JobKind identifies the user action a job performs
type JobKind string

const (
	JobKindAnalyze    JobKind = "analyze"
	JobKindEvidence   JobKind = "evidence"
	JobKindPrecedents JobKind = "precedents"
)

// JobResult holds the text a successful job produced
type JobResult struct {
	CaseID    string `json:"case_id,omitempty"`
	Version   int    `json:"version,omitempty"`
	Permalink string `json:"permalink,omitempty"`
	Text      string `json:"text"`
}

// Job represents one asynchronous call to the text-generation service
type Job struct {
	ID           uuid.UUID  `json:"id"`
	Kind         JobKind    `json:"kind"`
	Status       JobStatus  `json:"status"`
	CaseID       string     `json:"case_id,omitempty"` // target case for evidence jobs
	Result       *JobResult `json:"result,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a copy that does not share pointers with the original
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	if j.Result != nil {
		r := *j.Result
		cp.Result = &r
	}
	if j.ErrorMessage != nil {
		msg := *j.ErrorMessage
		cp.ErrorMessage = &msg
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
