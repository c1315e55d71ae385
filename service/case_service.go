package service

import (
	"context"
	"strings"

	"legalmitra-backend/llm"
	"legalmitra-backend/logger"
	"legalmitra-backend/models"
	"legalmitra-backend/repository"
)

// CaseService runs the analysis, amendment and precedent prompts
type CaseService struct {
	generator llm.Generator
	log       *logger.Logger
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// CaseWithGenerator sets the text generator
func CaseWithGenerator(g llm.Generator) CaseServiceOption {
	return func(s *CaseService) {
		s.generator = g
	}
}

// CaseWithLogger sets the logger
func CaseWithLogger(l *logger.Logger) CaseServiceOption {
	return func(s *CaseService) {
		s.log = l
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{log: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CommitFunc gates a store write. The job runner passes one that refuses
// the write once the job has been cancelled.
type CommitFunc func(write func() (*models.JobResult, error)) error

func (c CommitFunc) run(write func() (*models.JobResult, error)) error {
	if c == nil {
		_, err := write()
		return err
	}
	return c(write)
}

// AnalyzeRequest represents a request to analyze a new case
type AnalyzeRequest struct {
	Scenario         string
	ReferenceContext string
	Language         models.Language
	Commit           CommitFunc
}

// AmendRequest represents new evidence for an existing case
type AmendRequest struct {
	CaseID   string
	Evidence string
	Language models.Language // empty means the record's language
	Commit   CommitFunc
}

// AmendResult holds the impact text and the amended record
type AmendResult struct {
	ImpactText string
	Record     *models.CaseRecord
}

// Analyze generates an analysis and creates a case record from it. The
// store is untouched unless generation succeeds and ctx is still live.
func (s *CaseService) Analyze(ctx context.Context, cases *repository.CaseRepository, req AnalyzeRequest) (*models.CaseRecord, error) {
	scenario := strings.TrimSpace(req.Scenario)
	if scenario == "" {
		return nil, ErrEmptyScenario
	}

	prompt := BuildAnalysisPrompt(scenario, req.ReferenceContext, req.Language)
	analysis, err := s.generate(ctx, "analyze", prompt)
	if err != nil {
		return nil, err
	}

	var record *models.CaseRecord
	err = req.Commit.run(func() (*models.JobResult, error) {
		record = cases.Create(scenario, req.Language, analysis)
		return &models.JobResult{
			CaseID:    record.CaseID,
			Version:   record.Version,
			Permalink: record.Permalink,
			Text:      analysis,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("case analyzed", "case_id", record.CaseID, "language", record.Language)
	return record, nil
}

// AmendWithEvidence assesses new evidence against a case and appends it
func (s *CaseService) AmendWithEvidence(ctx context.Context, cases *repository.CaseRepository, req AmendRequest) (*AmendResult, error) {
	evidence := strings.TrimSpace(req.Evidence)
	if evidence == "" {
		return nil, ErrEmptyEvidence
	}

	record, err := cases.Get(req.CaseID)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = record.Language
	}

	prompt := BuildEvidencePrompt(record.AnalysisText, evidence, language)
	impact, err := s.generate(ctx, "amend", prompt)
	if err != nil {
		return nil, err
	}

	var amended *models.CaseRecord
	err = req.Commit.run(func() (*models.JobResult, error) {
		rec, err := cases.Amend(req.CaseID, evidence, impact)
		if err != nil {
			return nil, err
		}
		amended = rec
		return &models.JobResult{
			CaseID:    rec.CaseID,
			Version:   rec.Version,
			Permalink: rec.Permalink,
			Text:      impact,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("case amended", "case_id", amended.CaseID, "version", amended.Version)
	return &AmendResult{ImpactText: impact, Record: amended}, nil
}

// SearchPrecedents asks the model for precedents similar to a scenario
func (s *CaseService) SearchPrecedents(ctx context.Context, scenario string) (string, error) {
	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return "", ErrEmptyScenario
	}
	return s.generate(ctx, "precedents", BuildPrecedentPrompt(scenario))
}

// generate wraps every failure, including cancellation, in a CollaboratorError
func (s *CaseService) generate(ctx context.Context, op, prompt string) (string, error) {
	if s.generator == nil {
		return "", &CollaboratorError{Op: op, Err: llm.ErrNotConfigured}
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err == nil {
		// a result that arrives after cancellation is discarded
		err = ctx.Err()
	}
	if err == nil && strings.TrimSpace(text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		s.log.Warn("generation failed", "op", op, "error", err)
		return "", &CollaboratorError{Op: op, Err: err}
	}

	return text, nil
}
