package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"legalmitra-backend/logger"
	"legalmitra-backend/models"
	"legalmitra-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CaseHandler handles HTTP requests for cases
type CaseHandler struct {
	jobs    *service.JobService
	exports *service.ExportService
	log     *logger.Logger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(jobs *service.JobService, exports *service.ExportService, log *logger.Logger) *CaseHandler {
	return &CaseHandler{jobs: jobs, exports: exports, log: log}
}

// AnalyzeRequest represents the request body for analyzing a case
type AnalyzeRequest struct {
	Scenario              string `json:"scenario" binding:"required"`
	Language              string `json:"language"`
	ReferenceText         string `json:"reference_text"`
	UseUploadedReferences bool   `json:"use_uploaded_references"`
	UseReferenceLibrary   bool   `json:"use_reference_library"`
}

// EvidenceRequest represents the request body for amending a case
type EvidenceRequest struct {
	Evidence string `json:"evidence" binding:"required"`
	Language string `json:"language"` // empty keeps the case's language
}

// ExportRequest represents the request body for exporting a case
type ExportRequest struct {
	Format string `json:"format" binding:"required"`
}

func jobAccepted(c *gin.Context, sessionID string, job *models.Job) {
	respond(c, http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"kind":    job.Kind,
		"status":  job.Status,
		"message": fmt.Sprintf("Job created. Poll /api/sessions/%s/jobs/%s for updates.", sessionID, job.ID),
	})
}

// Analyze handles POST /api/sessions/:sid/cases/analyze
func (h *CaseHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sess := currentSession(c)
	job, err := h.jobs.SubmitAnalyze(sess, service.AnalyzeJobRequest{
		Scenario:              req.Scenario,
		Language:              models.ParseLanguage(req.Language),
		ReferenceText:         req.ReferenceText,
		UseUploadedReferences: req.UseUploadedReferences,
		UseReferenceLibrary:   req.UseReferenceLibrary,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	jobAccepted(c, sess.ID, job)
}

// ListCases handles GET /api/sessions/:sid/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	cases := currentSession(c).Cases.All()

	switch strings.ToLower(c.DefaultQuery("order", "asc")) {
	case "asc":
	case "desc":
		for i, j := 0, len(cases)-1; i < j; i, j = i+1, j-1 {
			cases[i], cases[j] = cases[j], cases[i]
		}
	default:
		respondError(c, http.StatusBadRequest, "INVALID_ORDER", "order must be asc or desc")
		return
	}

	respond(c, http.StatusOK, cases)
}

// GetCase handles GET /api/sessions/:sid/cases/:case_id. An optional
// version query selects the permalink of an earlier version.
func (h *CaseHandler) GetCase(c *gin.Context) {
	record, err := currentSession(c).Cases.Get(c.Param("case_id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	permalink := record.Permalink
	if v := c.Query("version"); v != "" {
		version, err := strconv.Atoi(v)
		if err != nil || version < 1 || version > record.Version {
			respondError(c, http.StatusBadRequest, "INVALID_VERSION", fmt.Sprintf("version must be between 1 and %d", record.Version))
			return
		}
		permalink = record.PermalinkFor(version)
	}

	respond(c, http.StatusOK, gin.H{
		"case":      record,
		"permalink": permalink,
	})
}

// AddEvidence handles POST /api/sessions/:sid/cases/:case_id/evidence
func (h *CaseHandler) AddEvidence(c *gin.Context) {
	var req EvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sess := currentSession(c)
	var language models.Language
	if strings.TrimSpace(req.Language) != "" {
		language = models.ParseLanguage(req.Language)
	}

	job, err := h.jobs.SubmitEvidence(sess, service.EvidenceJobRequest{
		CaseID:   c.Param("case_id"),
		Evidence: req.Evidence,
		Language: language,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	jobAccepted(c, sess.ID, job)
}

// Export handles POST /api/sessions/:sid/cases/:case_id/exports
func (h *CaseHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	format, err := service.ParseExportFormat(req.Format)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	sess := currentSession(c)
	file, err := h.exports.Export(c.Request.Context(), sess, service.ExportRequest{
		CaseID: c.Param("case_id"),
		Format: format,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, fileView(sess.ID, file))
}

// Report handles POST /api/sessions/:sid/cases/:case_id/report. The body
// is optional; missing fields take their defaults.
func (h *CaseHandler) Report(c *gin.Context) {
	var cfg models.ReportConfig
	if err := c.ShouldBindJSON(&cfg); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	report, err := service.BuildVisualReport(currentSession(c), c.Param("case_id"), cfg)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, report)
}

// PrecedentRequest represents the request body for a precedent search
type PrecedentRequest struct {
	Scenario string `json:"scenario" binding:"required"`
}

// SearchPrecedents handles POST /api/sessions/:sid/precedents
func (h *CaseHandler) SearchPrecedents(c *gin.Context) {
	var req PrecedentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sess := currentSession(c)
	job, err := h.jobs.SubmitPrecedents(sess, req.Scenario)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	jobAccepted(c, sess.ID, job)
}

// JobHandler handles HTTP requests for background jobs
type JobHandler struct {
	jobs *service.JobService
	log  *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs *service.JobService, log *logger.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, log: log}
}

func parseID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", fmt.Sprintf("Invalid %s ID format", what))
		return uuid.Nil, false
	}
	return id, true
}

// GetJob handles GET /api/sessions/:sid/jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := parseID(c, "job_id", "job")
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(currentSession(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, job)
}

// CancelJob handles DELETE /api/sessions/:sid/jobs/:job_id
func (h *JobHandler) CancelJob(c *gin.Context) {
	id, ok := parseID(c, "job_id", "job")
	if !ok {
		return
	}

	job, err := h.jobs.CancelJob(currentSession(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, job)
}

// ListJobs handles GET /api/sessions/:sid/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	respond(c, http.StatusOK, currentSession(c).Jobs.List())
}
