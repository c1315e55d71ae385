package handlers

import (
	"errors"
	"net/http"

	"legalmitra-backend/logger"
	"legalmitra-backend/repository"
	"legalmitra-backend/service"
	"legalmitra-backend/session"
	"legalmitra-backend/storage"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// errorStatus maps a service error onto an HTTP status and error code
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable, "TOO_MANY_SESSIONS"
	case errors.Is(err, repository.ErrCaseNotFound):
		return http.StatusNotFound, "CASE_NOT_FOUND"
	case errors.Is(err, repository.ErrJobNotFound):
		return http.StatusNotFound, "JOB_NOT_FOUND"
	case errors.Is(err, repository.ErrJobFinished):
		return http.StatusConflict, "JOB_FINISHED"
	case errors.Is(err, repository.ErrFileNotFound), errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound, "FILE_NOT_FOUND"
	case errors.Is(err, service.ErrEmptyScenario), errors.Is(err, service.ErrEmptyEvidence):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT"
	case errors.Is(err, service.ErrInvalidReport):
		return http.StatusBadRequest, "INVALID_REPORT"
	case errors.Is(err, service.ErrInvalidReference):
		return http.StatusBadRequest, "INVALID_REFERENCE"
	case errors.Is(err, service.ErrTooManyFiles):
		return http.StatusBadRequest, "TOO_MANY_FILES"
	case errors.Is(err, service.ErrExportFailed):
		return http.StatusUnprocessableEntity, "EXPORT_FAILED"
	case errors.Is(err, service.ErrAnalysisFailed):
		return http.StatusBadGateway, "ANALYSIS_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// writeError responds with the mapped error. Unexpected errors are logged
// and their detail is not sent to the client.
func writeError(c *gin.Context, log *logger.Logger, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		message = "internal server error"
	}
	respondError(c, status, code, message)
}
