package handlers

import (
	"net/http"

	"legalmitra-backend/logger"
	"legalmitra-backend/service"
	"legalmitra-backend/session"

	"github.com/gin-gonic/gin"
)

// Dependencies holds everything the HTTP handlers need
type Dependencies struct {
	Sessions   *session.Manager
	Jobs       *service.JobService
	Exports    *service.ExportService
	Files      *service.FileService
	References *service.ReferenceService

	MaxUploadSize  int64
	MaxUploadFiles int

	Logger *logger.Logger
}

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	sessionHandler := NewSessionHandler(deps.Sessions, log)
	caseHandler := NewCaseHandler(deps.Jobs, deps.Exports, log)
	jobHandler := NewJobHandler(deps.Jobs, log)
	fileHandler := NewFileHandler(deps.Files, deps.References, deps.MaxUploadSize, deps.MaxUploadFiles, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"sessions":          deps.Sessions.Count(),
			"reference_library": deps.References.LibraryEnabled(),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/sessions", sessionHandler.CreateSession)

		sess := api.Group("/sessions/:sid", RequireSession(deps.Sessions, log))
		{
			sess.GET("", sessionHandler.GetSession)
			sess.DELETE("", sessionHandler.DeleteSession)

			// Case endpoints
			sess.POST("/cases/analyze", caseHandler.Analyze)
			sess.GET("/cases", caseHandler.ListCases)
			sess.GET("/cases/:case_id", caseHandler.GetCase)
			sess.POST("/cases/:case_id/evidence", caseHandler.AddEvidence)
			sess.POST("/cases/:case_id/exports", caseHandler.Export)
			sess.POST("/cases/:case_id/report", caseHandler.Report)
			sess.POST("/precedents", caseHandler.SearchPrecedents)

			// Job endpoints
			sess.GET("/jobs", jobHandler.ListJobs)
			sess.GET("/jobs/:job_id", jobHandler.GetJob)
			sess.DELETE("/jobs/:job_id", jobHandler.CancelJob)

			// File endpoints
			sess.POST("/references", fileHandler.UploadReferences)
			sess.GET("/references", fileHandler.ListReferences)
			sess.GET("/files/:file_id", fileHandler.GetFile)
		}
	}
}
