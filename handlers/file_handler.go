package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"legalmitra-backend/logger"
	"legalmitra-backend/models"
	"legalmitra-backend/service"

	"github.com/gin-gonic/gin"
)

// multipartSlack covers part headers and boundaries on top of file content
const multipartSlack = 64 << 10

// FileHandler handles HTTP requests for reference uploads and stored files
type FileHandler struct {
	files          *service.FileService
	references     *service.ReferenceService
	maxFileSize    int64
	maxUploadFiles int
	log            *logger.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *service.FileService, references *service.ReferenceService, maxFileSize int64, maxUploadFiles int, log *logger.Logger) *FileHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024 // 10MB
	}
	if maxUploadFiles <= 0 {
		maxUploadFiles = 5
	}
	return &FileHandler{
		files:          files,
		references:     references,
		maxFileSize:    maxFileSize,
		maxUploadFiles: maxUploadFiles,
		log:            log,
	}
}

type fileResponse struct {
	*models.File
	DownloadURL string `json:"download_url"`
}

func fileView(sessionID string, f *models.File) fileResponse {
	return fileResponse{
		File:        f,
		DownloadURL: fmt.Sprintf("/api/sessions/%s/files/%s", sessionID, f.ID),
	}
}

// UploadReferences handles POST /api/sessions/:sid/references
func (h *FileHandler) UploadReferences(c *gin.Context) {
	limit := h.maxFileSize*int64(h.maxUploadFiles) + multipartSlack
	if c.Request.ContentLength > limit {
		h.bodyTooLarge(c, limit)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.bodyTooLarge(c, limit)
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form with files is required")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "At least one file is required")
		return
	}
	if len(headers) > h.maxUploadFiles {
		respondError(c, http.StatusBadRequest, "TOO_MANY_FILES", fmt.Sprintf("At most %d files per upload", h.maxUploadFiles))
		return
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxFileSize {
			respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
				fmt.Sprintf("%s exceeds maximum of %d bytes", fh.Filename, h.maxFileSize))
			return
		}

		f, err := fh.Open()
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		uploads = append(uploads, service.Upload{Filename: fh.Filename, Data: data})
	}

	sess := currentSession(c)
	files, err := h.references.UploadReferences(c.Request.Context(), sess, uploads)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	views := make([]fileResponse, 0, len(files))
	for _, f := range files {
		views = append(views, fileView(sess.ID, f))
	}
	respond(c, http.StatusCreated, views)
}

func (h *FileHandler) bodyTooLarge(c *gin.Context, limit int64) {
	respondError(c, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE",
		fmt.Sprintf("Upload exceeds maximum of %d bytes", limit))
}

// ListReferences handles GET /api/sessions/:sid/references
func (h *FileHandler) ListReferences(c *gin.Context) {
	sess := currentSession(c)
	files := h.references.ListReferences(sess)

	views := make([]fileResponse, 0, len(files))
	for _, f := range files {
		views = append(views, fileView(sess.ID, f))
	}
	respond(c, http.StatusOK, views)
}

// GetFile handles GET /api/sessions/:sid/files/:file_id
func (h *FileHandler) GetFile(c *gin.Context) {
	id, ok := parseID(c, "file_id", "file")
	if !ok {
		return
	}

	file, reader, err := h.files.Open(c.Request.Context(), currentSession(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.Filename),
	})
}
