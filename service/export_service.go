package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"legalmitra-backend/document"
	"legalmitra-backend/logger"
	"legalmitra-backend/models"
	"legalmitra-backend/session"
)

// ExportFormat is a downloadable document type
type ExportFormat string

const (
	ExportPDF      ExportFormat = "pdf"
	ExportDOCX     ExportFormat = "docx"
	ExportMarkdown ExportFormat = "md"
)

// ParseExportFormat accepts "pdf", "docx", "md" and "markdown"
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return ExportPDF, nil
	case "docx", "word":
		return ExportDOCX, nil
	case "md", "markdown":
		return ExportMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ExportService renders case reports and stores them as session files
type ExportService struct {
	files   *FileService
	pdf     *document.PDFRenderer
	log     *logger.Logger
	nowFunc func() time.Time
}

// ExportServiceOption is a functional option for ExportService
type ExportServiceOption func(*ExportService)

// ExportWithFiles sets the file service
func ExportWithFiles(f *FileService) ExportServiceOption {
	return func(s *ExportService) {
		s.files = f
	}
}

// ExportWithPDFRenderer sets the PDF renderer
func ExportWithPDFRenderer(r *document.PDFRenderer) ExportServiceOption {
	return func(s *ExportService) {
		s.pdf = r
	}
}

// ExportWithLogger sets the logger
func ExportWithLogger(l *logger.Logger) ExportServiceOption {
	return func(s *ExportService) {
		s.log = l
	}
}

// NewExportService creates a new export service
func NewExportService(opts ...ExportServiceOption) *ExportService {
	s := &ExportService{
		pdf:     &document.PDFRenderer{},
		log:     logger.NewNop(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportRequest represents a request to export a case
type ExportRequest struct {
	CaseID string
	Format ExportFormat
}

// Render produces the document bytes for a case without storing them
func (s *ExportService) Render(record *models.CaseRecord, format ExportFormat, at time.Time) ([]byte, error) {
	rep := document.Report{
		CaseID:      record.CaseID,
		Version:     record.Version,
		Permalink:   record.Permalink,
		GeneratedAt: at,
		Scenario:    record.ScenarioText,
		Analysis:    record.AnalysisText,
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case ExportPDF:
		data, err = s.pdf.Render(rep)
	case ExportDOCX:
		data, err = document.RenderDOCX(rep)
	case ExportMarkdown:
		data = document.RenderMarkdown(rep)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, &ExportError{Format: string(format), Err: err}
	}
	return data, nil
}

// Export renders a case and stores the document in the session. The case
// record is only read.
func (s *ExportService) Export(ctx context.Context, sess *session.Session, req ExportRequest) (*models.File, error) {
	record, err := sess.Cases.Get(req.CaseID)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc()
	data, err := s.Render(record, req.Format, now)
	if err != nil {
		s.log.Warn("export failed", "session_id", sess.ID, "case_id", req.CaseID, "format", req.Format, "error", err)
		return nil, err
	}

	if s.files == nil {
		return nil, fmt.Errorf("file storage not configured")
	}

	file := &models.File{
		Kind:     models.FileKindExport,
		CaseID:   record.CaseID,
		Filename: fmt.Sprintf("LegalMitra_Analysis_%s_%s.%s", record.CaseID, now.Format("20060102_150405"), req.Format),
	}
	if err := s.files.Store(ctx, sess, file, data); err != nil {
		return nil, err
	}

	s.log.Info("case exported", "session_id", sess.ID, "case_id", record.CaseID, "format", req.Format, "size", file.Size)
	return file, nil
}
